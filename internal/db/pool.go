package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
)

func (db *Database) SaveNewPool(ctx context.Context, pool *model.PoolDocument) error {
	_, err := db.collection(model.PoolCollection).InsertOne(ctx, pool)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     pool.PoolID,
						Message: "pool already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetPool(ctx context.Context, poolID string) (*model.PoolDocument, error) {
	filter := bson.M{"_id": poolID}

	res := db.collection(model.PoolCollection).FindOne(ctx, filter)
	var pool model.PoolDocument
	if err := res.Decode(&pool); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     poolID,
				Message: "pool not found",
			}
		}
		return nil, err
	}
	return &pool, nil
}

func (db *Database) GetPools(ctx context.Context) ([]*model.PoolDocument, error) {
	cursor, err := db.collection(model.PoolCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*model.PoolDocument
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, fmt.Errorf("failed to decode pools: %w", err)
	}
	return pools, nil
}
