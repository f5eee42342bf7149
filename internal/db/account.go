package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
)

func (db *Database) GetAccount(ctx context.Context, poolID, address string) (*model.AccountDocument, error) {
	filter := bson.M{"_id": model.AccountKey{PoolID: poolID, Address: address}}

	res := db.collection(model.AccountCollection).FindOne(ctx, filter)
	var account model.AccountDocument
	if err := res.Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     poolID + "/" + address,
				Message: "account not found",
			}
		}
		return nil, err
	}
	return &account, nil
}

func (db *Database) CountPoolAccounts(ctx context.Context, poolID string) (int64, error) {
	filter := bson.M{"_id.pool_id": poolID}
	return db.collection(model.AccountCollection).CountDocuments(ctx, filter)
}

// CommitPoolMutation writes the outcome of a single entry point inside one
// mongo transaction so a failure leaves no partial state behind.
func (db *Database) CommitPoolMutation(
	ctx context.Context,
	pool *model.PoolDocument,
	account *model.AccountDocument,
	removeAccount bool,
) error {
	session, err := db.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		poolFilter := bson.M{"_id": pool.PoolID}
		res, err := db.collection(model.PoolCollection).ReplaceOne(sc, poolFilter, pool)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, &NotFoundError{
				Key:     pool.PoolID,
				Message: "pool not found",
			}
		}

		if account == nil {
			return nil, nil
		}

		accountFilter := bson.M{"_id": account.ID}
		if removeAccount {
			if _, err := db.collection(model.AccountCollection).DeleteOne(sc, accountFilter); err != nil {
				return nil, err
			}
			return nil, nil
		}

		opts := options.Replace().SetUpsert(true)
		if _, err := db.collection(model.AccountCollection).ReplaceOne(sc, accountFilter, account, opts); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
