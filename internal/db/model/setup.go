package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algopool-labs/staking-pool-engine/internal/config"
)

const setupTimeout = 30 * time.Second

var collections = map[string][]mongo.IndexModel{
	PoolCollection: {
		{Keys: bson.D{{Key: "admin", Value: 1}}},
	},
	AccountCollection: {
		{Keys: bson.D{{Key: "_id.pool_id", Value: 1}}},
	},
}

// Setup creates the collections and indexes the engine relies on. Safe to
// call on every start; index creation is idempotent.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps = clientOps.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) > 0 {
			if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
				return err
			}
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	// NamespaceExists (code 48) on reruns is fine.
	err := database.CreateCollection(ctx, name)
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorCode(48) {
		return nil
	}
	return err
}
