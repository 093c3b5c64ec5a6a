package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories query on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"events": {
			{Keys: bson.D{{Key: "organiserID", Value: 1}, {Key: "_id", Value: -1}}},
		},
		"quests": {
			{Keys: bson.D{{Key: "questListID", Value: 1}, {Key: "order", Value: 1}}},
		},
		"merchandise": {
			{Keys: bson.D{{Key: "organiserID", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"admin_users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
