package bootstrap

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"piazza/internal/repository"
)

// EnsureIndexes creates the unique username index that backs registration
// races, plus the indexes the topic queries sort and filter on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(repository.UsersCollection).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
	); err != nil {
		return err
	}

	_, err := db.Collection(repository.PostsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "topics", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("topics_created_at"),
		},
		{
			Keys:    bson.D{{Key: "topics", Value: 1}, {Key: "expiration_at", Value: 1}},
			Options: options.Index().SetName("topics_expiration_at"),
		},
	})
	return err
}
