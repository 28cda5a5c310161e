package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("dead_letters")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "failed_at", Value: -1}},
			Options: options.Index().SetName("idx_dead_letters_failed_at"),
		},
		{
			Keys:    bson.D{{Key: "route_id", Value: 1}, {Key: "failed_at", Value: -1}},
			Options: options.Index().SetName("idx_dead_letters_route_failed_at"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}},
			Options: options.Index().SetName("idx_dead_letters_kind"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
