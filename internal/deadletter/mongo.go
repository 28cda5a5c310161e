package deadletter

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("dead_letters"),
	}
}

func (s *MongoStore) Save(ctx context.Context, entry Entry) error {
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to save dead letter: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "failed_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find dead letters: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode dead letters: %w", err)
	}

	return entries, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dead letter: %w", err)
	}
	return &entry, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete dead letter: %w", err)
	}
	return nil
}
