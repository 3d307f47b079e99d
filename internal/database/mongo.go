// Package database manages the MongoDB connection and collection handles.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo bundles the client and the application's collections.
type Mongo struct {
	Client       *mongo.Client
	Users        *mongo.Collection
	Posts        *mongo.Collection
	Comments     *mongo.Collection
	ActivityLogs *mongo.Collection
}

// Connect establishes the MongoDB connection, verifies it with a ping,
// and ensures the unique indexes the data model relies on.
func Connect(uri, dbName string) (*Mongo, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	m := &Mongo{
		Client:       client,
		Users:        db.Collection("users"),
		Posts:        db.Collection("posts"),
		Comments:     db.Collection("comments"),
		ActivityLogs: db.Collection("activity_logs"),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return m, nil
}

// ensureIndexes creates the unique indexes backing the data model's
// uniqueness invariants (user email/username, post title/slug) and the
// comment postId lookup index.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := m.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
	}); err != nil {
		return err
	}

	if _, err := m.Posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
	}); err != nil {
		return err
	}

	_, err := m.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}},
	})
	return err
}

// Ping verifies the connection is still alive.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
