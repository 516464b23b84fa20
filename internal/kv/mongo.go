package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCollectionName = "kv"
	mongoOpTimeout      = 5 * time.Second
)

// MongoStore is the subset of collection operations the Mongo medium
// needs. It exists so the medium can be tested without a server.
type MongoStore interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type kvDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoCollection adapts *mongo.Collection to MongoStore.
type MongoCollection struct {
	*mongo.Collection
}

// Lookup finds the document for key.
func (c *MongoCollection) Lookup(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to find %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Upsert replaces or inserts the document for key.
func (c *MongoCollection) Upsert(ctx context.Context, key, value string) error {
	_, err := c.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for key.
func (c *MongoCollection) Delete(ctx context.Context, key string) error {
	if _, err := c.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Mongo is a medium shared through a MongoDB collection. Each operation
// runs under its own short timeout so the medium stays synchronous.
type Mongo struct {
	store  MongoStore
	client *mongo.Client
}

// NewMongo wraps an existing store.
func NewMongo(store MongoStore) *Mongo {
	return &Mongo{store: store}
}

// ConnectMongo dials uri and uses the "kv" collection of database.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	coll := client.Database(database).Collection(mongoCollectionName)
	return &Mongo{store: &MongoCollection{coll}, client: client}, nil
}

func (m *Mongo) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	return m.store.Lookup(ctx, key)
}

func (m *Mongo) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	return m.store.Upsert(ctx, key, value)
}

func (m *Mongo) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	return m.store.Delete(ctx, key)
}

// Close disconnects the client, if the medium owns one.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
