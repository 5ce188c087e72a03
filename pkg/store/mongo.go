package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

const shelvesCollection = "shelves"

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the connection string (e.g. "mongodb://localhost:27017").
	URI string

	// Database is the database name. Defaults to "shelvesai".
	Database string
}

// MongoStore is a MongoDB-backed shelf store for server deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty connection URI")
	}
	if cfg.Database == "" {
		cfg.Database = "shelvesai"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(shelvesCollection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Shelf, error) {
	var shelf Shelf
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&shelf)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get shelf: %w", err)
	}
	return &shelf, nil
}

func (s *MongoStore) Put(ctx context.Context, shelf *Shelf) error {
	if shelf.ID == "" {
		shelf.ID = NewID()
	}
	now := time.Now().UTC()
	if shelf.CreatedAt.IsZero() {
		shelf.CreatedAt = now
	}
	shelf.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": shelf.ID}, shelf, opts); err != nil {
		return fmt.Errorf("mongo put shelf: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveLayout(ctx context.Context, id string, items []layout.Item) error {
	update := bson.M{"$set": bson.M{
		"layout":     items,
		"updated_at": time.Now().UTC(),
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("mongo save layout: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete shelf: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, owner string) ([]*Shelf, error) {
	filter := bson.M{}
	if owner != "" {
		filter["owner"] = owner
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo list shelves: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Shelf
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode shelves: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
