package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/journal"
)

const collectionName = "journal_entries"

func init() {
	journal.RegisterFactory(journal.DriverMongoDB, func(ctx context.Context, cfg *config.JournalConfig) (journal.Repository, error) {
		repo, err := NewMongoRepository(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo repository: %w", err)
		}
		return repo, nil
	})
}

type MongoRepository struct {
	client  *mongo.Client
	entries *mongo.Collection
}

// NewMongoRepository connects to cfg.DSN (a mongodb:// URI) and uses
// cfg.Database.
func NewMongoRepository(ctx context.Context, cfg *config.JournalConfig) (*MongoRepository, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.DSN).
		SetMaxPoolSize(4).
		SetConnectTimeout(10 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "amm"
	}
	repo := &MongoRepository{
		client:  client,
		entries: client.Database(database).Collection(collectionName),
	}

	if err := repo.createIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	_, err := r.entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "signature", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MongoRepository) Save(ctx context.Context, entry *journal.Entry) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.entries.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, opts)
	return err
}

func (r *MongoRepository) FindBySignature(ctx context.Context, signature string) (*journal.Entry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var entry journal.Entry
	err := r.entries.FindOne(ctx, bson.M{"signature": signature}, opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *MongoRepository) FindRecent(ctx context.Context, limit int) ([]*journal.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.entries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*journal.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
