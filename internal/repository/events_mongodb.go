package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"warehouse-inventory-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBEventRepository implements EventRepository using MongoDB.
// One document per event; a unique index on seq keeps the log free of duplicates.
type MongoDBEventRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBEventRepository connects to MongoDB and ensures the indexes exist.
func NewMongoDBEventRepository(uri, database, collection string) (*MongoDBEventRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "box_id", Value: 1}, {Key: "seq", Value: 1}},
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("[MongoDB] Warning: failed to create indexes: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBEventRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// Append stores one accepted event.
func (r *MongoDBEventRepository) Append(ctx context.Context, e model.Event) error {
	if _, err := r.collection.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSeq
		}
		return fmt.Errorf("failed to append event %d: %w", e.Seq, err)
	}
	return nil
}

// ListAll returns the whole log ordered by seq.
func (r *MongoDBEventRepository) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.find(ctx, bson.M{})
}

// ListByBox returns the events of one box ordered by seq.
func (r *MongoDBEventRepository) ListByBox(ctx context.Context, boxID string) ([]model.Event, error) {
	return r.find(ctx, bson.M{"box_id": boxID})
}

// ListSince returns events after afterSeq.
func (r *MongoDBEventRepository) ListSince(ctx context.Context, afterSeq int64) ([]model.Event, error) {
	return r.find(ctx, bson.M{"seq": bson.M{"$gt": afterSeq}})
}

func (r *MongoDBEventRepository) find(ctx context.Context, filter bson.M) ([]model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]model.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.UTC()
	}
	return events, nil
}

// MaxSeq returns the highest stored seq.
func (r *MongoDBEventRepository) MaxSeq(ctx context.Context) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})

	var e model.Event
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get max seq: %w", err)
	}
	return e.Seq, nil
}

// GetStats returns statistics about the event collection.
func (r *MongoDBEventRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["total_events"] = count

	boxes, err := r.collection.Distinct(ctx, "box_id", bson.M{})
	if err == nil {
		stats["distinct_boxes"] = len(boxes)
	}

	result := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		if size, ok := collStats["size"].(int64); ok {
			stats["db_size_bytes"] = size
		} else if size, ok := collStats["size"].(int32); ok {
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBEventRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ EventRepository = (*MongoDBEventRepository)(nil)
