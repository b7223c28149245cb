package mongo

import (
	"context"
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statsCacheCollectionName = "stats_cache"

// mongoStatsCacheRepository implements repository.StatsCacheRepository
type mongoStatsCacheRepository struct {
	collection *mongo.Collection
}

// NewMongoStatsCacheRepository creates a new StatsCache repository.
func NewMongoStatsCacheRepository(db *mongo.Database) repository.StatsCacheRepository {
	return &mongoStatsCacheRepository{
		collection: db.Collection(statsCacheCollectionName),
	}
}

// Get retrieves a cache entry by its content-addressed identity.
func (r *mongoStatsCacheRepository) Get(ctx context.Context, userID primitive.ObjectID, metric, paramsHash string) (*domain.StatsCacheEntry, error) {
	filter := bson.M{"userId": userID, "metric": metric, "paramsHash": paramsHash}
	var entry domain.StatsCacheEntry
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert stores a computed payload. Concurrent recomputation of the same key
// is tolerated: both writers hit the same unique identity and the last one
// wins, which is harmless because compute is pure.
func (r *mongoStatsCacheRepository) Upsert(ctx context.Context, entry *domain.StatsCacheEntry) error {
	filter := bson.M{
		"userId":     entry.UserID,
		"metric":     entry.Metric,
		"paramsHash": entry.ParamsHash,
	}
	update := bson.M{
		"$set": bson.M{
			"payload":   entry.Payload,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"userId":     entry.UserID,
			"metric":     entry.Metric,
			"paramsHash": entry.ParamsHash,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Invalidate deletes every cache row for the user. Called after any mutation
// of that user's logs.
func (r *mongoStatsCacheRepository) Invalidate(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureStatsCacheIndexes creates necessary indexes. Call during startup.
func EnsureStatsCacheIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "metric", Value: 1},
				{Key: "paramsHash", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
