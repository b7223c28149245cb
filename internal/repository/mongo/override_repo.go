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

const overrideCollectionName = "plan_overrides"

// mongoOverrideRepository implements repository.OverrideRepository
type mongoOverrideRepository struct {
	collection *mongo.Collection
}

// NewMongoOverrideRepository creates a new Override repository.
func NewMongoOverrideRepository(db *mongo.Database) repository.OverrideRepository {
	return &mongoOverrideRepository{
		collection: db.Collection(overrideCollectionName),
	}
}

// Create appends an override. Overrides are append-only facts; there is no
// update path.
func (r *mongoOverrideRepository) Create(ctx context.Context, override *domain.PlanOverride) (primitive.ObjectID, error) {
	if override.PlanID == primitive.NilObjectID || override.Scope == "" || override.Patch.Op == "" {
		return primitive.NilObjectID, errors.New("override requires planId, scope, and patch.op")
	}
	override.ID = primitive.NewObjectID()
	override.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, override)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted override ID")
	}
	return insertedID, nil
}

// ListByPlan retrieves a plan's overrides in creation order. ObjectIDs are
// monotonic enough here because every insert goes through this process, and
// the _id sort keeps the order stable even when CreatedAt collides.
func (r *mongoOverrideRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanOverride, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var overrides []domain.PlanOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// EnsureOverrideIndexes creates necessary indexes. Call during startup.
func EnsureOverrideIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
