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

const generatedSessionCollectionName = "generated_sessions"

// mongoGeneratedSessionRepository implements repository.GeneratedSessionRepository
type mongoGeneratedSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoGeneratedSessionRepository creates a new GeneratedSession repository.
func NewMongoGeneratedSessionRepository(db *mongo.Database) repository.GeneratedSessionRepository {
	return &mongoGeneratedSessionRepository{
		collection: db.Collection(generatedSessionCollectionName),
	}
}

// Upsert writes the materialized session for (userId, planId, sessionKey).
// This is a single conflict-target upsert against the unique index, so two
// racing generation requests end with one row and the last writer's snapshot,
// never a duplicate.
func (r *mongoGeneratedSessionRepository) Upsert(ctx context.Context, session *domain.GeneratedSession) (*domain.GeneratedSession, error) {
	if session.UserID == primitive.NilObjectID || session.PlanID == primitive.NilObjectID || session.SessionKey == "" {
		return nil, errors.New("generated session requires userId, planId, and sessionKey")
	}
	now := time.Now().UTC()
	filter := bson.M{
		"userId":     session.UserID,
		"planId":     session.PlanID,
		"sessionKey": session.SessionKey,
	}
	update := bson.M{
		"$set": bson.M{
			"snapshot":  session.Snapshot,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"userId":     session.UserID,
			"planId":     session.PlanID,
			"sessionKey": session.SessionKey,
			"createdAt":  now,
		},
	}
	findOptions := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.GeneratedSession
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, findOptions).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get retrieves the materialized session for one identity.
func (r *mongoGeneratedSessionRepository) Get(ctx context.Context, userID, planID primitive.ObjectID, sessionKey string) (*domain.GeneratedSession, error) {
	filter := bson.M{"userId": userID, "planId": planID, "sessionKey": sessionKey}
	var session domain.GeneratedSession
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListRecent retrieves the most recently (re)generated sessions, optionally
// restricted to one plan. The limit is capped at repository.ListRecentLimit.
func (r *mongoGeneratedSessionRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, limit int) ([]domain.GeneratedSession, error) {
	if limit <= 0 || limit > repository.ListRecentLimit {
		limit = repository.ListRecentLimit
	}
	filter := bson.M{"userId": userID}
	if planID != nil {
		filter["planId"] = *planID
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.GeneratedSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListPlannedIDs returns the ids of sessions planned since from. Distinct
// (planId, sessionKey) identities map one-to-one onto rows here, so the row
// ids are the compliance join's planned set.
func (r *mongoGeneratedSessionRepository) ListPlannedIDs(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, from time.Time) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"userId":    userID,
		"updatedAt": bson.M{"$gte": from},
	}
	if planID != nil {
		filter["planId"] = *planID
	}
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// EnsureGeneratedSessionIndexes creates necessary indexes. Call during startup.
func EnsureGeneratedSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The upsert identity: at most one row per (userId, planId, sessionKey).
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "planId", Value: 1},
				{Key: "sessionKey", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
