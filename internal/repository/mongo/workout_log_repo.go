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

const (
	workoutLogCollectionName = "workout_logs"
	workoutSetCollectionName = "workout_sets"
)

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	client *mongo.Client
	logs   *mongo.Collection
	sets   *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		client: db.Client(),
		logs:   db.Collection(workoutLogCollectionName),
		sets:   db.Collection(workoutSetCollectionName),
	}
}

// Create inserts a log and its sets in one transaction; a log is never
// observable without its sets. UserID and PerformedAt are denormalized onto
// each set for the stats range queries.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog, sets []domain.WorkoutSet) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires userId")
	}
	if log.PerformedAt.IsZero() {
		log.PerformedAt = time.Now().UTC()
	}
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()

	docs := make([]interface{}, 0, len(sets))
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		sets[i].LogID = log.ID
		sets[i].UserID = log.UserID
		sets[i].PerformedAt = log.PerformedAt
		docs = append(docs, sets[i])
	}

	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.logs.InsertOne(sc, log); err != nil {
			return err
		}
		if len(docs) > 0 {
			if _, err := r.sets.InsertMany(sc, docs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

// GetByID retrieves a single workout log.
func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	err := r.logs.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ListByUser retrieves a user's logs, most recent first.
func (r *mongoWorkoutLogRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	if limit <= 0 || limit > repository.ListRecentLimit {
		limit = repository.ListRecentLimit
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "performedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.logs.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetSetsByLog retrieves a log's sets in (sortOrder, setNumber, _id) order.
func (r *mongoWorkoutLogRepository) GetSetsByLog(ctx context.Context, logID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "sortOrder", Value: 1},
		{Key: "setNumber", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.sets.Find(ctx, bson.M{"logId": logID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.WorkoutSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// ListSetsInRange retrieves every set performed since from, optionally
// filtered to one exercise, ordered by performed time.
func (r *mongoWorkoutLogRepository) ListSetsInRange(ctx context.Context, userID primitive.ObjectID, from time.Time, exercise string) ([]domain.WorkoutSet, error) {
	filter := bson.M{
		"userId":      userID,
		"performedAt": bson.M{"$gte": from},
	}
	if exercise != "" {
		filter["exerciseName"] = exercise
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "performedAt", Value: 1}})

	cursor, err := r.sets.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.WorkoutSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// DistinctGeneratedSessionIDs returns the distinct planned sessions the user
// logged against since from.
func (r *mongoWorkoutLogRepository) DistinctGeneratedSessionIDs(ctx context.Context, userID primitive.ObjectID, from time.Time) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"userId":             userID,
		"performedAt":        bson.M{"$gte": from},
		"generatedSessionId": bson.M{"$ne": nil},
	}
	raw, err := r.logs.Distinct(ctx, "generatedSessionId", filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EnsureWorkoutLogIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, logs, sets *mongo.Collection) {
	logIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "performedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "generatedSessionId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = logs.Indexes().CreateMany(ctx, logIndexes)

	setIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logId", Value: 1}, {Key: "sortOrder", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "performedAt", Value: 1},
				{Key: "exerciseName", Value: 1},
			},
			Options: options.Index(),
		},
	}
	_, _ = sets.Indexes().CreateMany(ctx, setIndexes)
}
