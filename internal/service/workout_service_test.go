package service

import (
	"context"
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateLogValidation(t *testing.T) {
	svc := NewWorkoutService(&fakeWorkoutLogRepo{}, newFakeStatsCacheRepo())
	userID := primitive.NewObjectID()

	_, err := svc.CreateLog(context.Background(), userID, NewLogInput{})
	assert.ErrorIs(t, err, ErrInvalidLogInput)

	_, err = svc.CreateLog(context.Background(), userID, NewLogInput{
		Sets: []NewSetInput{{ExerciseName: "", Reps: 5}},
	})
	assert.ErrorIs(t, err, ErrInvalidLogInput)
}

func TestCreateLogInvalidatesStatsCache(t *testing.T) {
	cache := newFakeStatsCacheRepo()
	userID := primitive.NewObjectID()
	require.NoError(t, cache.Upsert(context.Background(), &domain.StatsCacheEntry{
		UserID: userID, Metric: "e1rm", ParamsHash: "abc", Payload: []byte(`{}`),
	}))
	require.Len(t, cache.entries, 1)

	svc := NewWorkoutService(&fakeWorkoutLogRepo{}, cache)
	performed := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	weight := 100.0

	workoutLog, err := svc.CreateLog(context.Background(), userID, NewLogInput{
		PerformedAt: &performed,
		Sets: []NewSetInput{
			{ExerciseName: "squat", Reps: 5, WeightKg: &weight},
			{ExerciseName: "squat", Reps: 5, WeightKg: &weight},
		},
	})
	require.NoError(t, err)
	assert.False(t, workoutLog.ID.IsZero())

	// Derived metrics must not survive a new log.
	assert.Empty(t, cache.entries)
}

func TestCreateLogCacheFailureIsNonFatal(t *testing.T) {
	cache := newFakeStatsCacheRepo()
	cache.broken = true
	svc := NewWorkoutService(&fakeWorkoutLogRepo{}, cache)

	_, err := svc.CreateLog(context.Background(), primitive.NewObjectID(), NewLogInput{
		Sets: []NewSetInput{{ExerciseName: "squat", Reps: 5}},
	})
	assert.NoError(t, err)
}
