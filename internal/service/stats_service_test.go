package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeWorkoutLogRepo struct {
	sets         []domain.WorkoutSet
	rangeQueries int
	sessionIDs   []primitive.ObjectID
}

func (r *fakeWorkoutLogRepo) Create(ctx context.Context, log *domain.WorkoutLog, sets []domain.WorkoutSet) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (r *fakeWorkoutLogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutLogRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	return nil, nil
}

func (r *fakeWorkoutLogRepo) GetSetsByLog(ctx context.Context, logID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	return nil, nil
}

func (r *fakeWorkoutLogRepo) ListSetsInRange(ctx context.Context, userID primitive.ObjectID, from time.Time, exercise string) ([]domain.WorkoutSet, error) {
	r.rangeQueries++
	var out []domain.WorkoutSet
	for _, s := range r.sets {
		if exercise != "" && s.ExerciseName != exercise {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeWorkoutLogRepo) DistinctGeneratedSessionIDs(ctx context.Context, userID primitive.ObjectID, from time.Time) ([]primitive.ObjectID, error) {
	return r.sessionIDs, nil
}

type fakeStatsCacheRepo struct {
	entries map[string]*domain.StatsCacheEntry
	broken  bool
}

func newFakeStatsCacheRepo() *fakeStatsCacheRepo {
	return &fakeStatsCacheRepo{entries: make(map[string]*domain.StatsCacheEntry)}
}

func cacheKey(userID primitive.ObjectID, metric, paramsHash string) string {
	return userID.Hex() + "/" + metric + "/" + paramsHash
}

func (r *fakeStatsCacheRepo) Get(ctx context.Context, userID primitive.ObjectID, metric, paramsHash string) (*domain.StatsCacheEntry, error) {
	if r.broken {
		return nil, errors.New("cache backend down")
	}
	entry, ok := r.entries[cacheKey(userID, metric, paramsHash)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entry, nil
}

func (r *fakeStatsCacheRepo) Upsert(ctx context.Context, entry *domain.StatsCacheEntry) error {
	if r.broken {
		return errors.New("cache backend down")
	}
	entry.UpdatedAt = time.Now()
	r.entries[cacheKey(entry.UserID, entry.Metric, entry.ParamsHash)] = entry
	return nil
}

func (r *fakeStatsCacheRepo) Invalidate(ctx context.Context, userID primitive.ObjectID) error {
	if r.broken {
		return errors.New("cache backend down")
	}
	for key := range r.entries {
		delete(r.entries, key)
	}
	return nil
}

// --- Tests ---

func loggedSquatSet(weight float64, reps int, at time.Time) domain.WorkoutSet {
	return domain.WorkoutSet{ExerciseName: "squat", Reps: reps, WeightKg: &weight, PerformedAt: at}
}

func TestStatsServiceE1RMCaching(t *testing.T) {
	logs := &fakeWorkoutLogRepo{
		sets: []domain.WorkoutSet{loggedSquatSet(100, 5, time.Now().AddDate(0, 0, -1))},
	}
	cache := newFakeStatsCacheRepo()
	svc := NewStatsService(logs, newFakeSessionRepo(), cache, time.Minute)

	userID := primitive.NewObjectID()
	first, err := svc.E1RMSeries(context.Background(), userID, "squat", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.rangeQueries)

	var payload struct {
		Exercise  string `json:"exercise"`
		RangeDays int    `json:"rangeDays"`
		Points    []struct {
			Day  string  `json:"day"`
			E1RM float64 `json:"e1rm"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(first, &payload))
	assert.Equal(t, "squat", payload.Exercise)
	assert.Equal(t, 30, payload.RangeDays)
	require.Len(t, payload.Points, 1)
	assert.Equal(t, 116.7, payload.Points[0].E1RM)

	// A second identical query is served from the cache.
	second, err := svc.E1RMSeries(context.Background(), userID, "squat", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.rangeQueries)
	assert.JSONEq(t, string(first), string(second))

	// Different params miss the cache.
	_, err = svc.E1RMSeries(context.Background(), userID, "squat", 60)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.rangeQueries)
}

func TestStatsServiceCacheFailureFallsBack(t *testing.T) {
	logs := &fakeWorkoutLogRepo{
		sets: []domain.WorkoutSet{loggedSquatSet(100, 5, time.Now().AddDate(0, 0, -1))},
	}
	cache := newFakeStatsCacheRepo()
	cache.broken = true
	svc := NewStatsService(logs, newFakeSessionRepo(), cache, time.Minute)

	payload, err := svc.E1RMSeries(context.Background(), primitive.NewObjectID(), "squat", 30)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "squat")
}

func TestStatsServiceE1RMRequiresExercise(t *testing.T) {
	svc := NewStatsService(&fakeWorkoutLogRepo{}, newFakeSessionRepo(), newFakeStatsCacheRepo(), time.Minute)
	_, err := svc.E1RMSeries(context.Background(), primitive.NewObjectID(), "", 30)
	assert.ErrorIs(t, err, ErrInvalidStatsParams)
}

func TestStatsServiceVolumeBucketValidation(t *testing.T) {
	svc := NewStatsService(&fakeWorkoutLogRepo{}, newFakeSessionRepo(), newFakeStatsCacheRepo(), time.Minute)
	_, err := svc.Volume(context.Background(), primitive.NewObjectID(), 30, "fortnight", "")
	assert.ErrorIs(t, err, ErrInvalidStatsParams)
}

func TestStatsServiceCompliance(t *testing.T) {
	planned := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	sessions := newFakeSessionRepo()
	sessions.plannedIDs = planned
	userID := primitive.NewObjectID()
	planID := primitive.NewObjectID()

	// Two of the three planned sessions were logged; one logged id is stale
	// and no longer planned.
	logs := &fakeWorkoutLogRepo{
		sessionIDs: []primitive.ObjectID{planned[0], planned[2], primitive.NewObjectID()},
	}
	svc := NewStatsService(logs, sessions, newFakeStatsCacheRepo(), time.Minute)

	payload, err := svc.Compliance(context.Background(), userID, &planID, 30)
	require.NoError(t, err)

	var result struct {
		Planned    int     `json:"planned"`
		Done       int     `json:"done"`
		Compliance float64 `json:"compliance"`
	}
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, 3, result.Planned)
	assert.Equal(t, 2, result.Done)
	assert.Equal(t, 0.667, result.Compliance)
}
