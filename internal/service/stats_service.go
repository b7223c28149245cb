package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"
	"liftlog/workout-app/internal/stats"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidStatsParams = errors.New("stats parameters validation failed")
)

const defaultStatsRangeDays = 90

// StatsService serves aggregate metrics over the workout logs, memoized in a
// content-addressed cache keyed by (userId, metric, hash of params). Cache
// trouble never fails a request: reads and writes that error fall back to
// direct computation.
type StatsService interface {
	E1RMSeries(ctx context.Context, userID primitive.ObjectID, exercise string, days int) (json.RawMessage, error)
	Volume(ctx context.Context, userID primitive.ObjectID, days int, bucket string, exercise string) (json.RawMessage, error)
	Compliance(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, days int) (json.RawMessage, error)
}

// statsService implements the StatsService interface.
type statsService struct {
	logRepo     repository.WorkoutLogRepository
	sessionRepo repository.GeneratedSessionRepository
	cacheRepo   repository.StatsCacheRepository
	cacheTTL    time.Duration
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(
	logRepo repository.WorkoutLogRepository,
	sessionRepo repository.GeneratedSessionRepository,
	cacheRepo repository.StatsCacheRepository,
	cacheTTL time.Duration,
) StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &statsService{
		logRepo:     logRepo,
		sessionRepo: sessionRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
	}
}

// E1RMSeries computes the per-day best estimated one-rep max for an exercise.
func (s *statsService) E1RMSeries(ctx context.Context, userID primitive.ObjectID, exercise string, days int) (json.RawMessage, error) {
	if exercise == "" {
		return nil, ErrInvalidStatsParams
	}
	days = normalizeRangeDays(days)
	params := map[string]any{"exercise": exercise, "rangeDays": days}

	return s.getOrCompute(ctx, userID, "e1rm", params, func(ctx context.Context) (any, error) {
		sets, err := s.loggedSets(ctx, userID, days, exercise)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"exercise":  exercise,
			"rangeDays": days,
			"points":    stats.E1RMSeries(sets),
		}, nil
	})
}

// Volume computes tonnage grouped by exercise, or by time bucket when a
// bucket is requested.
func (s *statsService) Volume(ctx context.Context, userID primitive.ObjectID, days int, bucket string, exercise string) (json.RawMessage, error) {
	days = normalizeRangeDays(days)
	params := map[string]any{"rangeDays": days, "bucket": bucket, "exercise": exercise}

	var parsed stats.Bucket
	if bucket != "" {
		var err error
		parsed, err = stats.ParseBucket(bucket)
		if err != nil {
			return nil, ErrInvalidStatsParams
		}
	}

	return s.getOrCompute(ctx, userID, "volume", params, func(ctx context.Context) (any, error) {
		sets, err := s.loggedSets(ctx, userID, days, exercise)
		if err != nil {
			return nil, err
		}
		var rows []stats.VolumeRow
		if bucket != "" {
			rows = stats.VolumeByBucket(sets, parsed)
		} else {
			rows = stats.VolumeByExercise(sets)
		}
		return map[string]any{
			"rangeDays": days,
			"bucket":    bucket,
			"rows":      rows,
		}, nil
	})
}

// Compliance joins the sessions planned in the range against the sessions
// actually logged, and reports done/planned.
func (s *statsService) Compliance(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, days int) (json.RawMessage, error) {
	days = normalizeRangeDays(days)
	params := map[string]any{"rangeDays": days}
	if planID != nil {
		params["planId"] = planID.Hex()
	}

	return s.getOrCompute(ctx, userID, "compliance", params, func(ctx context.Context) (any, error) {
		from := rangeStart(days)
		plannedIDs, err := s.sessionRepo.ListPlannedIDs(ctx, userID, planID, from)
		if err != nil {
			return nil, err
		}
		doneIDs, err := s.logRepo.DistinctGeneratedSessionIDs(ctx, userID, from)
		if err != nil {
			return nil, err
		}

		planned := make(map[primitive.ObjectID]struct{}, len(plannedIDs))
		for _, id := range plannedIDs {
			planned[id] = struct{}{}
		}
		done := 0
		for _, id := range doneIDs {
			if _, ok := planned[id]; ok {
				done++
			}
		}
		return map[string]any{
			"rangeDays":  days,
			"planned":    len(plannedIDs),
			"done":       done,
			"compliance": stats.Compliance(len(plannedIDs), done),
		}, nil
	})
}

// getOrCompute memoizes compute through the stats cache. A fresh cached entry
// short-circuits; anything else runs compute and writes the result back,
// best-effort.
func (s *statsService) getOrCompute(ctx context.Context, userID primitive.ObjectID, metric string, params map[string]any, compute func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	paramsHash, err := stats.HashParams(params)
	if err != nil {
		return nil, ErrInvalidStatsParams
	}

	entry, err := s.cacheRepo.Get(ctx, userID, metric, paramsHash)
	if err == nil && time.Since(entry.UpdatedAt) <= s.cacheTTL {
		return json.RawMessage(entry.Payload), nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("WARN: Stats cache read failed for user %s metric %s: %v", userID.Hex(), metric, err)
	}

	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	writeErr := s.cacheRepo.Upsert(ctx, &domain.StatsCacheEntry{
		UserID:     userID,
		Metric:     metric,
		ParamsHash: paramsHash,
		Payload:    payload,
	})
	if writeErr != nil {
		log.Printf("WARN: Stats cache write failed for user %s metric %s: %v", userID.Hex(), metric, writeErr)
	}
	return payload, nil
}

func (s *statsService) loggedSets(ctx context.Context, userID primitive.ObjectID, days int, exercise string) ([]stats.LoggedSet, error) {
	rows, err := s.logRepo.ListSetsInRange(ctx, userID, rangeStart(days), exercise)
	if err != nil {
		return nil, err
	}
	sets := make([]stats.LoggedSet, len(rows))
	for i, r := range rows {
		sets[i] = stats.LoggedSet{
			ExerciseName: r.ExerciseName,
			Reps:         r.Reps,
			WeightKg:     r.WeightKg,
			PerformedAt:  r.PerformedAt,
		}
	}
	return sets, nil
}

func normalizeRangeDays(days int) int {
	if days <= 0 {
		return defaultStatsRangeDays
	}
	return days
}

func rangeStart(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}
