package service

import (
	"context"
	"errors"
	"log"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLogNotFound     = errors.New("workout log not found")
	ErrLogAccessDenied = errors.New("access denied to this workout log")
	ErrInvalidLogInput = errors.New("workout log validation failed")
)

// NewLogInput describes a performed session to record.
type NewLogInput struct {
	PlanID             *primitive.ObjectID
	GeneratedSessionID *primitive.ObjectID
	PerformedAt        *time.Time
	Notes              string
	Sets               []NewSetInput
}

// NewSetInput describes one performed set.
type NewSetInput struct {
	ExerciseName string
	SortOrder    int
	SetNumber    int
	Reps         int
	WeightKg     *float64
	RPE          *float64
}

// WorkoutService records performed sessions. Every write invalidates the
// user's stats cache, since all derived metrics read from the logs.
type WorkoutService interface {
	CreateLog(ctx context.Context, userID primitive.ObjectID, input NewLogInput) (*domain.WorkoutLog, error)
	GetLog(ctx context.Context, userID, logID primitive.ObjectID) (*domain.WorkoutLog, []domain.WorkoutSet, error)
	ListLogs(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	logRepo   repository.WorkoutLogRepository
	cacheRepo repository.StatsCacheRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(logRepo repository.WorkoutLogRepository, cacheRepo repository.StatsCacheRepository) WorkoutService {
	return &workoutService{
		logRepo:   logRepo,
		cacheRepo: cacheRepo,
	}
}

// CreateLog records a log and its sets in one transaction, then invalidates
// the user's stats cache. Cache invalidation failure is logged, not
// surfaced: the cache is best-effort derived state and a stale TTL bounds
// the damage.
func (s *workoutService) CreateLog(ctx context.Context, userID primitive.ObjectID, input NewLogInput) (*domain.WorkoutLog, error) {
	if len(input.Sets) == 0 {
		return nil, ErrInvalidLogInput
	}
	for _, set := range input.Sets {
		if set.ExerciseName == "" || set.Reps < 0 {
			return nil, ErrInvalidLogInput
		}
	}

	workoutLog := &domain.WorkoutLog{
		UserID:             userID,
		PlanID:             input.PlanID,
		GeneratedSessionID: input.GeneratedSessionID,
		Notes:              input.Notes,
	}
	if input.PerformedAt != nil {
		workoutLog.PerformedAt = input.PerformedAt.UTC()
	}

	sets := make([]domain.WorkoutSet, len(input.Sets))
	for i, set := range input.Sets {
		sets[i] = domain.WorkoutSet{
			ExerciseName: set.ExerciseName,
			SortOrder:    set.SortOrder,
			SetNumber:    set.SetNumber,
			Reps:         set.Reps,
			WeightKg:     set.WeightKg,
			RPE:          set.RPE,
		}
		if sets[i].SetNumber == 0 {
			sets[i].SetNumber = i + 1
		}
	}

	logID, err := s.logRepo.Create(ctx, workoutLog, sets)
	if err != nil {
		return nil, err
	}
	workoutLog.ID = logID

	if err := s.cacheRepo.Invalidate(ctx, userID); err != nil {
		log.Printf("WARN: Failed to invalidate stats cache for user %s: %v", userID.Hex(), err)
	}
	return workoutLog, nil
}

// GetLog retrieves an owned log together with its ordered sets.
func (s *workoutService) GetLog(ctx context.Context, userID, logID primitive.ObjectID) (*domain.WorkoutLog, []domain.WorkoutSet, error) {
	workoutLog, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrLogNotFound
		}
		return nil, nil, err
	}
	if workoutLog.UserID != userID {
		return nil, nil, ErrLogAccessDenied
	}
	sets, err := s.logRepo.GetSetsByLog(ctx, logID)
	if err != nil {
		return nil, nil, err
	}
	return workoutLog, sets, nil
}

// ListLogs retrieves the user's most recent logs.
func (s *workoutService) ListLogs(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	return s.logRepo.ListByUser(ctx, userID, limit)
}
