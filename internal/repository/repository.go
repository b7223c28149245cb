package repository

import (
	"context"
	"time"

	"liftlog/workout-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ListRecentLimit caps read-path page sizes.
const ListRecentLimit = 100

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository handles program templates and their append-only versions.
// CreateVersion must allocate a strictly increasing version number per
// template; a concurrent writer racing for the same number surfaces as
// ErrConflict for the caller to retry.
type ProgramRepository interface {
	CreateTemplate(ctx context.Context, template *domain.ProgramTemplate) (primitive.ObjectID, error)
	GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetTemplateBySlug(ctx context.Context, slug string) (*domain.ProgramTemplate, error)
	ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	CreateVersion(ctx context.Context, version *domain.ProgramVersion) (primitive.ObjectID, error)
	GetVersionByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramVersion, error)
	GetLatestVersion(ctx context.Context, templateID primitive.ObjectID) (*domain.ProgramVersion, error)
	ListVersions(ctx context.Context, templateID primitive.ObjectID) ([]domain.ProgramVersion, error)
}

// PlanRepository handles plans and their exclusively-owned modules. Create
// writes the plan and its modules in one transaction; Delete cascades to
// modules and overrides the same way. Partial writes must not be observable.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan, modules []domain.PlanModule) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	GetModules(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanModule, error)
	Delete(ctx context.Context, planID, userID primitive.ObjectID) error
}

// OverrideRepository stores append-only plan overrides. ListByPlan must
// return them in creation order; that order is semantically meaningful to
// the patch engine.
type OverrideRepository interface {
	Create(ctx context.Context, override *domain.PlanOverride) (primitive.ObjectID, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanOverride, error)
}

// GeneratedSessionRepository persists materialized sessions with at most one
// row per (userId, planId, sessionKey). Upsert must be an atomic
// insert-or-update at the storage layer, not a read-then-write.
type GeneratedSessionRepository interface {
	Upsert(ctx context.Context, session *domain.GeneratedSession) (*domain.GeneratedSession, error)
	Get(ctx context.Context, userID, planID primitive.ObjectID, sessionKey string) (*domain.GeneratedSession, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, limit int) ([]domain.GeneratedSession, error)
	// ListPlannedIDs returns the ids of sessions planned within the range,
	// optionally restricted to one plan. Input to the compliance join.
	ListPlannedIDs(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, from time.Time) ([]primitive.ObjectID, error)
}

// WorkoutLogRepository persists performed sessions and their sets. Create
// writes the log and its sets in one transaction.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog, sets []domain.WorkoutSet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error)
	GetSetsByLog(ctx context.Context, logID primitive.ObjectID) ([]domain.WorkoutSet, error)
	// ListSetsInRange feeds the stats computations: every set the user
	// performed since from, optionally filtered by exercise name.
	ListSetsInRange(ctx context.Context, userID primitive.ObjectID, from time.Time, exercise string) ([]domain.WorkoutSet, error)
	// DistinctGeneratedSessionIDs returns the planned sessions the user
	// actually performed within the range.
	DistinctGeneratedSessionIDs(ctx context.Context, userID primitive.ObjectID, from time.Time) ([]primitive.ObjectID, error)
}

// StatsCacheRepository is the content-addressed cache for aggregate queries,
// unique on (userId, metric, paramsHash). Purely derived state: safe to
// delete and repopulate at any time.
type StatsCacheRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID, metric, paramsHash string) (*domain.StatsCacheEntry, error)
	Upsert(ctx context.Context, entry *domain.StatsCacheEntry) error
	Invalidate(ctx context.Context, userID primitive.ObjectID) error
}
