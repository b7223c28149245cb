package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/engine"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("generated session not found")
)

// GenerationInput is the request-scoped context for one generation: which
// occurrence of the plan's program(s) to materialize.
type GenerationInput struct {
	Week        int
	Day         int
	SessionDate *time.Time
	Timezone    string
}

// GenerationService runs the full pipeline: resolve the plan, generate the
// draft, layer the overrides, and persist the materialized session
// idempotently. Regenerating the same identity overwrites the snapshot and
// never duplicates the row.
type GenerationService interface {
	GenerateAndSave(ctx context.Context, userID, planID primitive.ObjectID, input GenerationInput) (*domain.GeneratedSession, []string, error)
	GetSession(ctx context.Context, userID, planID primitive.ObjectID, sessionKey string) (*domain.GeneratedSession, error)
	ListRecentSessions(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, limit int) ([]domain.GeneratedSession, error)
}

// generationService implements the GenerationService interface.
type generationService struct {
	planRepo     repository.PlanRepository
	programRepo  repository.ProgramRepository
	overrideRepo repository.OverrideRepository
	sessionRepo  repository.GeneratedSessionRepository
}

// NewGenerationService creates a new instance of generationService.
func NewGenerationService(
	planRepo repository.PlanRepository,
	programRepo repository.ProgramRepository,
	overrideRepo repository.OverrideRepository,
	sessionRepo repository.GeneratedSessionRepository,
) GenerationService {
	return &generationService{
		planRepo:     planRepo,
		programRepo:  programRepo,
		overrideRepo: overrideRepo,
		sessionRepo:  sessionRepo,
	}
}

// GenerateAndSave materializes one session for the plan. The returned strings
// are non-fatal warnings (contested composite targets, unknown override ops)
// attached to an otherwise successful generation.
func (s *generationService) GenerateAndSave(ctx context.Context, userID, planID primitive.ObjectID, input GenerationInput) (*domain.GeneratedSession, []string, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}
	if plan.UserID != userID {
		return nil, nil, ErrPlanAccessDenied
	}

	var modules []domain.PlanModule
	if plan.Type == domain.PlanTypeComposite {
		modules, err = s.planRepo.GetModules(ctx, planID)
		if err != nil {
			return nil, nil, err
		}
	}

	versions, err := s.loadVersions(ctx, plan, modules)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := engine.Resolve(plan, modules, versions, input.Week, input.Day)
	if err != nil {
		return nil, nil, err
	}
	warnings := resolved.Warnings

	sessionKey, err := engine.SessionKey(plan.KeyMode, input.Week, input.Day, input.SessionDate, input.Timezone)
	if err != nil {
		return nil, nil, err
	}

	gctx := engine.Context{
		Week:        input.Week,
		Day:         input.Day,
		SessionDate: input.SessionDate,
		Timezone:    input.Timezone,
	}
	draft, err := s.generateAll(resolved.Resolutions, gctx)
	if err != nil {
		return nil, nil, err
	}
	draft.SessionKey = sessionKey

	overrides, err := s.overrideRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	final, overrideWarnings := engine.ApplyOverrides(draft, overrides, input.Week, sessionKey)
	warnings = append(warnings, overrideWarnings...)

	stored, err := s.sessionRepo.Upsert(ctx, &domain.GeneratedSession{
		UserID:     userID,
		PlanID:     planID,
		SessionKey: sessionKey,
		Snapshot:   *final,
	})
	if err != nil {
		return nil, nil, err
	}
	return stored, warnings, nil
}

// GetSession retrieves one materialized session.
func (s *generationService) GetSession(ctx context.Context, userID, planID primitive.ObjectID, sessionKey string) (*domain.GeneratedSession, error) {
	session, err := s.sessionRepo.Get(ctx, userID, planID, sessionKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// ListRecentSessions retrieves the user's recently generated sessions.
func (s *generationService) ListRecentSessions(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID, limit int) ([]domain.GeneratedSession, error) {
	return s.sessionRepo.ListRecent(ctx, userID, planID, limit)
}

// loadVersions fetches every program version the resolver will need, keyed
// by id, so the engine itself stays free of I/O.
func (s *generationService) loadVersions(ctx context.Context, plan *domain.Plan, modules []domain.PlanModule) (map[primitive.ObjectID]*domain.ProgramVersion, error) {
	ids := make([]primitive.ObjectID, 0, len(modules)+1)
	if plan.RootProgramVersionID != nil {
		ids = append(ids, *plan.RootProgramVersionID)
	}
	for _, m := range modules {
		ids = append(ids, m.ProgramVersionID)
	}

	versions := make(map[primitive.ObjectID]*domain.ProgramVersion, len(ids))
	for _, id := range ids {
		if _, seen := versions[id]; seen {
			continue
		}
		version, err := s.programRepo.GetVersionByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// The resolver reports the missing version with context.
				continue
			}
			return nil, err
		}
		versions[id] = version
	}
	return versions, nil
}

// generateAll runs the generator for every resolution and concatenates the
// drafts in resolution order.
func (s *generationService) generateAll(resolutions []engine.Resolution, gctx engine.Context) (*domain.SessionDraft, error) {
	combined := &domain.SessionDraft{Week: gctx.Week, Day: gctx.Day}
	var names []string
	for _, res := range resolutions {
		draft, err := engine.Generate(res.Version, res.EffectiveParams, gctx)
		if err != nil {
			return nil, err
		}
		if draft.Name != "" {
			names = append(names, draft.Name)
		}
		combined.Sets = append(combined.Sets, draft.Sets...)
	}
	combined.Name = strings.Join(names, " / ")
	return combined, nil
}
