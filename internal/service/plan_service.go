package service

import (
	"context"
	"errors"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("access denied to this plan")
	ErrInvalidPlanInput = errors.New("plan validation failed")
	ErrInvalidOverride  = errors.New("override validation failed")
)

// NewPlanInput describes a plan to create; Modules is required for COMPOSITE
// plans and ignored otherwise.
type NewPlanInput struct {
	Name                 string
	Type                 domain.PlanType
	RootProgramVersionID *primitive.ObjectID
	Params               map[string]any
	KeyMode              domain.KeyMode
	Modules              []NewPlanModuleInput
}

// NewPlanModuleInput describes one module of a COMPOSITE plan.
type NewPlanModuleInput struct {
	Target           string
	ProgramVersionID primitive.ObjectID
	Priority         int
	Params           map[string]any
}

// NewOverrideInput describes an override to append to a plan.
type NewOverrideInput struct {
	Scope      domain.OverrideScope
	WeekNumber *int
	SessionKey *string
	Patch      domain.Patch
	Note       string
}

// PlanService manages plans, their modules, and their append-only overrides.
type PlanService interface {
	CreatePlan(ctx context.Context, userID primitive.ObjectID, input NewPlanInput) (*domain.Plan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, []domain.PlanModule, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error
	AddOverride(ctx context.Context, userID, planID primitive.ObjectID, input NewOverrideInput) (*domain.PlanOverride, error)
	ListOverrides(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanOverride, error)
}

// planService implements the PlanService interface.
type planService struct {
	planRepo     repository.PlanRepository
	overrideRepo repository.OverrideRepository
	programRepo  repository.ProgramRepository
	userRepo     repository.UserRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, overrideRepo repository.OverrideRepository, programRepo repository.ProgramRepository, userRepo repository.UserRepository) PlanService {
	return &planService{
		planRepo:     planRepo,
		overrideRepo: overrideRepo,
		programRepo:  programRepo,
		userRepo:     userRepo,
	}
}

// CreatePlan validates the plan invariants and writes the plan with its
// modules in one transaction.
func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, input NewPlanInput) (*domain.Plan, error) {
	if input.Name == "" {
		return nil, ErrInvalidPlanInput
	}
	switch input.Type {
	case domain.PlanTypeSingle, domain.PlanTypeManual:
		if input.RootProgramVersionID == nil {
			return nil, ErrInvalidPlanInput
		}
		if _, err := s.programRepo.GetVersionByID(ctx, *input.RootProgramVersionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrVersionNotFound
			}
			return nil, err
		}
	case domain.PlanTypeComposite:
		// A COMPOSITE plan must carry at least one module.
		if len(input.Modules) == 0 {
			return nil, ErrInvalidPlanInput
		}
		input.RootProgramVersionID = nil
		for _, m := range input.Modules {
			if m.Target == "" {
				return nil, ErrInvalidPlanInput
			}
			if _, err := s.programRepo.GetVersionByID(ctx, m.ProgramVersionID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrVersionNotFound
				}
				return nil, err
			}
		}
	default:
		return nil, ErrInvalidPlanInput
	}

	keyMode := input.KeyMode
	if keyMode == "" {
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil && user.DefaultKeyMode != "" {
			keyMode = user.DefaultKeyMode
		} else {
			keyMode = domain.KeyModeLegacy
		}
	}

	plan := &domain.Plan{
		UserID:               userID,
		Name:                 input.Name,
		Type:                 input.Type,
		RootProgramVersionID: input.RootProgramVersionID,
		Params:               input.Params,
		KeyMode:              keyMode,
	}
	modules := make([]domain.PlanModule, len(input.Modules))
	for i, m := range input.Modules {
		modules[i] = domain.PlanModule{
			Target:           m.Target,
			ProgramVersionID: m.ProgramVersionID,
			Priority:         m.Priority,
			Params:           m.Params,
		}
	}
	if plan.Type != domain.PlanTypeComposite {
		modules = nil
	}

	planID, err := s.planRepo.Create(ctx, plan, modules)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// GetPlan retrieves an owned plan and its modules.
func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, []domain.PlanModule, error) {
	plan, err := s.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, nil, err
	}
	modules, err := s.planRepo.GetModules(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return plan, modules, nil
}

// ListPlans retrieves all plans owned by the user.
func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return s.planRepo.ListByUser(ctx, userID)
}

// DeletePlan removes an owned plan and everything it owns.
func (s *planService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// AddOverride validates scope fields and appends an override to an owned
// plan. WeekNumber/SessionKey must be present exactly when the scope requires
// them.
func (s *planService) AddOverride(ctx context.Context, userID, planID primitive.ObjectID, input NewOverrideInput) (*domain.PlanOverride, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	if input.Patch.Op == "" {
		return nil, ErrInvalidOverride
	}
	switch input.Scope {
	case domain.ScopePlan:
		if input.WeekNumber != nil || input.SessionKey != nil {
			return nil, ErrInvalidOverride
		}
	case domain.ScopeWeek:
		if input.WeekNumber == nil || input.SessionKey != nil {
			return nil, ErrInvalidOverride
		}
	case domain.ScopeSession:
		if input.SessionKey == nil || input.WeekNumber != nil {
			return nil, ErrInvalidOverride
		}
	default:
		return nil, ErrInvalidOverride
	}

	override := &domain.PlanOverride{
		PlanID:     planID,
		Scope:      input.Scope,
		WeekNumber: input.WeekNumber,
		SessionKey: input.SessionKey,
		Patch:      input.Patch,
		Note:       input.Note,
	}
	overrideID, err := s.overrideRepo.Create(ctx, override)
	if err != nil {
		return nil, err
	}
	override.ID = overrideID
	return override, nil
}

// ListOverrides retrieves an owned plan's overrides in creation order.
func (s *planService) ListOverrides(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanOverride, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	return s.overrideRepo.ListByPlan(ctx, planID)
}

func (s *planService) ownedPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}
