package service

import (
	"context"
	"testing"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	stored := *user
	r.users[id] = &stored
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func newPlanServiceFixture(t *testing.T) (PlanService, *fakePlanRepo, *fakeProgramRepo, *fakeUserRepo, primitive.ObjectID) {
	t.Helper()
	plans := newFakePlanRepo()
	programs := newFakeProgramRepo()
	users := newFakeUserRepo()
	userID, err := users.Create(context.Background(), &domain.User{Name: "Lena", Email: "lena@example.com"})
	require.NoError(t, err)
	return NewPlanService(plans, newFakeOverrideRepo(), programs, users), plans, programs, users, userID
}

func TestCreatePlanValidation(t *testing.T) {
	svc, _, programs, users, userID := newPlanServiceFixture(t)
	versionID := seedFiveThreeOne(t, programs)

	t.Run("single plan needs an existing root version", func(t *testing.T) {
		_, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "no root", Type: domain.PlanTypeSingle,
		})
		assert.ErrorIs(t, err, ErrInvalidPlanInput)

		missing := primitive.NewObjectID()
		_, err = svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "dangling root", Type: domain.PlanTypeSingle, RootProgramVersionID: &missing,
		})
		assert.ErrorIs(t, err, ErrVersionNotFound)
	})

	t.Run("key mode defaults from the user profile", func(t *testing.T) {
		users.users[userID].DefaultKeyMode = domain.KeyModeDate
		plan, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "dated", Type: domain.PlanTypeSingle, RootProgramVersionID: &versionID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.KeyModeDate, plan.KeyMode)

		users.users[userID].DefaultKeyMode = ""
		plan, err = svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "legacy fallback", Type: domain.PlanTypeSingle, RootProgramVersionID: &versionID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.KeyModeLegacy, plan.KeyMode)
	})

	t.Run("composite plan needs at least one module with a target", func(t *testing.T) {
		_, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "empty composite", Type: domain.PlanTypeComposite,
		})
		assert.ErrorIs(t, err, ErrInvalidPlanInput)

		_, err = svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "unnamed target", Type: domain.PlanTypeComposite,
			Modules: []NewPlanModuleInput{{Target: "", ProgramVersionID: versionID}},
		})
		assert.ErrorIs(t, err, ErrInvalidPlanInput)
	})

	t.Run("composite plan drops any stray root version", func(t *testing.T) {
		plan, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
			Name: "composite", Type: domain.PlanTypeComposite,
			RootProgramVersionID: &versionID,
			Modules: []NewPlanModuleInput{
				{Target: "squat", ProgramVersionID: versionID, Priority: 1},
			},
		})
		require.NoError(t, err)
		assert.Nil(t, plan.RootProgramVersionID)
	})
}

func TestAddOverrideScopeValidation(t *testing.T) {
	svc, _, programs, _, userID := newPlanServiceFixture(t)
	versionID := seedFiveThreeOne(t, programs)
	plan, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
		Name: "plan", Type: domain.PlanTypeSingle, RootProgramVersionID: &versionID,
	})
	require.NoError(t, err)

	week := 2
	key := "W2D3"
	patch := domain.Patch{Op: domain.PatchOpRemoveExercise, Value: domain.PatchValue{ExerciseName: "press"}}

	cases := []struct {
		name    string
		input   NewOverrideInput
		wantErr bool
	}{
		{"plan scope clean", NewOverrideInput{Scope: domain.ScopePlan, Patch: patch}, false},
		{"plan scope with week", NewOverrideInput{Scope: domain.ScopePlan, WeekNumber: &week, Patch: patch}, true},
		{"week scope clean", NewOverrideInput{Scope: domain.ScopeWeek, WeekNumber: &week, Patch: patch}, false},
		{"week scope missing week", NewOverrideInput{Scope: domain.ScopeWeek, Patch: patch}, true},
		{"week scope with session key", NewOverrideInput{Scope: domain.ScopeWeek, WeekNumber: &week, SessionKey: &key, Patch: patch}, true},
		{"session scope clean", NewOverrideInput{Scope: domain.ScopeSession, SessionKey: &key, Patch: patch}, false},
		{"session scope missing key", NewOverrideInput{Scope: domain.ScopeSession, Patch: patch}, true},
		{"missing op", NewOverrideInput{Scope: domain.ScopePlan}, true},
		{"unknown scope", NewOverrideInput{Scope: "GLOBAL", Patch: patch}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddOverride(context.Background(), userID, plan.ID, tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOverride)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("foreign plan is denied", func(t *testing.T) {
		_, err := svc.AddOverride(context.Background(), primitive.NewObjectID(), plan.ID, NewOverrideInput{Scope: domain.ScopePlan, Patch: patch})
		assert.ErrorIs(t, err, ErrPlanAccessDenied)
	})
}

func TestListOverridesKeepsCreationOrder(t *testing.T) {
	svc, _, programs, _, userID := newPlanServiceFixture(t)
	versionID := seedFiveThreeOne(t, programs)
	plan, err := svc.CreatePlan(context.Background(), userID, NewPlanInput{
		Name: "plan", Type: domain.PlanTypeSingle, RootProgramVersionID: &versionID,
	})
	require.NoError(t, err)

	ops := []string{domain.PatchOpAddAccessory, domain.PatchOpRemoveExercise, domain.PatchOpSetParam}
	for _, op := range ops {
		_, err := svc.AddOverride(context.Background(), userID, plan.ID, NewOverrideInput{
			Scope: domain.ScopePlan,
			Patch: domain.Patch{Op: op, Value: domain.PatchValue{ExerciseName: "press", Key: "tempo", Param: "slow"}},
		})
		require.NoError(t, err)
	}

	overrides, err := svc.ListOverrides(context.Background(), userID, plan.ID)
	require.NoError(t, err)
	require.Len(t, overrides, 3)
	for i, op := range ops {
		assert.Equal(t, op, overrides[i].Patch.Op)
	}
}
