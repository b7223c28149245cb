package engine

import (
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveSinglePlan(t *testing.T) {
	versionID := primitive.NewObjectID()
	version := &domain.ProgramVersion{
		ID:       versionID,
		Defaults: map[string]any{"tmPercent": 0.85, "roundTo": 2.5},
	}
	versions := map[primitive.ObjectID]*domain.ProgramVersion{versionID: version}

	t.Run("plan params override version defaults", func(t *testing.T) {
		plan := &domain.Plan{
			Type:                 domain.PlanTypeSingle,
			RootProgramVersionID: &versionID,
			Params:               map[string]any{"tmPercent": 0.9},
		}

		result, err := Resolve(plan, nil, versions, 1, 1)
		require.NoError(t, err)
		require.Len(t, result.Resolutions, 1)

		res := result.Resolutions[0]
		assert.Equal(t, "main", res.Target)
		assert.Equal(t, 0.9, res.EffectiveParams["tmPercent"])
		assert.Equal(t, 2.5, res.EffectiveParams["roundTo"])
		assert.Empty(t, result.Warnings)
	})

	t.Run("missing root version fails", func(t *testing.T) {
		plan := &domain.Plan{Type: domain.PlanTypeSingle}
		_, err := Resolve(plan, nil, versions, 1, 1)
		var resErr *PlanResolutionError
		require.ErrorAs(t, err, &resErr)
	})

	t.Run("unknown root version fails", func(t *testing.T) {
		other := primitive.NewObjectID()
		plan := &domain.Plan{Type: domain.PlanTypeSingle, RootProgramVersionID: &other}
		_, err := Resolve(plan, nil, versions, 1, 1)
		var resErr *PlanResolutionError
		require.ErrorAs(t, err, &resErr)
	})
}

func TestResolveCompositePlan(t *testing.T) {
	squatVersionID := primitive.NewObjectID()
	benchVersionID := primitive.NewObjectID()
	versions := map[primitive.ObjectID]*domain.ProgramVersion{
		squatVersionID: {ID: squatVersionID, Defaults: map[string]any{"tmPercent": 0.9}},
		benchVersionID: {ID: benchVersionID, Defaults: map[string]any{"tmPercent": 0.85}},
	}
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("zero modules is fatal", func(t *testing.T) {
		plan := &domain.Plan{Type: domain.PlanTypeComposite}
		_, err := Resolve(plan, nil, versions, 1, 1)
		var resErr *PlanResolutionError
		require.ErrorAs(t, err, &resErr)
	})

	t.Run("resolves one entry per module with layered params", func(t *testing.T) {
		plan := &domain.Plan{
			Type:   domain.PlanTypeComposite,
			Params: map[string]any{"roundTo": 2.5},
		}
		modules := []domain.PlanModule{
			{Target: "squat", ProgramVersionID: squatVersionID, Priority: 1, Params: map[string]any{"tmPercent": 0.95}, CreatedAt: base},
			{Target: "bench", ProgramVersionID: benchVersionID, Priority: 2, CreatedAt: base},
		}

		result, err := Resolve(plan, modules, versions, 1, 1)
		require.NoError(t, err)
		require.Len(t, result.Resolutions, 2)

		assert.Equal(t, "squat", result.Resolutions[0].Target)
		assert.Equal(t, 0.95, result.Resolutions[0].EffectiveParams["tmPercent"])
		assert.Equal(t, 2.5, result.Resolutions[0].EffectiveParams["roundTo"])
		assert.Equal(t, "bench", result.Resolutions[1].Target)
		assert.Equal(t, 0.85, result.Resolutions[1].EffectiveParams["tmPercent"])
	})

	t.Run("contested target keeps lowest priority and warns", func(t *testing.T) {
		plan := &domain.Plan{Type: domain.PlanTypeComposite}
		modules := []domain.PlanModule{
			{Target: "squat", ProgramVersionID: benchVersionID, Priority: 5, CreatedAt: base},
			{Target: "squat", ProgramVersionID: squatVersionID, Priority: 1, CreatedAt: base.Add(time.Hour)},
		}

		result, err := Resolve(plan, modules, versions, 1, 1)
		require.NoError(t, err)
		require.Len(t, result.Resolutions, 1)
		assert.Equal(t, squatVersionID, result.Resolutions[0].Version.ID)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], `duplicate module target "squat"`)
	})

	t.Run("equal priority ties break on creation order", func(t *testing.T) {
		plan := &domain.Plan{Type: domain.PlanTypeComposite}
		modules := []domain.PlanModule{
			{Target: "squat", ProgramVersionID: benchVersionID, Priority: 1, CreatedAt: base.Add(time.Minute)},
			{Target: "squat", ProgramVersionID: squatVersionID, Priority: 1, CreatedAt: base},
		}

		result, err := Resolve(plan, modules, versions, 1, 1)
		require.NoError(t, err)
		require.Len(t, result.Resolutions, 1)
		assert.Equal(t, squatVersionID, result.Resolutions[0].Version.ID)
	})

	t.Run("module inactive for the requested day is skipped", func(t *testing.T) {
		threeDayID := primitive.NewObjectID()
		localVersions := map[primitive.ObjectID]*domain.ProgramVersion{
			threeDayID:     {ID: threeDayID, Definition: domain.ProgramDefinition{SessionsPerWeek: 3}},
			squatVersionID: versions[squatVersionID],
		}
		plan := &domain.Plan{Type: domain.PlanTypeComposite}
		modules := []domain.PlanModule{
			{Target: "squat", ProgramVersionID: squatVersionID, Priority: 1, CreatedAt: base},
			{Target: "accessory", ProgramVersionID: threeDayID, Priority: 2, CreatedAt: base},
		}

		result, err := Resolve(plan, modules, localVersions, 1, 4)
		require.NoError(t, err)
		require.Len(t, result.Resolutions, 1)
		assert.Equal(t, "squat", result.Resolutions[0].Target)
	})

	t.Run("unknown module version fails with target context", func(t *testing.T) {
		plan := &domain.Plan{Type: domain.PlanTypeComposite}
		modules := []domain.PlanModule{
			{Target: "squat", ProgramVersionID: primitive.NewObjectID(), Priority: 1, CreatedAt: base},
		}
		_, err := Resolve(plan, modules, versions, 1, 1)
		var resErr *PlanResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, `"squat"`)
	})
}

func TestMergeParams(t *testing.T) {
	merged := MergeParams(
		map[string]any{"a": 1, "b": 1},
		map[string]any{"b": 2, "c": 2},
		map[string]any{"c": 3},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, merged)

	// Inputs stay untouched.
	first := map[string]any{"a": 1}
	_ = MergeParams(first, map[string]any{"a": 9})
	assert.Equal(t, 1, first["a"])
}
