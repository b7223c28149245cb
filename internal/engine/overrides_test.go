package engine

import (
	"testing"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func baseDraft() *domain.SessionDraft {
	w := 100.0
	return &domain.SessionDraft{
		SessionKey: "W2D3",
		Week:       2,
		Day:        3,
		Name:       "deadlift (3s week)",
		Sets: []domain.PlannedSet{
			{ExerciseName: "deadlift", SetNumber: 1, Reps: 3, WeightKg: &w, Meta: map[string]string{"percent": "0.7"}},
			{ExerciseName: "deadlift", SetNumber: 2, Reps: 3, WeightKg: &w, Meta: map[string]string{"percent": "0.8"}},
		},
	}
}

func planOverride(op string, value domain.PatchValue) domain.PlanOverride {
	return domain.PlanOverride{
		ID:    primitive.NewObjectID(),
		Scope: domain.ScopePlan,
		Patch: domain.Patch{Op: op, Value: value},
	}
}

func TestApplyOverridesAddAccessory(t *testing.T) {
	overrides := []domain.PlanOverride{
		planOverride(domain.PatchOpAddAccessory, domain.PatchValue{
			ExerciseName: "back extension",
			Order:        2,
			Sets:         []domain.ManualSet{{Reps: 12}, {Reps: 12}},
		}),
		planOverride(domain.PatchOpAddAccessory, domain.PatchValue{
			ExerciseName: "pullup",
			Order:        1,
			Sets:         []domain.ManualSet{{Reps: 8}},
		}),
	}

	out, warnings := ApplyOverrides(baseDraft(), overrides, 2, "W2D3")
	require.Empty(t, warnings)
	require.Len(t, out.Sets, 5)

	// Generator sets first, then accessory blocks sorted by Order.
	assert.Equal(t, "deadlift", out.Sets[0].ExerciseName)
	assert.Equal(t, "pullup", out.Sets[2].ExerciseName)
	assert.Equal(t, "back extension", out.Sets[3].ExerciseName)
	assert.Equal(t, "back extension", out.Sets[4].ExerciseName)
	assert.True(t, out.Sets[2].IsExtra)
	assert.Equal(t, 2, out.Sets[4].SetNumber)
}

func TestApplyOverridesReplaceAndRemove(t *testing.T) {
	t.Run("replace renames every matching set", func(t *testing.T) {
		overrides := []domain.PlanOverride{
			planOverride(domain.PatchOpReplaceExercise, domain.PatchValue{
				ExerciseName: "deadlift",
				Replacement:  "trap bar deadlift",
			}),
		}
		out, warnings := ApplyOverrides(baseDraft(), overrides, 2, "W2D3")
		require.Empty(t, warnings)
		for _, s := range out.Sets {
			assert.Equal(t, "trap bar deadlift", s.ExerciseName)
		}
	})

	t.Run("remove drops matching sets including earlier accessories", func(t *testing.T) {
		overrides := []domain.PlanOverride{
			planOverride(domain.PatchOpAddAccessory, domain.PatchValue{
				ExerciseName: "pullup",
				Sets:         []domain.ManualSet{{Reps: 8}},
			}),
			planOverride(domain.PatchOpRemoveExercise, domain.PatchValue{ExerciseName: "pullup"}),
		}
		out, warnings := ApplyOverrides(baseDraft(), overrides, 2, "W2D3")
		require.Empty(t, warnings)
		require.Len(t, out.Sets, 2)
		assert.Equal(t, "deadlift", out.Sets[0].ExerciseName)
	})
}

func TestApplyOverridesSetParam(t *testing.T) {
	draft := baseDraft()
	overrides := []domain.PlanOverride{
		planOverride(domain.PatchOpSetParam, domain.PatchValue{
			ExerciseName: "deadlift",
			Key:          "tempo",
			Param:        "3-0-1",
		}),
	}

	out, warnings := ApplyOverrides(draft, overrides, 2, "W2D3")
	require.Empty(t, warnings)
	assert.Equal(t, "3-0-1", out.Sets[0].Meta["tempo"])
	assert.Equal(t, "0.7", out.Sets[0].Meta["percent"])

	// The input draft's meta must be untouched.
	assert.NotContains(t, draft.Sets[0].Meta, "tempo")
}

func TestApplyOverridesScopeMatching(t *testing.T) {
	week3 := 3
	otherKey := "W1D1"
	overrides := []domain.PlanOverride{
		{
			ID: primitive.NewObjectID(), Scope: domain.ScopeWeek, WeekNumber: &week3,
			Patch: domain.Patch{Op: domain.PatchOpAddAccessory, Value: domain.PatchValue{ExerciseName: "curl", Sets: []domain.ManualSet{{Reps: 10}}}},
		},
		{
			ID: primitive.NewObjectID(), Scope: domain.ScopeSession, SessionKey: &otherKey,
			Patch: domain.Patch{Op: domain.PatchOpAddAccessory, Value: domain.PatchValue{ExerciseName: "dip", Sets: []domain.ManualSet{{Reps: 10}}}},
		},
	}

	// Neither matches week 2 / W2D3, so the draft passes through unchanged.
	out, warnings := ApplyOverrides(baseDraft(), overrides, 2, "W2D3")
	require.Empty(t, warnings)
	assert.Len(t, out.Sets, 2)

	week3Key := "W3D1"
	out, _ = ApplyOverrides(baseDraft(), overrides, 3, week3Key)
	assert.Len(t, out.Sets, 3)
	assert.Equal(t, "curl", out.Sets[2].ExerciseName)
}

func TestApplyOverridesUnknownOp(t *testing.T) {
	overrides := []domain.PlanOverride{
		planOverride("SWAP_DAYS", domain.PatchValue{}),
		planOverride(domain.PatchOpAddAccessory, domain.PatchValue{
			ExerciseName: "pullup",
			Sets:         []domain.ManualSet{{Reps: 8}},
		}),
	}

	out, warnings := ApplyOverrides(baseDraft(), overrides, 2, "W2D3")

	// Unknown ops warn and are skipped; the rest still apply.
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"SWAP_DAYS"`)
	assert.Len(t, out.Sets, 3)
}
