package engine

import (
	"testing"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveThreeOneVersion() *domain.ProgramVersion {
	return &domain.ProgramVersion{
		Definition: domain.ProgramDefinition{
			Kind:            domain.DefinitionKind531,
			ScheduleLength:  4,
			SessionsPerWeek: 4,
			MainLifts:       []string{"squat", "bench", "deadlift", "press"},
			Weeks: []domain.WeekScheme{
				{Label: "5s week", Sets: []domain.SetScheme{
					{Percent: 0.65, Reps: 5},
					{Percent: 0.75, Reps: 5},
					{Percent: 0.85, Reps: 5, AMRAP: true},
				}},
				{Label: "3s week", Sets: []domain.SetScheme{
					{Percent: 0.70, Reps: 3},
					{Percent: 0.80, Reps: 3},
					{Percent: 0.90, Reps: 3, AMRAP: true},
				}},
			},
		},
	}
}

func TestGenerate531(t *testing.T) {
	version := fiveThreeOneVersion()
	params := map[string]any{
		"tmPercent": 0.9,
		"trainingMaxes": map[string]any{
			"squat":    140.0,
			"bench":    100.0,
			"deadlift": 180.0,
			"press":    60.0,
		},
	}

	t.Run("week 2 day 3 picks the third lift and the 3s scheme", func(t *testing.T) {
		draft, err := Generate(version, params, Context{Week: 2, Day: 3})
		require.NoError(t, err)

		require.Len(t, draft.Sets, 3)
		for _, s := range draft.Sets {
			assert.Equal(t, "deadlift", s.ExerciseName)
		}
		assert.Equal(t, "deadlift (3s week)", draft.Name)

		// 180 * 0.9 tmPercent = 162 effective max.
		require.NotNil(t, draft.Sets[0].WeightKg)
		assert.Equal(t, 113.4, *draft.Sets[0].WeightKg)
		assert.Equal(t, 129.6, *draft.Sets[1].WeightKg)
		assert.Equal(t, 145.8, *draft.Sets[2].WeightKg)

		assert.Equal(t, 3, draft.Sets[2].Reps)
		assert.Equal(t, "true", draft.Sets[2].Meta["amrap"])
		assert.Equal(t, "0.9", draft.Sets[2].Meta["percent"])
	})

	t.Run("week wraps around the cycle", func(t *testing.T) {
		draft, err := Generate(version, params, Context{Week: 3, Day: 1})
		require.NoError(t, err)
		// Week 3 of a two-scheme cycle lands back on the 5s week.
		assert.Equal(t, "squat (5s week)", draft.Name)
		assert.Equal(t, 81.9, *draft.Sets[0].WeightKg)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		a, err := Generate(version, params, Context{Week: 2, Day: 3})
		require.NoError(t, err)
		b, err := Generate(version, params, Context{Week: 2, Day: 3})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("missing training max fails with the lift key", func(t *testing.T) {
		_, err := Generate(version, map[string]any{"trainingMaxes": map[string]any{"squat": 140.0}}, Context{Week: 1, Day: 3})
		var paramErr *MissingParamError
		require.ErrorAs(t, err, &paramErr)
		assert.Equal(t, "trainingMaxes.deadlift", paramErr.Key)
	})

	t.Run("missing week is a context error", func(t *testing.T) {
		_, err := Generate(version, params, Context{Day: 1})
		var ctxErr *MissingContextError
		require.ErrorAs(t, err, &ctxErr)
		assert.Equal(t, "week", ctxErr.Field)
	})
}

func TestGenerateOperator(t *testing.T) {
	version := &domain.ProgramVersion{
		Definition: domain.ProgramDefinition{
			Kind:      domain.DefinitionKindOperator,
			MainLifts: []string{"squat", "bench"},
			Weeks: []domain.WeekScheme{
				{Sets: []domain.SetScheme{{Percent: 0.75, Reps: 5}, {Percent: 0.75, Reps: 5}}},
			},
		},
	}
	params := map[string]any{
		"tmPercent":     0.9,
		"trainingMaxes": map[string]any{"squat": 140.0, "bench": 100.0},
	}

	draft, err := Generate(version, params, Context{Week: 1, Day: 2})
	require.NoError(t, err)

	// Every main lift appears every session.
	require.Len(t, draft.Sets, 4)
	assert.Equal(t, "squat", draft.Sets[0].ExerciseName)
	assert.Equal(t, "bench", draft.Sets[2].ExerciseName)
	assert.Equal(t, 94.5, *draft.Sets[0].WeightKg)
	assert.Equal(t, 67.5, *draft.Sets[2].WeightKg)
}

func TestGenerateCanditoLinear(t *testing.T) {
	version := &domain.ProgramVersion{
		Definition: domain.ProgramDefinition{
			Kind:      domain.DefinitionKindCanditoLinear,
			MainLifts: []string{"squat", "bench"},
			Weeks: []domain.WeekScheme{
				{Label: "volume", Sets: []domain.SetScheme{{Percent: 0.8, Reps: 6}}},
			},
		},
	}
	// tmPercent must be ignored for this kind.
	params := map[string]any{
		"tmPercent":     0.5,
		"trainingMaxes": map[string]any{"squat": 150.0},
	}

	draft, err := Generate(version, params, Context{Week: 1, Day: 1})
	require.NoError(t, err)
	require.Len(t, draft.Sets, 1)
	assert.Equal(t, 120.0, *draft.Sets[0].WeightKg)
}

func TestGenerateManual(t *testing.T) {
	weight := 60.0
	rpe := 8.0
	version := &domain.ProgramVersion{
		Definition: domain.ProgramDefinition{
			Kind: domain.DefinitionKindManual,
			Sessions: []domain.ManualSession{
				{
					Week: 1, Day: 2, Name: "Upper A",
					Exercises: []domain.ManualExercise{
						{Name: "bench", Sets: []domain.ManualSet{
							{Reps: 8, WeightKg: &weight},
							{Reps: 8, WeightKg: &weight, RPE: &rpe},
						}},
						{Name: "row", Sets: []domain.ManualSet{{Reps: 10}}},
					},
				},
			},
		},
	}

	t.Run("copies the listed session verbatim", func(t *testing.T) {
		draft, err := Generate(version, nil, Context{Week: 1, Day: 2})
		require.NoError(t, err)

		assert.Equal(t, "Upper A", draft.Name)
		require.Len(t, draft.Sets, 3)
		assert.Equal(t, "bench", draft.Sets[0].ExerciseName)
		assert.Equal(t, 60.0, *draft.Sets[0].WeightKg)
		assert.Equal(t, 8.0, *draft.Sets[1].RPE)
		assert.Equal(t, "row", draft.Sets[2].ExerciseName)
		assert.Nil(t, draft.Sets[2].WeightKg)
	})

	t.Run("unlisted week/day is a typed error", func(t *testing.T) {
		_, err := Generate(version, nil, Context{Week: 2, Day: 2})
		var notDefined *SessionNotDefinedError
		require.ErrorAs(t, err, &notDefined)
		assert.Equal(t, 2, notDefined.Week)
	})
}

func TestGenerateUnknownKind(t *testing.T) {
	version := &domain.ProgramVersion{Definition: domain.ProgramDefinition{Kind: "smolov"}}
	_, err := Generate(version, nil, Context{Week: 1, Day: 1})
	var kindErr *UnsupportedDefinitionKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "smolov", kindErr.Kind)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 145.8, Round1(145.80000000000001))
	assert.Equal(t, 103.3, Round1(103.33333))
	assert.Equal(t, 116.7, Round1(116.66667))
}
