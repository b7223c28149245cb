package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"liftlog/workout-app/internal/domain"
)

// Context is the request-scoped input to one generation: which occurrence of
// the program to materialize.
type Context struct {
	Week        int
	Day         int
	SessionDate *time.Time
	Timezone    string
}

// Generate is a pure, deterministic transform of (program version, effective
// params, context) into an ordered session draft. It dispatches on the
// definition kind; each arm is independently testable with fixed fixtures.
// The draft's SessionKey is left empty for the caller to stamp.
func Generate(version *domain.ProgramVersion, params map[string]any, gctx Context) (*domain.SessionDraft, error) {
	def := version.Definition
	switch def.Kind {
	case domain.DefinitionKind531:
		// One main lift per day, loads off trainingMax × tmPercent.
		return generatePercent(def, params, gctx, true, true)
	case domain.DefinitionKindOperator:
		// Every main lift every session, loads off trainingMax × tmPercent.
		return generatePercent(def, params, gctx, false, true)
	case domain.DefinitionKindCanditoLinear:
		// One main lift per day, loads straight off the training max.
		return generatePercent(def, params, gctx, true, false)
	case domain.DefinitionKindManual:
		return generateManual(def, gctx)
	default:
		return nil, &UnsupportedDefinitionKindError{Kind: def.Kind}
	}
}

// Round1 rounds a weight to one decimal place, the precision every computed
// load in a generated session carries.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func generatePercent(def domain.ProgramDefinition, params map[string]any, gctx Context, singleLift, useTMPercent bool) (*domain.SessionDraft, error) {
	if gctx.Week < 1 {
		return nil, &MissingContextError{Field: "week"}
	}
	if gctx.Day < 1 {
		return nil, &MissingContextError{Field: "day"}
	}
	if len(def.Weeks) == 0 {
		return nil, fmt.Errorf("definition kind %q has no week schemes", def.Kind)
	}
	if len(def.MainLifts) == 0 {
		return nil, fmt.Errorf("definition kind %q has no main lifts", def.Kind)
	}

	scheme := def.Weeks[(gctx.Week-1)%len(def.Weeks)]

	tmPercent := 1.0
	if useTMPercent {
		if v, ok := floatParam(params, "tmPercent"); ok {
			tmPercent = v
		}
	}

	lifts := def.MainLifts
	if singleLift {
		lifts = []string{def.MainLifts[(gctx.Day-1)%len(def.MainLifts)]}
	}

	draft := &domain.SessionDraft{
		Week: gctx.Week,
		Day:  gctx.Day,
		Name: sessionName(scheme, lifts),
	}
	for _, lift := range lifts {
		tm, ok := trainingMaxFor(params, lift)
		if !ok {
			return nil, &MissingParamError{Key: "trainingMaxes." + lift}
		}
		for i, s := range scheme.Sets {
			meta := map[string]string{
				"percent": strconv.FormatFloat(s.Percent, 'f', -1, 64),
			}
			if s.AMRAP {
				meta["amrap"] = "true"
			}
			weight := Round1(tm * tmPercent * s.Percent)
			draft.Sets = append(draft.Sets, domain.PlannedSet{
				ExerciseName: lift,
				SetNumber:    i + 1,
				Reps:         s.Reps,
				WeightKg:     &weight,
				Meta:         meta,
			})
		}
	}
	return draft, nil
}

func sessionName(scheme domain.WeekScheme, lifts []string) string {
	if len(lifts) == 1 {
		if scheme.Label != "" {
			return lifts[0] + " (" + scheme.Label + ")"
		}
		return lifts[0]
	}
	return scheme.Label
}

func generateManual(def domain.ProgramDefinition, gctx Context) (*domain.SessionDraft, error) {
	if gctx.Week < 1 {
		return nil, &MissingContextError{Field: "week"}
	}
	if gctx.Day < 1 {
		return nil, &MissingContextError{Field: "day"}
	}
	for _, session := range def.Sessions {
		if session.Week != gctx.Week || session.Day != gctx.Day {
			continue
		}
		draft := &domain.SessionDraft{
			Week: gctx.Week,
			Day:  gctx.Day,
			Name: session.Name,
		}
		for _, exercise := range session.Exercises {
			for i, s := range exercise.Sets {
				draft.Sets = append(draft.Sets, domain.PlannedSet{
					ExerciseName: exercise.Name,
					SetNumber:    i + 1,
					Reps:         s.Reps,
					WeightKg:     s.WeightKg,
					RPE:          s.RPE,
				})
			}
		}
		return draft, nil
	}
	return nil, &SessionNotDefinedError{Week: gctx.Week, Day: gctx.Day}
}
