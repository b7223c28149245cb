package engine

import (
	"fmt"
	"sort"

	"liftlog/workout-app/internal/domain"
)

// ApplyOverrides layers the stored overrides matching (week, sessionKey) onto
// a generated draft, in creation order, and returns the materialized draft
// plus any warnings. The input draft is not mutated.
//
// Output ordering: the generator's sets come first, then override-inserted
// accessory blocks sorted by their Order field; ties keep insertion order.
// Unknown patch ops are skipped with a warning because overrides are user
// data and must never break generation.
func ApplyOverrides(draft *domain.SessionDraft, overrides []domain.PlanOverride, week int, sessionKey string) (*domain.SessionDraft, []string) {
	out := &domain.SessionDraft{
		SessionKey: draft.SessionKey,
		Week:       draft.Week,
		Day:        draft.Day,
		Name:       draft.Name,
		Sets:       append([]domain.PlannedSet(nil), draft.Sets...),
	}

	type accessoryBlock struct {
		order int
		name  string
		sets  []domain.ManualSet
	}

	var warnings []string
	var blocks []accessoryBlock
	for _, ov := range overrides {
		if !overrideMatches(ov, week, sessionKey) {
			continue
		}
		value := ov.Patch.Value
		switch ov.Patch.Op {
		case domain.PatchOpAddAccessory:
			blocks = append(blocks, accessoryBlock{
				order: value.Order,
				name:  value.ExerciseName,
				sets:  value.Sets,
			})
		case domain.PatchOpReplaceExercise:
			for i := range out.Sets {
				if out.Sets[i].ExerciseName == value.ExerciseName {
					out.Sets[i].ExerciseName = value.Replacement
				}
			}
			for i := range blocks {
				if blocks[i].name == value.ExerciseName {
					blocks[i].name = value.Replacement
				}
			}
		case domain.PatchOpRemoveExercise:
			kept := out.Sets[:0]
			for _, s := range out.Sets {
				if s.ExerciseName != value.ExerciseName {
					kept = append(kept, s)
				}
			}
			out.Sets = kept
			keptBlocks := blocks[:0]
			for _, b := range blocks {
				if b.name != value.ExerciseName {
					keptBlocks = append(keptBlocks, b)
				}
			}
			blocks = keptBlocks
		case domain.PatchOpSetParam:
			for i := range out.Sets {
				if value.ExerciseName != "" && out.Sets[i].ExerciseName != value.ExerciseName {
					continue
				}
				meta := make(map[string]string, len(out.Sets[i].Meta)+1)
				for k, v := range out.Sets[i].Meta {
					meta[k] = v
				}
				meta[value.Key] = value.Param
				out.Sets[i].Meta = meta
			}
		default:
			warnings = append(warnings, fmt.Sprintf("skipping unknown override op %q (override %s)", ov.Patch.Op, ov.ID.Hex()))
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].order < blocks[j].order })
	for _, b := range blocks {
		for i, s := range b.sets {
			out.Sets = append(out.Sets, domain.PlannedSet{
				ExerciseName: b.name,
				SetNumber:    i + 1,
				Reps:         s.Reps,
				WeightKg:     s.WeightKg,
				RPE:          s.RPE,
				IsExtra:      true,
			})
		}
	}
	return out, warnings
}

func overrideMatches(ov domain.PlanOverride, week int, sessionKey string) bool {
	switch ov.Scope {
	case domain.ScopePlan:
		return true
	case domain.ScopeWeek:
		return ov.WeekNumber != nil && *ov.WeekNumber == week
	case domain.ScopeSession:
		return ov.SessionKey != nil && *ov.SessionKey == sessionKey
	}
	return false
}
