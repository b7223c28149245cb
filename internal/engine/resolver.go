package engine

import (
	"fmt"
	"sort"

	"liftlog/workout-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolution is one resolved (program version, effective params) pair for a
// target lift or category.
type Resolution struct {
	Target          string
	Version         *domain.ProgramVersion
	EffectiveParams map[string]any
}

// ResolveResult carries the resolutions for a requested (week, day) plus any
// non-fatal warnings recorded along the way.
type ResolveResult struct {
	Resolutions []Resolution
	Warnings    []string
}

// Resolve determines which program version(s) govern the requested week/day
// of a plan and merges the parameter layers for each.
//
// SINGLE/MANUAL plans resolve to the root program version with
// merge(version.Defaults, plan.Params). COMPOSITE plans resolve one entry per
// module whose target is active for the day, with
// merge(version.Defaults, module.Params, plan.Params); later layers win.
// Versions must be supplied by the caller so the function stays pure.
func Resolve(plan *domain.Plan, modules []domain.PlanModule, versions map[primitive.ObjectID]*domain.ProgramVersion, week, day int) (*ResolveResult, error) {
	if plan.Type != domain.PlanTypeComposite {
		if plan.RootProgramVersionID == nil {
			return nil, &PlanResolutionError{Reason: "plan has no root program version"}
		}
		version, ok := versions[*plan.RootProgramVersionID]
		if !ok {
			return nil, &PlanResolutionError{Reason: fmt.Sprintf("program version %s not found", plan.RootProgramVersionID.Hex())}
		}
		return &ResolveResult{
			Resolutions: []Resolution{{
				Target:          "main",
				Version:         version,
				EffectiveParams: MergeParams(version.Defaults, plan.Params),
			}},
		}, nil
	}

	if len(modules) == 0 {
		return nil, &PlanResolutionError{Reason: "composite plan has no modules"}
	}

	result := &ResolveResult{}
	claimed := make(map[string]bool)
	for _, module := range sortModules(modules) {
		version, ok := versions[module.ProgramVersionID]
		if !ok {
			return nil, &PlanResolutionError{Reason: fmt.Sprintf("program version %s for module target %q not found", module.ProgramVersionID.Hex(), module.Target)}
		}
		if claimed[module.Target] {
			// Two modules claim the same target: lowest priority wins, the
			// loser is recorded rather than treated as fatal.
			result.Warnings = append(result.Warnings, fmt.Sprintf("duplicate module target %q ignored (priority %d)", module.Target, module.Priority))
			continue
		}
		if !moduleActive(version.Definition, day) {
			continue
		}
		claimed[module.Target] = true
		result.Resolutions = append(result.Resolutions, Resolution{
			Target:          module.Target,
			Version:         version,
			EffectiveParams: MergeParams(version.Defaults, module.Params, plan.Params),
		})
	}
	return result, nil
}

// sortModules orders modules by ascending priority, then by creation order.
// The tie-break is deliberate policy, not incidental store ordering: the
// first module in this order wins a contested target.
func sortModules(modules []domain.PlanModule) []domain.PlanModule {
	sorted := make([]domain.PlanModule, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.Hex() < sorted[j].ID.Hex()
	})
	return sorted
}

// moduleActive reports whether a module's definition schedules anything for
// the requested day. A definition without a sessions-per-week bound is
// considered active every day.
func moduleActive(def domain.ProgramDefinition, day int) bool {
	if day < 1 || def.SessionsPerWeek <= 0 {
		return true
	}
	return day <= def.SessionsPerWeek
}
