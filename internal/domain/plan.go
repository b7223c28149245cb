package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType distinguishes how a plan delegates to program versions.
type PlanType string

const (
	PlanTypeSingle    PlanType = "SINGLE"    // One root program version
	PlanTypeComposite PlanType = "COMPOSITE" // Per-lift modules, each with its own version
	PlanTypeManual    PlanType = "MANUAL"    // Root version with a manual definition
)

// KeyMode selects how session keys are derived for a plan.
type KeyMode string

const (
	KeyModeLegacy KeyMode = "LEGACY" // W{week}D{day}
	KeyModeDate   KeyMode = "DATE"   // YYYY-MM-DD
)

// Plan is a user's concrete adoption of one or more program versions.
type Plan struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID  `bson:"userId" json:"userId"`
	Name                 string              `bson:"name" json:"name"`
	Type                 PlanType            `bson:"type" json:"type"`
	RootProgramVersionID *primitive.ObjectID `bson:"rootProgramVersionId,omitempty" json:"rootProgramVersionId,omitempty"` // SINGLE/MANUAL only
	Params               map[string]any      `bson:"params,omitempty" json:"params,omitempty"`
	KeyMode              KeyMode             `bson:"keyMode" json:"keyMode"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PlanModule delegates one lift or category of a COMPOSITE plan to a specific
// program version. Modules are exclusively owned by their plan and deleted
// with it. A COMPOSITE plan must have at least one module.
type PlanModule struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID           primitive.ObjectID `bson:"planId" json:"planId"`
	Target           string             `bson:"target" json:"target"` // Lift/category key, e.g. "squat"
	ProgramVersionID primitive.ObjectID `bson:"programVersionId" json:"programVersionId"`
	Priority         int                `bson:"priority" json:"priority"`
	Params           map[string]any     `bson:"params,omitempty" json:"params,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// OverrideScope says which generated sessions an override applies to.
type OverrideScope string

const (
	ScopePlan    OverrideScope = "PLAN"
	ScopeWeek    OverrideScope = "WEEK"
	ScopeSession OverrideScope = "SESSION"
)

// PlanOverride is an append-only, scoped patch layered onto generated session
// content without mutating the underlying program version. WeekNumber and
// SessionKey must be nil unless the scope requires them. The effective
// override set for a session is every matching override applied in creation
// order.
type PlanOverride struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	Scope      OverrideScope      `bson:"scope" json:"scope"`
	WeekNumber *int               `bson:"weekNumber,omitempty" json:"weekNumber,omitempty"` // WEEK scope only
	SessionKey *string            `bson:"sessionKey,omitempty" json:"sessionKey,omitempty"` // SESSION scope only
	Patch      Patch              `bson:"patch" json:"patch"`
	Note       string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Patch operations understood by the override engine. Overrides are user
// data: an op outside this set is skipped with a warning, never a failure.
const (
	PatchOpAddAccessory    = "ADD_ACCESSORY"
	PatchOpReplaceExercise = "REPLACE_EXERCISE"
	PatchOpRemoveExercise  = "REMOVE_EXERCISE"
	PatchOpSetParam        = "SET_PARAM"
)

// Patch is a tagged operation applied to a generated session draft.
type Patch struct {
	Op    string     `bson:"op" json:"op"`
	Value PatchValue `bson:"value" json:"value"`
}

// PatchValue carries the per-op payload. Which fields are meaningful depends
// on Op: ADD_ACCESSORY uses ExerciseName/Sets/Order, REPLACE_EXERCISE uses
// ExerciseName/Replacement, REMOVE_EXERCISE uses ExerciseName, SET_PARAM uses
// ExerciseName (optional)/Key/Param.
type PatchValue struct {
	ExerciseName string      `bson:"exerciseName,omitempty" json:"exerciseName,omitempty"`
	Sets         []ManualSet `bson:"sets,omitempty" json:"sets,omitempty"`
	Order        int         `bson:"order,omitempty" json:"order,omitempty"`
	Replacement  string      `bson:"replacement,omitempty" json:"replacement,omitempty"`
	Key          string      `bson:"key,omitempty" json:"key,omitempty"`
	Param        string      `bson:"param,omitempty" json:"param,omitempty"`
}
