package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramType distinguishes programs whose sessions are computed from logic
// from programs that are a literal list of sessions.
type ProgramType string

const (
	ProgramTypeLogic  ProgramType = "LOGIC"
	ProgramTypeManual ProgramType = "MANUAL"
)

// Visibility controls whether a template shows up for other users.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Definition kinds the generator knows how to dispatch on.
const (
	DefinitionKind531           = "531"
	DefinitionKindOperator      = "operator"
	DefinitionKindCanditoLinear = "candito-linear"
	DefinitionKindManual        = "manual"
)

// ProgramTemplate is a named, versioned family of training logic (e.g. 5/3/1).
// Identity is immutable; the slug is the stable external key. Templates are
// created by seeding or forking and never deleted in normal operation.
type ProgramTemplate struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Slug             string              `bson:"slug" json:"slug"` // Unique
	Name             string              `bson:"name" json:"name"`
	Type             ProgramType         `bson:"type" json:"type"`
	Visibility       Visibility          `bson:"visibility" json:"visibility"`
	OwnerUserID      *primitive.ObjectID `bson:"ownerUserId,omitempty" json:"ownerUserId,omitempty"`
	ParentTemplateID *primitive.ObjectID `bson:"parentTemplateId,omitempty" json:"parentTemplateId,omitempty"` // Fork lineage
	Tags             []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
}

// ProgramVersion is one immutable, numbered definition snapshot of a template.
// Edits append a new version rather than mutating an existing one; Version is
// strictly increasing per template.
type ProgramVersion struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TemplateID      primitive.ObjectID  `bson:"templateId" json:"templateId"`
	Version         int                 `bson:"version" json:"version"`
	ParentVersionID *primitive.ObjectID `bson:"parentVersionId,omitempty" json:"parentVersionId,omitempty"`
	Definition      ProgramDefinition   `bson:"definition" json:"definition"`
	Defaults        map[string]any      `bson:"defaults,omitempty" json:"defaults,omitempty"`
	Changelog       string              `bson:"changelog,omitempty" json:"changelog,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}

// ProgramDefinition is the declarative schedule/lift spec the generator runs.
// Kind discriminates which fields are meaningful: percentage-based kinds use
// MainLifts and Weeks, the manual kind uses Sessions.
type ProgramDefinition struct {
	Kind            string          `bson:"kind" json:"kind"`
	ScheduleLength  int             `bson:"scheduleLength,omitempty" json:"scheduleLength,omitempty"` // Weeks per cycle
	SessionsPerWeek int             `bson:"sessionsPerWeek,omitempty" json:"sessionsPerWeek,omitempty"`
	MainLifts       []string        `bson:"mainLifts,omitempty" json:"mainLifts,omitempty"`
	Weeks           []WeekScheme    `bson:"weeks,omitempty" json:"weeks,omitempty"`
	Sessions        []ManualSession `bson:"sessions,omitempty" json:"sessions,omitempty"`
}

// WeekScheme is one week's loading prescription within a cycle.
type WeekScheme struct {
	Label string      `bson:"label,omitempty" json:"label,omitempty"` // e.g. "5s week", "deload"
	Sets  []SetScheme `bson:"sets" json:"sets"`
}

// SetScheme is a single prescribed set: a fraction of the training max and a
// rep target. AMRAP marks "as many reps as possible" top sets.
type SetScheme struct {
	Percent float64 `bson:"percent" json:"percent"` // Fraction, e.g. 0.85
	Reps    int     `bson:"reps" json:"reps"`
	AMRAP   bool    `bson:"amrap,omitempty" json:"amrap,omitempty"`
}

// ManualSession is a literal session in a MANUAL definition, addressed by
// (week, day).
type ManualSession struct {
	Week      int              `bson:"week" json:"week"`
	Day       int              `bson:"day" json:"day"`
	Name      string           `bson:"name,omitempty" json:"name,omitempty"`
	Exercises []ManualExercise `bson:"exercises" json:"exercises"`
}

// ManualExercise is one exercise block inside a manual session.
type ManualExercise struct {
	Name string      `bson:"name" json:"name"`
	Sets []ManualSet `bson:"sets" json:"sets"`
}

// ManualSet is a literal set with no computed loading.
type ManualSet struct {
	Reps     int      `bson:"reps" json:"reps"`
	WeightKg *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RPE      *float64 `bson:"rpe,omitempty" json:"rpe,omitempty"`
}
