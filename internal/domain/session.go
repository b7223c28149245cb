package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannedSet is one prescribed set inside a generated session.
type PlannedSet struct {
	ExerciseName string            `bson:"exerciseName" json:"exerciseName"`
	SetNumber    int               `bson:"setNumber" json:"setNumber"`
	Reps         int               `bson:"reps" json:"reps"`
	WeightKg     *float64          `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RPE          *float64          `bson:"rpe,omitempty" json:"rpe,omitempty"`
	IsExtra      bool              `bson:"isExtra,omitempty" json:"isExtra,omitempty"` // Added by an override, not the program
	Meta         map[string]string `bson:"meta,omitempty" json:"meta,omitempty"`
}

// SessionDraft is the canonical in-memory session the generator produces and
// the override engine transforms. Sets are ordered.
type SessionDraft struct {
	SessionKey string       `bson:"sessionKey" json:"sessionKey"`
	Week       int          `bson:"week,omitempty" json:"week,omitempty"`
	Day        int          `bson:"day,omitempty" json:"day,omitempty"`
	Name       string       `bson:"name,omitempty" json:"name,omitempty"`
	Sets       []PlannedSet `bson:"sets" json:"sets"`
}

// GeneratedSession is the persisted materialization of generator output,
// at most one row per (userId, planId, sessionKey). Regenerating the same
// key overwrites the snapshot and bumps UpdatedAt. This is a cache of the
// plan + program version + overrides, not a source of truth.
type GeneratedSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	SessionKey string             `bson:"sessionKey" json:"sessionKey"`
	Snapshot   SessionDraft       `bson:"snapshot" json:"snapshot"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
