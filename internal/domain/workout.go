package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog is a performed session. GeneratedSessionID optionally links the
// log back to the planned session it fulfilled; that link is the join key the
// compliance stats rely on.
type WorkoutLog struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"userId" json:"userId"`
	PlanID             *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"`
	GeneratedSessionID *primitive.ObjectID `bson:"generatedSessionId,omitempty" json:"generatedSessionId,omitempty"`
	PerformedAt        time.Time           `bson:"performedAt" json:"performedAt"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
}

// WorkoutSet is one performed set, exclusively owned by its WorkoutLog and
// ordered by (sortOrder, setNumber, id). UserID and PerformedAt are
// denormalized from the log so stats range queries stay single-collection.
type WorkoutSet struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LogID        primitive.ObjectID `bson:"logId" json:"logId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	SortOrder    int                `bson:"sortOrder" json:"sortOrder"`
	SetNumber    int                `bson:"setNumber" json:"setNumber"`
	Reps         int                `bson:"reps" json:"reps"`
	WeightKg     *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RPE          *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	PerformedAt  time.Time          `bson:"performedAt" json:"performedAt"`
}
