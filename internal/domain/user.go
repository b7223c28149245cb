package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account in the system. DefaultKeyMode is the session-key mode
// applied to new plans that do not choose one explicitly.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash   string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	DefaultKeyMode KeyMode            `bson:"defaultKeyMode,omitempty" json:"defaultKeyMode,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
