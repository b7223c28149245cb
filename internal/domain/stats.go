package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsCacheEntry is a pure derived cache row for an expensive aggregate
// query, unique on (userId, metric, paramsHash). Safe to delete and
// repopulate at any time; invalidated wholesale per user on any write
// touching that user's logs. Payload holds the computed result as JSON.
type StatsCacheEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Metric     string             `bson:"metric" json:"metric"`
	ParamsHash string             `bson:"paramsHash" json:"paramsHash"`
	Payload    []byte             `bson:"payload" json:"payload"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
