package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the slice of the account document this service touches: the
// usage counters bumped after each successful query. Account lifecycle is
// owned by the identity service.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Usage UserUsage          `bson:"usage" json:"usage"`
}

// UserUsage tracks query volume per user
type UserUsage struct {
	TotalQueries   int64     `bson:"totalQueries" json:"totalQueries"`
	MonthlyQueries int64     `bson:"monthlyQueries" json:"monthlyQueries"`
	LastActive     time.Time `bson:"lastActive" json:"lastActive"`
}
