package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/database"
)

// UsageService bumps per-user query counters. Writes are fire-and-forget:
// the request path never waits on them and failures are only logged.
type UsageService struct {
	db *database.MongoDB
}

// NewUsageService creates the usage tracker. A nil db disables tracking.
func NewUsageService(db *database.MongoDB) *UsageService {
	return &UsageService{db: db}
}

// RecordQuery increments the user's total and monthly query counters and
// refreshes lastActive, off the request path.
func (s *UsageService) RecordQuery(userID string) {
	if s == nil || s.db == nil || userID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		filter := bson.M{"_id": userID}
		if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
			filter = bson.M{"_id": oid}
		}

		update := bson.M{
			"$inc": bson.M{
				"usage.totalQueries":   1,
				"usage.monthlyQueries": 1,
			},
			"$set": bson.M{"usage.lastActive": time.Now().UTC()},
		}

		collection := s.db.Collection(database.CollectionUsers)
		if _, err := collection.UpdateOne(ctx, filter, update); err != nil {
			slog.Warn("Failed to record query usage", "userID", userID, "error", err)
		}
	}()
}
