package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/database"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

// MongoSessionRepository is the production SessionRepository backed by the
// chat_sessions collection.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a Mongo-backed session repository.
func NewMongoSessionRepository(db *database.MongoDB) *MongoSessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection(database.CollectionChatSessions),
	}
}

func (r *MongoSessionRepository) Insert(ctx context.Context, session *models.ChatSession) error {
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *MongoSessionRepository) AppendTurn(ctx context.Context, sessionID string, messages []models.Message, patch *models.ContextPatch, legalTopic string, now time.Time) error {
	set := contextSetFields(patch)
	if legalTopic != "" {
		set["context.legalTopic"] = legalTopic
	}
	set["lastAccessed"] = now
	set["updatedAt"] = now

	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": messages}},
		"$set":  set,
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"sessionId": sessionID}, update)
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) AppendFeedback(ctx context.Context, sessionID, messageID string, fb models.MessageFeedback, now time.Time) error {
	// Addressing by messageId under one atomic update means a concurrent
	// append cannot shift the target between the caller's bounds check
	// and this write.
	update := bson.M{
		"$push": bson.M{"messages.$[msg].feedback": fb},
		"$set":  bson.M{"lastAccessed": now, "updatedAt": now},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"msg.messageId": messageID}},
	})

	result, err := r.collection.UpdateOne(ctx, bson.M{"sessionId": sessionID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	if result.MatchedCount == 0 || result.ModifiedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *MongoSessionRepository) Update(ctx context.Context, sessionID, name string, patch *models.ContextPatch, status string, now time.Time) error {
	set := contextSetFields(patch)
	if name != "" {
		set["name"] = name
	}
	if status != "" {
		set["status"] = status
	}
	set["lastAccessed"] = now
	set["updatedAt"] = now

	result, err := r.collection.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) List(ctx context.Context, userID, status string, page, limit int) ([]models.ChatSession, int64, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "lastAccessed", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.ChatSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, total, nil
}

func (r *MongoSessionRepository) Touch(ctx context.Context, sessionID string, now time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"lastAccessed": now}})
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}
