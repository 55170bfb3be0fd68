package services

import (
	"context"
	"errors"
	"time"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

// Repository errors. Callers branch on these with errors.Is.
var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrMessageNotFound = errors.New("message not found")
)

// SessionRepository is the durable chat session store. Every mutation is
// a single atomic per-session operation: callers never read-modify-write,
// so concurrent requests against the same session cannot lose messages
// and context merges are field-level.
type SessionRepository interface {
	// Insert persists a new session.
	Insert(ctx context.Context, session *models.ChatSession) error

	// Get returns the session, or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*models.ChatSession, error)

	// AppendTurn appends messages to the log and shallow-merges the
	// context patch in one atomic update. A non-empty legalTopic also
	// sets context.legalTopic.
	AppendTurn(ctx context.Context, sessionID string, messages []models.Message, patch *models.ContextPatch, legalTopic string, now time.Time) error

	// AppendFeedback appends feedback to the message addressed by its
	// stable id. Returns ErrMessageNotFound if no such message exists.
	AppendFeedback(ctx context.Context, sessionID, messageID string, fb models.MessageFeedback, now time.Time) error

	// Update shallow-merges the context patch and optionally renames the
	// session or changes its status (empty status leaves it untouched).
	Update(ctx context.Context, sessionID, name string, patch *models.ContextPatch, status string, now time.Time) error

	// Delete hard-deletes the session. Terminal and irreversible.
	Delete(ctx context.Context, sessionID string) error

	// List returns the caller's sessions sorted by lastAccessed
	// descending, optionally filtered by status, with the total count.
	List(ctx context.Context, userID, status string, page, limit int) ([]models.ChatSession, int64, error)

	// Touch updates lastAccessed, used on read paths.
	Touch(ctx context.Context, sessionID string, now time.Time) error
}

// contextSetFields flattens a context patch into dotted field paths so the
// merge is an atomic field-level $set, never a whole-document replace.
func contextSetFields(patch *models.ContextPatch) map[string]interface{} {
	fields := make(map[string]interface{})
	if patch == nil {
		return fields
	}
	if patch.LegalTopic != nil {
		fields["context.legalTopic"] = *patch.LegalTopic
	}
	if patch.UserLocation != nil {
		fields["context.userLocation"] = *patch.UserLocation
	}
	if patch.Resolved != nil {
		fields["context.resolved"] = *patch.Resolved
	}
	if patch.RequestDetail != nil {
		fields["context.requestDetail"] = *patch.RequestDetail
	}
	return fields
}
