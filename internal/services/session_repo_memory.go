package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

// MemorySessionRepository is an in-process SessionRepository. It backs the
// server when no MongoDB URI is configured and the service tests. Sessions
// do not survive a restart.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*models.ChatSession),
	}
}

func (r *MemorySessionRepository) Insert(ctx context.Context, session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	copied.Messages = append([]models.Message(nil), session.Messages...)
	r.sessions[session.SessionID] = &copied
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

func (r *MemorySessionRepository) AppendTurn(ctx context.Context, sessionID string, messages []models.Message, patch *models.ContextPatch, legalTopic string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Messages = append(session.Messages, messages...)
	applyContextPatch(&session.Context, patch)
	if legalTopic != "" {
		session.Context.LegalTopic = legalTopic
	}
	session.LastAccessed = now
	session.UpdatedAt = now
	return nil
}

func (r *MemorySessionRepository) AppendFeedback(ctx context.Context, sessionID, messageID string, fb models.MessageFeedback, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrMessageNotFound
	}
	for i := range session.Messages {
		if session.Messages[i].MessageID == messageID {
			session.Messages[i].Feedback = append(session.Messages[i].Feedback, fb)
			session.LastAccessed = now
			session.UpdatedAt = now
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *MemorySessionRepository) Update(ctx context.Context, sessionID, name string, patch *models.ContextPatch, status string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if name != "" {
		session.Name = name
	}
	if status != "" {
		session.Status = status
	}
	applyContextPatch(&session.Context, patch)
	session.LastAccessed = now
	session.UpdatedAt = now
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemorySessionRepository) List(ctx context.Context, userID, status string, page, limit int) ([]models.ChatSession, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.ChatSession
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		if status != "" && session.Status != status {
			continue
		}
		matched = append(matched, session)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastAccessed.After(matched[j].LastAccessed)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]models.ChatSession, 0, end-start)
	for _, session := range matched[start:end] {
		results = append(results, *copySession(session))
	}
	return results, total, nil
}

func (r *MemorySessionRepository) Touch(ctx context.Context, sessionID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[sessionID]; ok {
		session.LastAccessed = now
	}
	return nil
}

func copySession(session *models.ChatSession) *models.ChatSession {
	copied := *session
	copied.Messages = append([]models.Message(nil), session.Messages...)
	return &copied
}

func applyContextPatch(dst *models.SessionContext, patch *models.ContextPatch) {
	if patch == nil {
		return
	}
	if patch.LegalTopic != nil {
		dst.LegalTopic = *patch.LegalTopic
	}
	if patch.UserLocation != nil {
		dst.UserLocation = *patch.UserLocation
	}
	if patch.Resolved != nil {
		dst.Resolved = *patch.Resolved
	}
	if patch.RequestDetail != nil {
		dst.RequestDetail = *patch.RequestDetail
	}
}
