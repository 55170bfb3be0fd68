package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/knowledge"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/logging"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

// Service errors surfaced to the HTTP layer.
var (
	ErrForbidden           = errors.New("session belongs to another user")
	ErrInvalidMessageIndex = errors.New("message index out of range")
)

// Synthesizer produces spoken audio for assistant replies. Satisfied by
// the NLP service; failures are swallowed so a dead TTS upstream never
// blocks a text answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, req models.SynthesizeRequest) (*models.SynthesisResult, error)
	SupportsLanguage(language string) bool
}

// UsageRecorder tracks per-user query counters off the request path.
type UsageRecorder interface {
	RecordQuery(userID string)
}

// ChatService orchestrates chat sessions: creation, query turns through
// the knowledge registry, history, feedback, updates, deletion and
// listing. The repository is the source of truth; the session cache is a
// disposable mirror.
type ChatService struct {
	repo        SessionRepository
	cache       *SessionCache
	registry    *knowledge.Registry
	synthesizer Synthesizer
	usage       UsageRecorder
}

// NewChatService wires the chat orchestrator. synthesizer and usage may
// be nil, which disables voice replies and usage tracking respectively.
func NewChatService(repo SessionRepository, cache *SessionCache, registry *knowledge.Registry, synthesizer Synthesizer, usage UsageRecorder) *ChatService {
	return &ChatService{
		repo:        repo,
		cache:       cache,
		registry:    registry,
		synthesizer: synthesizer,
		usage:       usage,
	}
}

// CreateSession creates a new chat session owned by userID. An empty
// userID creates an anonymous session accessible to anyone who holds the
// session id.
func (s *ChatService) CreateSession(ctx context.Context, userID string, req *models.CreateSessionRequest) (*models.ChatSession, error) {
	now := time.Now().UTC()

	name := ""
	var patch *models.ContextPatch
	if req != nil {
		name = req.Name
		patch = req.Context
	}
	if name == "" {
		name = fmt.Sprintf("Chat %d/%d/%d %d:%02d",
			int(now.Month()), now.Day(), now.Year(), now.Hour(), now.Minute())
	}

	session := &models.ChatSession{
		SessionID:    "chat_" + uuid.New().String(),
		UserID:       userID,
		Name:         name,
		Messages:     []models.Message{},
		Status:       models.SessionStatusActive,
		LastAccessed: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyContextPatch(&session.Context, patch)

	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, err
	}
	s.mirrorToCache(ctx, session)
	return session, nil
}

// AppendQuery records a user query, generates the assistant reply from
// the knowledge registry and persists both turns atomically. Non-English
// replies in a synthesizable language get an inline audio attachment.
func (s *ChatService) AppendQuery(ctx context.Context, userID string, req *models.QueryRequest) (*models.QueryResponse, error) {
	session, err := s.repo.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(session, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	applyContextPatch(&session.Context, req.Context)

	userMsg := models.Message{
		MessageID: uuid.New().String(),
		Role:      models.RoleUser,
		Content:   req.Content,
		Language:  req.Language,
		Timestamp: now,
	}
	if req.IsVoiceInput {
		userMsg.AudioURL = req.AudioURL
	}

	answer := s.registry.GenerateResponse(req.Content, req.Language, knowledge.ResponseContext{
		RequestDetail: session.Context.RequestDetail,
	})

	assistantMsg := models.Message{
		MessageID: uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   answer.Content,
		Language:  answer.Language,
		Timestamp: now,
		Metadata: &models.MessageMetadata{
			LegalTopic:    answer.LegalTopic,
			Confidence:    answer.Confidence,
			RelatedTopics: answer.RelatedTopics,
		},
	}
	if assistantMsg.Language != "en" {
		assistantMsg.AudioURL = s.synthesizeReply(ctx,
			logging.WithSession(req.SessionID, userID), answer.Content, assistantMsg.Language)
	}

	err = s.repo.AppendTurn(ctx, req.SessionID,
		[]models.Message{userMsg, assistantMsg}, req.Context, answer.LegalTopic, now)
	if err != nil {
		return nil, err
	}

	session.Messages = append(session.Messages, userMsg, assistantMsg)
	session.Context.LegalTopic = answer.LegalTopic
	session.LastAccessed = now
	session.UpdatedAt = now
	s.mirrorToCache(ctx, session)

	queriesTotal.WithLabelValues(answer.LegalTopic, answer.Language).Inc()
	if s.usage != nil && userID != "" {
		s.usage.RecordQuery(userID)
	}

	return &models.QueryResponse{
		Success: true,
		Message: assistantMsg,
		SessionContext: models.ContextSnapshot{
			LegalTopic: session.Context.LegalTopic,
			Resolved:   session.Context.Resolved,
		},
	}, nil
}

// GetHistory returns a window over the session's message log.
func (s *ChatService) GetHistory(ctx context.Context, userID, sessionID string, limit, offset int) (*models.HistoryResponse, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(session, userID); err != nil {
		return nil, err
	}

	total := len(session.Messages)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	if err := s.repo.Touch(ctx, sessionID, time.Now().UTC()); err != nil {
		logging.WithSession(sessionID, userID).Warn("Failed to touch session", "error", err)
	}

	return &models.HistoryResponse{
		Success:   true,
		SessionID: sessionID,
		Messages:  session.Messages[start:end],
		Pagination: models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
		},
		Context: session.Context,
	}, nil
}

// AppendFeedback records a rating against the message at the given
// index. The index is resolved to the message's stable id before the
// write, so a concurrent append cannot redirect the feedback. Any holder
// of the session id may rate a message.
func (s *ChatService) AppendFeedback(ctx context.Context, userID string, req *models.FeedbackRequest) error {
	session, err := s.repo.Get(ctx, req.SessionID)
	if err != nil {
		return err
	}
	if req.MessageIndex < 0 || req.MessageIndex >= len(session.Messages) {
		return ErrInvalidMessageIndex
	}
	messageID := session.Messages[req.MessageIndex].MessageID

	helpful := false
	if req.Helpful != nil {
		helpful = *req.Helpful
	}
	fb := models.MessageFeedback{
		UserID:    userID,
		Rating:    req.Rating,
		Feedback:  req.Feedback,
		Helpful:   helpful,
		Timestamp: time.Now().UTC(),
	}
	return s.repo.AppendFeedback(ctx, req.SessionID, messageID, fb, time.Now().UTC())
}

// UpdateSession renames the session, merges context fields and flips the
// active status.
func (s *ChatService) UpdateSession(ctx context.Context, userID, sessionID string, req *models.UpdateSessionRequest) (*models.ChatSession, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(session, userID); err != nil {
		return nil, err
	}

	status := ""
	if req.Active != nil {
		status = models.SessionStatusInactive
		if *req.Active {
			status = models.SessionStatusActive
		}
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, sessionID, req.Name, req.Context, status, now); err != nil {
		return nil, err
	}

	if req.Name != "" {
		session.Name = req.Name
	}
	if status != "" {
		session.Status = status
	}
	applyContextPatch(&session.Context, req.Context)
	session.LastAccessed = now
	session.UpdatedAt = now
	s.mirrorToCache(ctx, session)
	return session, nil
}

// DeleteSession hard-deletes the session and evicts its cache mirror.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := checkOwnership(session, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, sessionID)
	}
	return nil
}

// ListSessions pages over the caller's own sessions. Anonymous callers
// have no listable sessions.
func (s *ChatService) ListSessions(ctx context.Context, userID, status string, page, limit int) (*models.SessionListResponse, error) {
	sessions, total, err := s.repo.List(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, summarize(&sessions[i]))
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return &models.SessionListResponse{
		Success:  true,
		Sessions: summaries,
		Pagination: models.PageInfo{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// GetSessionSummary returns the denormalized session view. The ownership
// check always reads the durable store; the cached mirror only supplies
// the summary payload after access is settled.
func (s *ChatService) GetSessionSummary(ctx context.Context, userID, sessionID string) (*models.SessionSummary, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(session, userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if summary := s.cache.Get(ctx, sessionID); summary != nil {
			return summary, nil
		}
	}
	summary := summarize(session)
	s.mirrorSummary(ctx, &summary)
	return &summary, nil
}

func (s *ChatService) synthesizeReply(ctx context.Context, logger *slog.Logger, text, language string) string {
	if s.synthesizer == nil || !s.synthesizer.SupportsLanguage(language) {
		return ""
	}
	result, err := s.synthesizer.Synthesize(ctx, models.SynthesizeRequest{
		Text:     text,
		Language: language,
	})
	if err != nil {
		logging.WithProvider(logger, "tts", language).Warn("Voice synthesis failed, returning text-only reply", "error", err)
		return ""
	}
	return "data:audio/wav;base64," + result.AudioData
}

func (s *ChatService) mirrorToCache(ctx context.Context, session *models.ChatSession) {
	summary := summarize(session)
	s.mirrorSummary(ctx, &summary)
}

func (s *ChatService) mirrorSummary(ctx context.Context, summary *models.SessionSummary) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, summary)
}

func summarize(session *models.ChatSession) models.SessionSummary {
	summary := models.SessionSummary{
		SessionID:    session.SessionID,
		UserID:       session.UserID,
		Name:         session.Name,
		Context:      session.Context,
		MessageCount: len(session.Messages),
		Active:       session.Active(),
		LastAccessed: session.LastAccessed,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	if n := len(session.Messages); n > 0 {
		last := session.Messages[n-1]
		last.Feedback = nil
		summary.LastMessage = &last
	}
	return summary
}

// checkOwnership enforces the session access rule: anonymous sessions are
// open to any holder of the id, owned sessions only to their owner.
func checkOwnership(session *models.ChatSession, userID string) error {
	if session.UserID != "" && session.UserID != userID {
		return ErrForbidden
	}
	return nil
}
