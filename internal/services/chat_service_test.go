package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/knowledge"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

func newTestChatService(t *testing.T) *ChatService {
	t.Helper()
	registry, err := knowledge.Load()
	if err != nil {
		t.Fatalf("failed to load knowledge base: %v", err)
	}
	cache := NewSessionCache(NewCacheStore(nil))
	return NewChatService(NewMemorySessionRepository(), cache, registry, nil, nil)
}

func mustCreateSession(t *testing.T, svc *ChatService, userID string) *models.ChatSession {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), userID, &models.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return session
}

func TestCreateSessionDefaults(t *testing.T) {
	svc := newTestChatService(t)

	session := mustCreateSession(t, svc, "")
	if !strings.HasPrefix(session.SessionID, "chat_") {
		t.Errorf("SessionID = %q, want chat_ prefix", session.SessionID)
	}
	if !strings.HasPrefix(session.Name, "Chat ") {
		t.Errorf("Name = %q, want generated default", session.Name)
	}
	if session.UserID != "" {
		t.Errorf("UserID = %q, want empty for anonymous", session.UserID)
	}
	if !session.Active() {
		t.Error("new session should be active")
	}
	if len(session.Messages) != 0 {
		t.Errorf("new session has %d messages, want 0", len(session.Messages))
	}
}

func TestAppendQueryRecordsBothTurns(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	resp, err := svc.AppendQuery(context.Background(), "", &models.QueryRequest{
		SessionID: session.SessionID,
		Content:   "my landlord wants to evict me from my rental",
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("AppendQuery() error = %v", err)
	}
	if resp.Message.Role != models.RoleAssistant {
		t.Errorf("response role = %q, want assistant", resp.Message.Role)
	}
	if resp.Message.Metadata == nil {
		t.Fatal("assistant message missing metadata")
	}
	if resp.Message.Metadata.LegalTopic != "tenant_rights" {
		t.Errorf("LegalTopic = %q, want tenant_rights", resp.Message.Metadata.LegalTopic)
	}
	if resp.SessionContext.LegalTopic != "tenant_rights" {
		t.Errorf("context LegalTopic = %q, want tenant_rights", resp.SessionContext.LegalTopic)
	}

	stored, err := svc.repo.Get(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Fatalf("stored messages = %d, want 2 (user + assistant)", len(stored.Messages))
	}
	if stored.Messages[0].Role != models.RoleUser || stored.Messages[1].Role != models.RoleAssistant {
		t.Error("turn order should be user then assistant")
	}
	if stored.Messages[0].MessageID == "" || stored.Messages[1].MessageID == "" {
		t.Error("messages should carry stable ids")
	}
	if stored.Context.LegalTopic != "tenant_rights" {
		t.Errorf("persisted context LegalTopic = %q, want tenant_rights", stored.Context.LegalTopic)
	}
}

func TestAppendQueryVoiceInputGatesAudio(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	// Text queries never keep a stray audio reference.
	_, err := svc.AppendQuery(context.Background(), "", &models.QueryRequest{
		SessionID:    session.SessionID,
		Content:      "my landlord wants to evict me",
		Language:     "en",
		AudioURL:     "https://example.com/clip.wav",
		IsVoiceInput: false,
	})
	if err != nil {
		t.Fatalf("AppendQuery() error = %v", err)
	}

	_, err = svc.AppendQuery(context.Background(), "", &models.QueryRequest{
		SessionID:    session.SessionID,
		Content:      "what about my deposit",
		Language:     "en",
		AudioURL:     "https://example.com/clip.wav",
		IsVoiceInput: true,
	})
	if err != nil {
		t.Fatalf("AppendQuery() error = %v", err)
	}

	stored, _ := svc.repo.Get(context.Background(), session.SessionID)
	if stored.Messages[0].AudioURL != "" {
		t.Errorf("text query kept AudioURL %q, want empty", stored.Messages[0].AudioURL)
	}
	if stored.Messages[2].AudioURL != "https://example.com/clip.wav" {
		t.Errorf("voice query AudioURL = %q, want the upload", stored.Messages[2].AudioURL)
	}
}

func TestAppendQueryUnknownSession(t *testing.T) {
	svc := newTestChatService(t)

	_, err := svc.AppendQuery(context.Background(), "", &models.QueryRequest{
		SessionID: "chat_missing",
		Content:   "hello",
		Language:  "en",
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	svc := newTestChatService(t)
	owned := mustCreateSession(t, svc, "user-1")
	anonymous := mustCreateSession(t, svc, "")

	// Wrong user on an owned session is rejected on every operation.
	_, err := svc.AppendQuery(context.Background(), "user-2", &models.QueryRequest{
		SessionID: owned.SessionID,
		Content:   "hello",
		Language:  "en",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("AppendQuery as wrong user: error = %v, want ErrForbidden", err)
	}
	_, err = svc.GetHistory(context.Background(), "user-2", owned.SessionID, 50, 0)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("GetHistory as wrong user: error = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteSession(context.Background(), "user-2", owned.SessionID); !errors.Is(err, ErrForbidden) {
		t.Errorf("DeleteSession as wrong user: error = %v, want ErrForbidden", err)
	}

	// The owner and any holder of an anonymous session id get through.
	if _, err := svc.GetHistory(context.Background(), "user-1", owned.SessionID, 50, 0); err != nil {
		t.Errorf("GetHistory as owner: error = %v", err)
	}
	if _, err := svc.GetHistory(context.Background(), "user-2", anonymous.SessionID, 50, 0); err != nil {
		t.Errorf("GetHistory on anonymous session: error = %v", err)
	}
}

func TestGetHistoryPagination(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	// Three queries produce six messages.
	for i := 0; i < 3; i++ {
		_, err := svc.AppendQuery(context.Background(), "", &models.QueryRequest{
			SessionID: session.SessionID,
			Content:   "how do I register my land",
			Language:  "en",
		})
		if err != nil {
			t.Fatalf("AppendQuery() error = %v", err)
		}
	}

	history, err := svc.GetHistory(context.Background(), "", session.SessionID, 4, 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history.Messages) != 4 {
		t.Errorf("page size = %d, want 4", len(history.Messages))
	}
	if history.Pagination.Total != 6 {
		t.Errorf("Total = %d, want 6", history.Pagination.Total)
	}
	if !history.Pagination.HasMore {
		t.Error("HasMore = false, want true on first page")
	}

	last, err := svc.GetHistory(context.Background(), "", session.SessionID, 4, 4)
	if err != nil {
		t.Fatalf("GetHistory() second page error = %v", err)
	}
	if len(last.Messages) != 2 {
		t.Errorf("last page size = %d, want 2", len(last.Messages))
	}
	if last.Pagination.HasMore {
		t.Error("HasMore = true, want false on last page")
	}

	// Offset past the end yields an empty page, not an error.
	empty, err := svc.GetHistory(context.Background(), "", session.SessionID, 4, 100)
	if err != nil {
		t.Fatalf("GetHistory() past end error = %v", err)
	}
	if len(empty.Messages) != 0 {
		t.Errorf("past-end page size = %d, want 0", len(empty.Messages))
	}
}

func TestAppendFeedback(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	_, err := svc.AppendQuery(context.Background(), "", &models.QueryRequest{
		SessionID: session.SessionID,
		Content:   "police stopped me at a checkpoint",
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("AppendQuery() error = %v", err)
	}

	helpful := true
	err = svc.AppendFeedback(context.Background(), "", &models.FeedbackRequest{
		SessionID:    session.SessionID,
		MessageIndex: 1,
		Rating:       5,
		Feedback:     "very clear",
		Helpful:      &helpful,
	})
	if err != nil {
		t.Fatalf("AppendFeedback() error = %v", err)
	}

	stored, _ := svc.repo.Get(context.Background(), session.SessionID)
	if len(stored.Messages[1].Feedback) != 1 {
		t.Fatalf("feedback entries = %d, want 1", len(stored.Messages[1].Feedback))
	}
	fb := stored.Messages[1].Feedback[0]
	if fb.Rating != 5 || !fb.Helpful || fb.Feedback != "very clear" {
		t.Errorf("stored feedback = %+v", fb)
	}
	if len(stored.Messages[0].Feedback) != 0 {
		t.Error("feedback landed on the wrong message")
	}
}

func TestAppendFeedbackIndexOutOfRange(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	err := svc.AppendFeedback(context.Background(), "", &models.FeedbackRequest{
		SessionID:    session.SessionID,
		MessageIndex: 0,
		Rating:       3,
	})
	if !errors.Is(err, ErrInvalidMessageIndex) {
		t.Errorf("error = %v, want ErrInvalidMessageIndex", err)
	}
}

func TestUpdateSession(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "user-1")

	location := "Kumasi"
	active := false
	updated, err := svc.UpdateSession(context.Background(), "user-1", session.SessionID, &models.UpdateSessionRequest{
		Name:    "Land dispute",
		Context: &models.ContextPatch{UserLocation: &location},
		Active:  &active,
	})
	if err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}
	if updated.Name != "Land dispute" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Context.UserLocation != "Kumasi" {
		t.Errorf("UserLocation = %q", updated.Context.UserLocation)
	}
	if updated.Active() {
		t.Error("session should be inactive after update")
	}

	// Unset fields persist across the shallow merge.
	stored, _ := svc.repo.Get(context.Background(), session.SessionID)
	if stored.Status != models.SessionStatusInactive {
		t.Errorf("Status = %q, want inactive", stored.Status)
	}
	if stored.Context.UserLocation != "Kumasi" {
		t.Errorf("persisted UserLocation = %q", stored.Context.UserLocation)
	}
}

func TestDeleteSessionIsTerminal(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "")

	if err := svc.DeleteSession(context.Background(), "", session.SessionID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.repo.Get(context.Background(), session.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after delete: error = %v, want ErrSessionNotFound", err)
	}
	if summary := svc.cache.Get(context.Background(), session.SessionID); summary != nil {
		t.Error("cache mirror should be evicted on delete")
	}
	if err := svc.DeleteSession(context.Background(), "", session.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second delete: error = %v, want ErrSessionNotFound", err)
	}
}

func TestListSessionsScopedToOwner(t *testing.T) {
	svc := newTestChatService(t)
	mustCreateSession(t, svc, "user-1")
	mustCreateSession(t, svc, "user-1")
	mustCreateSession(t, svc, "user-2")
	mustCreateSession(t, svc, "")

	resp, err := svc.ListSessions(context.Background(), "user-1", "", 1, 10)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Errorf("sessions = %d, want 2", len(resp.Sessions))
	}
	if resp.Pagination.Total != 2 {
		t.Errorf("Total = %d, want 2", resp.Pagination.Total)
	}
	for _, s := range resp.Sessions {
		if s.UserID != "user-1" {
			t.Errorf("listing leaked session owned by %q", s.UserID)
		}
	}
}

func TestListSessionsStatusFilter(t *testing.T) {
	svc := newTestChatService(t)
	keep := mustCreateSession(t, svc, "user-1")
	archived := mustCreateSession(t, svc, "user-1")

	active := false
	if _, err := svc.UpdateSession(context.Background(), "user-1", archived.SessionID, &models.UpdateSessionRequest{Active: &active}); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}

	resp, err := svc.ListSessions(context.Background(), "user-1", models.SessionStatusActive, 1, 10)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(resp.Sessions) != 1 {
		t.Fatalf("active sessions = %d, want 1", len(resp.Sessions))
	}
	if resp.Sessions[0].SessionID != keep.SessionID {
		t.Errorf("filter returned %q, want %q", resp.Sessions[0].SessionID, keep.SessionID)
	}
}

func TestSessionSummaryCacheRoundTrip(t *testing.T) {
	svc := newTestChatService(t)
	session := mustCreateSession(t, svc, "user-1")

	summary, err := svc.GetSessionSummary(context.Background(), "user-1", session.SessionID)
	if err != nil {
		t.Fatalf("GetSessionSummary() error = %v", err)
	}
	if summary.SessionID != session.SessionID {
		t.Errorf("SessionID = %q", summary.SessionID)
	}

	// Ownership comes from the durable store, so even a poisoned cache
	// entry claiming the session is anonymous cannot open it up.
	svc.cache.Set(context.Background(), &models.SessionSummary{SessionID: session.SessionID})
	if _, err := svc.GetSessionSummary(context.Background(), "user-2", session.SessionID); !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}
