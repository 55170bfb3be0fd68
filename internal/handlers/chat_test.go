package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/knowledge"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/middleware"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/services"
	"github.com/Team-TALIX/legalhelp-gh-api/pkg/auth"
)

func newTestApp(t *testing.T) (*fiber.App, *auth.JWTAuth) {
	t.Helper()

	registry, err := knowledge.Load()
	if err != nil {
		t.Fatalf("failed to load knowledge base: %v", err)
	}
	cache := services.NewSessionCache(services.NewCacheStore(nil))
	chatService := services.NewChatService(services.NewMemorySessionRepository(), cache, registry, nil, nil)

	jwtAuth, err := auth.NewJWTAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create JWT auth: %v", err)
	}

	handler := NewChatHandler(chatService, []string{"en", "tw", "ee", "dag"})

	app := fiber.New()
	chat := app.Group("/api/chat", middleware.OptionalAuth(jwtAuth))
	chat.Post("/session", handler.CreateSession)
	chat.Get("/session/:sessionId", handler.GetSession)
	chat.Post("/query", handler.Query)
	chat.Get("/history/:sessionId", handler.History)
	chat.Post("/feedback", handler.Feedback)
	chat.Put("/session/:sessionId", handler.UpdateSession)
	chat.Delete("/session/:sessionId", handler.DeleteSession)
	chat.Get("/sessions", middleware.RequireAuth(jwtAuth), handler.ListSessions)
	return app, jwtAuth
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	var parsed map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("failed to decode response %q: %v", data, err)
		}
	}
	return resp, parsed
}

func createSession(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/chat/session", token, map[string]interface{}{})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create session status = %d, want 201", resp.StatusCode)
	}
	sessionID, _ := body["sessionId"].(string)
	if sessionID == "" {
		t.Fatal("create session response missing sessionId")
	}
	return sessionID
}

func TestCreateAndQueryFlow(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, body := doJSON(t, app, "POST", "/api/chat/query", "", map[string]interface{}{
		"sessionId": sessionID,
		"content":   "my landlord wants to evict me",
		"language":  "en",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}
	if body["success"] != true {
		t.Error("query response success != true")
	}
	message, _ := body["message"].(map[string]interface{})
	if message["role"] != "assistant" {
		t.Errorf("message role = %v, want assistant", message["role"])
	}
	if message["content"] == "" {
		t.Error("assistant message has empty content")
	}
}

func TestQueryValidation(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing sessionId", map[string]interface{}{"content": "hello", "language": "en"}},
		{"empty content", map[string]interface{}{"sessionId": sessionID, "content": "   ", "language": "en"}},
		{"content too long", map[string]interface{}{"sessionId": sessionID, "content": strings.Repeat("a", 2001), "language": "en"}},
		{"unsupported language", map[string]interface{}{"sessionId": sessionID, "content": "hello", "language": "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, "POST", "/api/chat/query", "", tt.body)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if body["success"] != false {
				t.Error("error envelope success != false")
			}
			if _, ok := body["errors"]; !ok {
				t.Error("validation response missing errors field")
			}
		})
	}
}

func TestGetSessionSummary(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, body := doJSON(t, app, "GET", "/api/chat/session/"+sessionID, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	session, _ := body["session"].(map[string]interface{})
	if session["sessionId"] != sessionID {
		t.Errorf("sessionId = %v, want %q", session["sessionId"], sessionID)
	}
	if session["active"] != true {
		t.Errorf("active = %v, want true", session["active"])
	}

	resp, _ = doJSON(t, app, "GET", "/api/chat/session/chat_missing", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/chat/history/chat_missing", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if body["success"] != false {
		t.Error("error envelope success != false")
	}
}

func TestHistoryPaginationParams(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, _ := doJSON(t, app, "GET", "/api/chat/history/"+sessionID+"?limit=101", "", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("limit=101 status = %d, want 400", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/chat/history/"+sessionID+"?offset=-1", "", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("offset=-1 status = %d, want 400", resp.StatusCode)
	}
	resp, body := doJSON(t, app, "GET", "/api/chat/history/"+sessionID, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("default history status = %d, want 200", resp.StatusCode)
	}
	pagination, _ := body["pagination"].(map[string]interface{})
	if pagination["limit"] != float64(50) {
		t.Errorf("default limit = %v, want 50", pagination["limit"])
	}
}

func TestFeedbackValidation(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"rating too low", map[string]interface{}{"sessionId": sessionID, "messageIndex": 0, "rating": 0}},
		{"rating too high", map[string]interface{}{"sessionId": sessionID, "messageIndex": 0, "rating": 6}},
		{"feedback too long", map[string]interface{}{"sessionId": sessionID, "messageIndex": 0, "rating": 3, "feedback": strings.Repeat("a", 501)}},
		{"negative index", map[string]interface{}{"sessionId": sessionID, "messageIndex": -1, "rating": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, "POST", "/api/chat/feedback", "", tt.body)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestFeedbackIndexOutOfRange(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, _ := doJSON(t, app, "POST", "/api/chat/feedback", "", map[string]interface{}{
		"sessionId":    sessionID,
		"messageIndex": 5,
		"rating":       4,
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, _ := doJSON(t, app, "DELETE", "/api/chat/session/"+sessionID, "", map[string]interface{}{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("unconfirmed delete status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/chat/session/"+sessionID, "", map[string]interface{}{
		"confirmDelete": true,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("confirmed delete status = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/chat/session/"+sessionID, "", map[string]interface{}{
		"confirmDelete": true,
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateSessionActiveFlag(t *testing.T) {
	app, _ := newTestApp(t)
	sessionID := createSession(t, app, "")

	resp, body := doJSON(t, app, "PUT", "/api/chat/session/"+sessionID, "", map[string]interface{}{
		"name":   "Tenancy questions",
		"active": false,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	if body["active"] != false {
		t.Errorf("active = %v, want false", body["active"])
	}
	if body["name"] != "Tenancy questions" {
		t.Errorf("name = %v", body["name"])
	}
}

func TestOwnedSessionRejectsOtherUsers(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	ownerToken, err := jwtAuth.GenerateToken("user-1", "owner@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	otherToken, err := jwtAuth.GenerateToken("user-2", "other@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	sessionID := createSession(t, app, ownerToken)

	resp, _ := doJSON(t, app, "GET", "/api/chat/history/"+sessionID, otherToken, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("cross-user history status = %d, want 403", resp.StatusCode)
	}

	// Anonymous callers are rejected too.
	resp, _ = doJSON(t, app, "GET", "/api/chat/history/"+sessionID, "", nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("anonymous history status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "GET", "/api/chat/history/"+sessionID, ownerToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("owner history status = %d, want 200", resp.StatusCode)
	}
}

func TestListSessionsRequiresAuth(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/chat/sessions", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("anonymous list status = %d, want 401", resp.StatusCode)
	}

	token, err := jwtAuth.GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		createSession(t, app, token)
	}

	resp, body := doJSON(t, app, "GET", "/api/chat/sessions?page=1&limit=2", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	sessions, _ := body["sessions"].([]interface{})
	if len(sessions) != 2 {
		t.Errorf("page size = %d, want 2", len(sessions))
	}
	pagination, _ := body["pagination"].(map[string]interface{})
	if pagination["total"] != float64(3) {
		t.Errorf("total = %v, want 3", pagination["total"])
	}
	if pagination["pages"] != float64(2) {
		t.Errorf("pages = %v, want 2", pagination["pages"])
	}
}

func TestInvalidTokenDegradesToAnonymous(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/chat/session", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("status = %d, want 201 (anonymous fallback)", resp.StatusCode)
	}

	var body map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if id := fmt.Sprint(body["sessionId"]); !strings.HasPrefix(id, "chat_") {
		t.Errorf("sessionId = %q, want chat_ prefix", id)
	}
}
