package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/middleware"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/services"
)

const (
	maxContentLength  = 2000
	maxFeedbackLength = 500
	defaultHistoryLim = 50
	maxHistoryLim     = 100
	defaultPageLim    = 20
)

// ChatHandler serves the chat session API.
type ChatHandler struct {
	chat      *services.ChatService
	languages map[string]bool
}

// NewChatHandler creates the chat handler. supportedLanguages bounds the
// language values accepted on queries.
func NewChatHandler(chat *services.ChatService, supportedLanguages []string) *ChatHandler {
	languages := make(map[string]bool, len(supportedLanguages))
	for _, lang := range supportedLanguages {
		languages[lang] = true
	}
	return &ChatHandler{chat: chat, languages: languages}
}

// CreateSession handles POST /api/chat/session
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	var req models.CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	session, err := h.chat.CreateSession(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"sessionId": session.SessionID,
		"name":      session.Name,
		"context":   session.Context,
		"createdAt": session.CreatedAt,
	})
}

// Query handles POST /api/chat/query
func (h *ChatHandler) Query(c *fiber.Ctx) error {
	var req models.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var fieldErrors []FieldError
	if req.SessionID == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "sessionId", Message: "sessionId is required"})
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "content", Message: "content is required"})
	} else if len(req.Content) > maxContentLength {
		fieldErrors = append(fieldErrors, FieldError{Field: "content", Message: "content exceeds 2000 characters"})
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if !h.languages[req.Language] {
		fieldErrors = append(fieldErrors, FieldError{Field: "language", Message: "unsupported language"})
	}
	if len(fieldErrors) > 0 {
		return respondValidation(c, fieldErrors)
	}

	resp, err := h.chat.AppendQuery(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// GetSession handles GET /api/chat/session/:sessionId
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	summary, err := h.chat.GetSessionSummary(c.Context(), middleware.UserID(c), c.Params("sessionId"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"session": summary,
	})
}

// History handles GET /api/chat/history/:sessionId
func (h *ChatHandler) History(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	limit := c.QueryInt("limit", defaultHistoryLim)
	if limit < 1 || limit > maxHistoryLim {
		return respondValidation(c, []FieldError{
			{Field: "limit", Message: "limit must be between 1 and 100"},
		})
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		return respondValidation(c, []FieldError{
			{Field: "offset", Message: "offset must not be negative"},
		})
	}

	resp, err := h.chat.GetHistory(c.Context(), middleware.UserID(c), sessionID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// Feedback handles POST /api/chat/feedback
func (h *ChatHandler) Feedback(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var fieldErrors []FieldError
	if req.SessionID == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "sessionId", Message: "sessionId is required"})
	}
	if req.MessageIndex < 0 {
		fieldErrors = append(fieldErrors, FieldError{Field: "messageIndex", Message: "messageIndex must not be negative"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		fieldErrors = append(fieldErrors, FieldError{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	if len(req.Feedback) > maxFeedbackLength {
		fieldErrors = append(fieldErrors, FieldError{Field: "feedback", Message: "feedback exceeds 500 characters"})
	}
	if len(fieldErrors) > 0 {
		return respondValidation(c, fieldErrors)
	}

	if err := h.chat.AppendFeedback(c.Context(), middleware.UserID(c), &req); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Feedback recorded",
	})
}

// UpdateSession handles PUT /api/chat/session/:sessionId
func (h *ChatHandler) UpdateSession(c *fiber.Ctx) error {
	var req models.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := h.chat.UpdateSession(c.Context(), middleware.UserID(c), c.Params("sessionId"), &req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"sessionId": session.SessionID,
		"name":      session.Name,
		"context":   session.Context,
		"active":    session.Active(),
		"updatedAt": session.UpdatedAt,
	})
}

// DeleteSession handles DELETE /api/chat/session/:sessionId
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	var req models.DeleteSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.ConfirmDelete == nil || !*req.ConfirmDelete {
		return respondValidation(c, []FieldError{
			{Field: "confirmDelete", Message: "confirmDelete must be true, deletion is permanent"},
		})
	}

	if err := h.chat.DeleteSession(c.Context(), middleware.UserID(c), c.Params("sessionId")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Session deleted",
	})
}

// ListSessions handles GET /api/chat/sessions (authenticated only)
func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return respondError(c, fiber.StatusUnauthorized, "Authentication required")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLim)
	if limit < 1 || limit > maxHistoryLim {
		return respondValidation(c, []FieldError{
			{Field: "limit", Message: "limit must be between 1 and 100"},
		})
	}

	status := ""
	switch c.Query("active") {
	case "true":
		status = models.SessionStatusActive
	case "false":
		status = models.SessionStatusInactive
	}

	resp, err := h.chat.ListSessions(c.Context(), userID, status, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}
