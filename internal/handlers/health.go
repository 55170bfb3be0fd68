package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/database"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/nlp"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/services"
)

// HealthHandler reports liveness and dependency status. The database and
// NLP checks are advisory: the API keeps answering chat traffic with a
// degraded provider.
type HealthHandler struct {
	db    *database.MongoDB
	cache *services.CacheStore
	nlp   *nlp.Service
}

// NewHealthHandler creates the health handler. db may be nil when the
// server runs on the in-memory store.
func NewHealthHandler(db *database.MongoDB, cache *services.CacheStore, nlpService *nlp.Service) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, nlp: nlpService}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "in-memory"
	if h.db != nil {
		dbStatus = "connected"
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}

	cache := "unavailable"
	if h.cache != nil && h.cache.Healthy(ctx) {
		cache = "connected"
	}

	nlpStatus := "connected"
	if err := h.nlp.TestConnectivity(ctx); err != nil {
		nlpStatus = "unreachable"
	}

	status := "ok"
	if dbStatus == "unreachable" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services": fiber.Map{
			"database": dbStatus,
			"cache":    cache,
			"nlp":      nlpStatus,
		},
	})
}
