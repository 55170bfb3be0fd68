package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

const (
	sessionCachePrefix = "chat_session:"
	sessionCacheTTL    = time.Hour
)

// SessionCache mirrors session summaries for fast repeat lookups. It is
// never the source of truth: a miss is always recoverable from the durable
// store, and ownership checks never consult it.
type SessionCache struct {
	store *CacheStore
}

// NewSessionCache creates a session cache over the shared cache store.
func NewSessionCache(store *CacheStore) *SessionCache {
	return &SessionCache{store: store}
}

// Set refreshes the cached summary for a session.
func (c *SessionCache) Set(ctx context.Context, summary *models.SessionSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		slog.Error("failed to marshal session summary", "session_id", summary.SessionID, "error", err)
		return
	}
	c.store.Set(ctx, sessionCachePrefix+summary.SessionID, string(data), sessionCacheTTL)
}

// Get returns the cached summary, or nil on miss.
func (c *SessionCache) Get(ctx context.Context, sessionID string) *models.SessionSummary {
	data, ok := c.store.Get(ctx, sessionCachePrefix+sessionID)
	if !ok {
		return nil
	}
	var summary models.SessionSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		slog.Debug("discarding unreadable session cache entry", "session_id", sessionID, "error", err)
		c.store.Delete(ctx, sessionCachePrefix+sessionID)
		return nil
	}
	return &summary
}

// Delete evicts a session's summary, used on hard delete.
func (c *SessionCache) Delete(ctx context.Context, sessionID string) {
	c.store.Delete(ctx, sessionCachePrefix+sessionID)
}
