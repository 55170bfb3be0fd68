package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session lifecycle status. Deletion is a hard delete, so a stored session
// is always in one of these two states; "deleted" is the absence of the
// document.
const (
	SessionStatusActive   = "active"
	SessionStatusInactive = "inactive"
)

// ChatSession is a multi-turn conversation stored as a single MongoDB
// document with an embedded, append-only message log.
type ChatSession struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID    string             `bson:"sessionId" json:"sessionId"`
	UserID       string             `bson:"userId,omitempty" json:"userId,omitempty"` // unset => anonymous session
	Name         string             `bson:"name" json:"name"`
	Messages     []Message          `bson:"messages" json:"messages"`
	Context      SessionContext     `bson:"context" json:"context"`
	Status       string             `bson:"status" json:"-"`
	LastAccessed time.Time          `bson:"lastAccessed" json:"lastAccessed"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Active reports the wire-level boolean derived from the status enum.
func (s *ChatSession) Active() bool {
	return s.Status != SessionStatusInactive
}

// SessionContext is the per-session key/value bag carried across turns.
// Updates are shallow merges: set fields overwrite, absent fields persist.
type SessionContext struct {
	LegalTopic    string `bson:"legalTopic,omitempty" json:"legalTopic,omitempty"`
	UserLocation  string `bson:"userLocation,omitempty" json:"userLocation,omitempty"`
	Resolved      bool   `bson:"resolved" json:"resolved"`
	RequestDetail bool   `bson:"requestDetail,omitempty" json:"requestDetail,omitempty"`
}

// ContextPatch is a shallow-merge update to SessionContext. Nil fields are
// left untouched.
type ContextPatch struct {
	LegalTopic    *string `json:"legalTopic,omitempty"`
	UserLocation  *string `json:"userLocation,omitempty"`
	Resolved      *bool   `json:"resolved,omitempty"`
	RequestDetail *bool   `json:"requestDetail,omitempty"`
}

// Message is one conversation turn. Immutable once appended, except for
// the append-only feedback list.
type Message struct {
	MessageID string            `bson:"messageId" json:"messageId"`
	Role      string            `bson:"role" json:"role"`
	Content   string            `bson:"content" json:"content"`
	Language  string            `bson:"language" json:"language"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	AudioURL  string            `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	Metadata  *MessageMetadata  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Feedback  []MessageFeedback `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// MessageMetadata is attached to assistant messages only.
type MessageMetadata struct {
	LegalTopic    string   `bson:"legalTopic" json:"legalTopic"`
	Confidence    float64  `bson:"confidence" json:"confidence"`
	RelatedTopics []string `bson:"relatedTopics" json:"relatedTopics"`
}

// MessageFeedback is a single rating left on a message.
type MessageFeedback struct {
	UserID    string    `bson:"userId,omitempty" json:"userId,omitempty"`
	Rating    int       `bson:"rating" json:"rating"`
	Feedback  string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Helpful   bool      `bson:"helpful" json:"helpful"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SessionSummary is the denormalized session mirror kept in the cache and
// returned by session listing. Never authoritative.
type SessionSummary struct {
	SessionID    string         `json:"sessionId"`
	UserID       string         `json:"userId,omitempty"`
	Name         string         `json:"name,omitempty"`
	Context      SessionContext `json:"context"`
	LastMessage  *Message       `json:"lastMessage,omitempty"`
	MessageCount int            `json:"messageCount"`
	Active       bool           `json:"active"`
	LastAccessed time.Time      `json:"lastAccessed"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateSessionRequest is the request body for creating a chat session
type CreateSessionRequest struct {
	Name    string        `json:"name,omitempty"`
	Context *ContextPatch `json:"context,omitempty"`
}

// QueryRequest is the request body for submitting a legal query
type QueryRequest struct {
	SessionID    string        `json:"sessionId"`
	Content      string        `json:"content"`
	Language     string        `json:"language"`
	Context      *ContextPatch `json:"context,omitempty"`
	IsVoiceInput bool          `json:"isVoiceInput,omitempty"`
	AudioURL     string        `json:"audioUrl,omitempty"`
}

// QueryResponse returns the assistant turn plus a context snapshot
type QueryResponse struct {
	Success        bool            `json:"success"`
	Message        Message         `json:"message"`
	SessionContext ContextSnapshot `json:"sessionContext"`
}

// ContextSnapshot is the slim context view returned with each answer
type ContextSnapshot struct {
	LegalTopic string `json:"legalTopic,omitempty"`
	Resolved   bool   `json:"resolved"`
}

// HistoryResponse is the paginated message log for a session
type HistoryResponse struct {
	Success    bool           `json:"success"`
	SessionID  string         `json:"sessionId"`
	Messages   []Message      `json:"messages"`
	Pagination Pagination     `json:"pagination"`
	Context    SessionContext `json:"context"`
}

// Pagination describes an offset/limit window over the message log
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// FeedbackRequest is the request body for rating a message
type FeedbackRequest struct {
	SessionID    string `json:"sessionId"`
	MessageIndex int    `json:"messageIndex"`
	Rating       int    `json:"rating"`
	Feedback     string `json:"feedback,omitempty"`
	Helpful      *bool  `json:"helpful"`
}

// UpdateSessionRequest is the request body for updating session state
type UpdateSessionRequest struct {
	Name    string        `json:"name,omitempty"`
	Context *ContextPatch `json:"context,omitempty"`
	Active  *bool         `json:"active,omitempty"`
}

// DeleteSessionRequest carries the delete confirmation flag
type DeleteSessionRequest struct {
	ConfirmDelete *bool `json:"confirmDelete"`
}

// SessionListResponse is the paginated owner-scoped session listing
type SessionListResponse struct {
	Success    bool             `json:"success"`
	Sessions   []SessionSummary `json:"sessions"`
	Pagination PageInfo         `json:"pagination"`
}

// PageInfo describes page/limit pagination over sessions
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}
