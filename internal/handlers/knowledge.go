package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/knowledge"
)

// KnowledgeHandler serves the read-only knowledge base endpoints.
type KnowledgeHandler struct {
	registry *knowledge.Registry
}

// NewKnowledgeHandler creates the knowledge handler.
func NewKnowledgeHandler(registry *knowledge.Registry) *KnowledgeHandler {
	return &KnowledgeHandler{registry: registry}
}

// Topics handles GET /api/knowledge/topics
func (h *KnowledgeHandler) Topics(c *fiber.Ctx) error {
	keys := h.registry.Topics()

	topics := make([]fiber.Map, 0, len(keys))
	for _, key := range keys {
		topic, ok := h.registry.Topic(key)
		if !ok {
			continue
		}
		topics = append(topics, fiber.Map{
			"key":           topic.Key,
			"keywords":      topic.Keywords,
			"relatedTopics": topic.RelatedTopics,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"topics":  topics,
	})
}

// EmergencyContacts handles GET /api/knowledge/emergency-contacts
func (h *KnowledgeHandler) EmergencyContacts(c *fiber.Ctx) error {
	language := c.Query("language", "en")
	return c.JSON(fiber.Map{
		"success":  true,
		"language": language,
		"contacts": h.registry.EmergencyContacts(language),
	})
}
