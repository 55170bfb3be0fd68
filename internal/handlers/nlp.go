package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/nlp"
)

// NLPHandler exposes the language services directly: translation, speech
// recognition, speech synthesis and their metadata.
type NLPHandler struct {
	nlp *nlp.Service
}

// NewNLPHandler creates the NLP handler.
func NewNLPHandler(service *nlp.Service) *NLPHandler {
	return &NLPHandler{nlp: service}
}

// Translate handles POST /api/nlp/translate
func (h *NLPHandler) Translate(c *fiber.Ctx) error {
	var req models.TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var fieldErrors []FieldError
	if strings.TrimSpace(req.Text) == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "text", Message: "text is required"})
	}
	if req.FromLanguage == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "fromLanguage", Message: "fromLanguage is required"})
	}
	if req.ToLanguage == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "toLanguage", Message: "toLanguage is required"})
	}
	if len(fieldErrors) > 0 {
		return respondValidation(c, fieldErrors)
	}

	result, err := h.nlp.Translate(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}

// SpeechToText handles POST /api/nlp/speech-to-text. The audio arrives
// as the raw request body; the language rides in a query parameter.
func (h *NLPHandler) SpeechToText(c *fiber.Ctx) error {
	language := c.Query("language")
	if language == "" {
		return respondValidation(c, []FieldError{
			{Field: "language", Message: "language query parameter is required"},
		})
	}

	audio := c.Body()
	mimeType := c.Get(fiber.HeaderContentType)
	if file, err := c.FormFile("audio"); err == nil {
		opened, err := file.Open()
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Could not read uploaded audio")
		}
		defer opened.Close()
		audio, err = io.ReadAll(opened)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Could not read uploaded audio")
		}
		mimeType = file.Header.Get(fiber.HeaderContentType)
	}
	if len(audio) == 0 {
		return respondValidation(c, []FieldError{
			{Field: "audio", Message: "audio body is required"},
		})
	}

	result, err := h.nlp.Transcribe(c.Context(), audio, language, mimeType)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}

// TextToSpeech handles POST /api/nlp/text-to-speech
func (h *NLPHandler) TextToSpeech(c *fiber.Ctx) error {
	var req models.SynthesizeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var fieldErrors []FieldError
	if strings.TrimSpace(req.Text) == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "text", Message: "text is required"})
	}
	if req.Language == "" {
		fieldErrors = append(fieldErrors, FieldError{Field: "language", Message: "language is required"})
	}
	if len(fieldErrors) > 0 {
		return respondValidation(c, fieldErrors)
	}

	result, err := h.nlp.Synthesize(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}

// Languages handles GET /api/nlp/languages
func (h *NLPHandler) Languages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"languages": h.nlp.Languages(),
	})
}

// Speakers handles GET /api/nlp/speakers
func (h *NLPHandler) Speakers(c *fiber.Ctx) error {
	catalog, err := h.nlp.Speakers(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"speakers": catalog,
	})
}
