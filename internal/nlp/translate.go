package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

const (
	translateMaxChars = 1000
	translateCacheTTL = 24 * time.Hour
)

// Translate converts text between languages via GhanaNLP. Identical
// source and target languages short-circuit without an upstream call.
// Results cache for 24 hours keyed by text and language pair.
func (s *Service) Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslationResult, error) {
	from := normalizeLanguage(req.FromLanguage)
	to := normalizeLanguage(req.ToLanguage)
	text := req.Text

	if from == to {
		return &models.TranslationResult{
			TranslatedText: text,
			SourceLanguage: from,
			TargetLanguage: to,
			Engine:         "none",
			Confidence:     1.0,
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	// The limit counts characters, not bytes: Twi and Ewe text is full of
	// multi-byte runes and a byte slice could split one mid-sequence.
	if utf8.RuneCountInString(text) > translateMaxChars {
		slog.Warn("Truncating translation input", "length", utf8.RuneCountInString(text), "max", translateMaxChars)
		text = string([]rune(text)[:translateMaxChars])
	}

	cacheKey := "translate:" + hashText(text, from, to)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return &models.TranslationResult{
			TranslatedText: cached,
			SourceLanguage: from,
			TargetLanguage: to,
			Engine:         "ghananlp",
			Confidence:     0.9,
			Timestamp:      time.Now().UTC(),
			Cached:         true,
		}, nil
	}

	translated, err := s.translateUpstream(ctx, text, from, to)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cacheKey, translated, translateCacheTTL)

	return &models.TranslationResult{
		TranslatedText: translated,
		SourceLanguage: from,
		TargetLanguage: to,
		Engine:         "ghananlp",
		Confidence:     0.9,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (s *Service) translateUpstream(ctx context.Context, text, from, to string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"in":   text,
		"lang": from + "-" + to,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode translation request: %w", err)
	}

	payload, err := s.client.post(ctx, "/v1/translate", nil, "application/json", body)
	if err != nil {
		return "", err
	}
	return parseTranslation(payload)
}

// parseTranslation decodes the upstream translation payload. The API has
// shipped three shapes over time: a bare JSON string, an object with a
// translationResponse field, and an object with an out field. Try each
// in that order.
func parseTranslation(payload []byte) (string, error) {
	var plain string
	if err := json.Unmarshal(payload, &plain); err == nil && strings.TrimSpace(plain) != "" {
		return plain, nil
	}

	var envelope struct {
		TranslationResponse string `json:"translationResponse"`
		Out                 string `json:"out"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if strings.TrimSpace(envelope.TranslationResponse) != "" {
			return envelope.TranslationResponse, nil
		}
		if strings.TrimSpace(envelope.Out) != "" {
			return envelope.Out, nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized translation payload: %s", ErrUpstreamUnavailable, truncateForLog(payload))
}
