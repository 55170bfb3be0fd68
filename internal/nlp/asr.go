package nlp

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

const asrCacheTTL = time.Hour

// asrLanguages are the codes GhanaNLP's speech recognition accepts.
var asrLanguages = map[string]bool{
	"tw":  true,
	"gaa": true,
	"dag": true,
	"yo":  true,
	"ee":  true,
	"ki":  true,
	"ha":  true,
}

// Transcribe converts spoken audio to text. The upstream takes raw audio
// bytes tagged with the caller's MIME type and answers with plain text.
// Transcripts cache for an hour keyed by language and audio hash, so
// replayed uploads skip the upstream.
func (s *Service) Transcribe(ctx context.Context, audio []byte, language, mimeType string) (*models.TranscriptionResult, error) {
	lang := normalizeLanguage(language)
	if !asrLanguages[lang] {
		return nil, ErrUnsupportedLanguage
	}
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	cacheKey := "asr_v2:" + lang + ":" + hashBytes(audio)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return &models.TranscriptionResult{
			Text:           cached,
			Language:       lang,
			SourceLanguage: lang,
			Engine:         "ghananlp",
			Timestamp:      time.Now().UTC(),
			Cached:         true,
		}, nil
	}

	query := url.Values{}
	query.Set("language", lang)
	payload, err := s.client.post(ctx, "/asr/v2/transcribe", query, mimeType, audio)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(strings.Trim(string(payload), `"`))
	s.cache.Set(ctx, cacheKey, text, asrCacheTTL)

	return &models.TranscriptionResult{
		Text:           text,
		Language:       lang,
		SourceLanguage: lang,
		Engine:         "ghananlp",
		Timestamp:      time.Now().UTC(),
	}, nil
}
