package nlp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/models"
)

const (
	ttsCacheTTL      = 24 * time.Hour
	metadataCacheTTL = 6 * time.Hour
)

// defaultSpeakers maps each synthesizable language to its default voice.
var defaultSpeakers = map[string]string{
	"tw": "twi_speaker_4",
	"ki": "kikuyu_speaker_1",
	"ee": "ewe_speaker_3",
}

// speakerRoster lists every published voice per language.
var speakerRoster = map[string][]string{
	"tw": {"twi_speaker_4", "twi_speaker_5", "twi_speaker_6", "twi_speaker_7", "twi_speaker_8", "twi_speaker_9"},
	"ki": {"kikuyu_speaker_1", "kikuyu_speaker_5"},
	"ee": {"ewe_speaker_3", "ewe_speaker_4"},
}

// SupportsLanguage reports whether speech synthesis is available for the
// language.
func (s *Service) SupportsLanguage(language string) bool {
	_, ok := defaultSpeakers[normalizeLanguage(language)]
	return ok
}

// Synthesize converts text to spoken audio. The upstream answers with raw
// WAV bytes, returned base64-encoded. Audio caches for 24 hours keyed by
// language, speaker and text hash.
func (s *Service) Synthesize(ctx context.Context, req models.SynthesizeRequest) (*models.SynthesisResult, error) {
	lang := normalizeLanguage(req.Language)
	if _, ok := defaultSpeakers[lang]; !ok {
		return nil, ErrUnsupportedLanguage
	}
	speaker := req.SpeakerID
	if speaker == "" {
		speaker = defaultSpeakers[lang]
	}

	cacheKey := "tts_v1:" + lang + ":" + speaker + ":" + hashText(req.Text)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return &models.SynthesisResult{
			AudioData:   cached,
			AudioFormat: "wav",
			Language:    lang,
			SpeakerID:   speaker,
			Timestamp:   time.Now().UTC(),
			Cached:      true,
		}, nil
	}

	body, err := json.Marshal(map[string]string{
		"text":       req.Text,
		"language":   lang,
		"speaker_id": speaker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	payload, err := s.client.post(ctx, "/tts/v1/tts", nil, "application/json", body)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	s.cache.Set(ctx, cacheKey, encoded, ttsCacheTTL)

	return &models.SynthesisResult{
		AudioData:   encoded,
		AudioFormat: "wav",
		Language:    lang,
		SpeakerID:   speaker,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// SpeakerCatalog lists available voices per language.
type SpeakerCatalog struct {
	Languages map[string][]string `json:"languages"`
	Default   map[string]string   `json:"default"`
}

// Speakers returns the available synthesis voices. The upstream catalog
// is cached for six hours; when it is unreachable the static defaults
// still answer.
func (s *Service) Speakers(ctx context.Context) (*SpeakerCatalog, error) {
	const cacheKey = "tts_v1:meta:speakers"

	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var catalog SpeakerCatalog
		if err := json.Unmarshal([]byte(cached), &catalog); err == nil {
			return &catalog, nil
		}
		s.cache.Delete(ctx, cacheKey)
	}

	catalog := &SpeakerCatalog{
		Languages: map[string][]string{},
		Default:   map[string]string{},
	}
	for lang, speaker := range defaultSpeakers {
		catalog.Default[lang] = speaker
		catalog.Languages[lang] = append([]string(nil), speakerRoster[lang]...)
	}

	payload, err := s.client.get(ctx, "/tts/v1/speakers", nil)
	if err == nil {
		var upstream map[string][]string
		if json.Unmarshal(payload, &upstream) == nil && len(upstream) > 0 {
			for lang, voices := range upstream {
				catalog.Languages[normalizeLanguage(lang)] = voices
			}
		}
	}

	if data, err := json.Marshal(catalog); err == nil {
		s.cache.Set(ctx, cacheKey, string(data), metadataCacheTTL)
	}
	return catalog, nil
}
