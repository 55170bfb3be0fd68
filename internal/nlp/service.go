package nlp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the degrade-safe cache the provider caches results in.
// Satisfied by services.CacheStore.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Language codes used across the API. GhanaNLP and callers sometimes use
// full names; normalizeLanguage folds both onto the short codes.
var languageAliases = map[string]string{
	"english": "en",
	"twi":     "tw",
	"ewe":     "ee",
	"dagbani": "dag",
	"kikuyu":  "ki",
}

// LanguageInfo describes one supported conversation language.
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	TTS        bool   `json:"tts"`
}

var languageCatalog = []LanguageInfo{
	{Code: "en", Name: "English", NativeName: "English", TTS: false},
	{Code: "tw", Name: "Twi", NativeName: "Twi", TTS: true},
	{Code: "ee", Name: "Ewe", NativeName: "Eʋegbe", TTS: true},
	{Code: "dag", Name: "Dagbani", NativeName: "Dagbanli", TTS: false},
}

// Service is the GhanaNLP provider facade: translation, speech to text
// and text to speech, each with its own cache tier in front of the
// upstream.
type Service struct {
	client *Client
	cache  Cache
}

// NewService creates the NLP provider over a client and cache.
func NewService(client *Client, cache Cache) *Service {
	return &Service{client: client, cache: cache}
}

// Languages returns the conversation languages the API supports.
func (s *Service) Languages() []LanguageInfo {
	catalog := make([]LanguageInfo, len(languageCatalog))
	copy(catalog, languageCatalog)
	return catalog
}

// TestConnectivity exercises the upstream with a trivial translation. Used
// by the health endpoint.
func (s *Service) TestConnectivity(ctx context.Context) error {
	_, err := s.translateUpstream(ctx, "Hello", "en", "tw")
	return err
}

func normalizeLanguage(language string) string {
	lang := strings.ToLower(language)
	if code, ok := languageAliases[lang]; ok {
		return code
	}
	return lang
}

func hashText(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
