package models

import "time"

// TranslationResult is the normalized output of a translation call,
// regardless of which envelope shape the provider answered with.
type TranslationResult struct {
	TranslatedText string    `json:"translatedText"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	Engine         string    `json:"engine"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
	Cached         bool      `json:"cached,omitempty"`
}

// TranscriptionResult is the output of a speech-to-text call.
type TranscriptionResult struct {
	Text           string    `json:"text"`
	Language       string    `json:"language"`       // provider language code used
	SourceLanguage string    `json:"sourceLanguage"` // caller's original code
	Engine         string    `json:"engine"`
	Timestamp      time.Time `json:"timestamp"`
	Cached         bool      `json:"cached,omitempty"`
}

// SynthesisResult is the output of a text-to-speech call. AudioData is
// base64-encoded WAV.
type SynthesisResult struct {
	AudioData   string    `json:"audioData"`
	AudioFormat string    `json:"audioFormat"`
	Language    string    `json:"language"`
	SpeakerID   string    `json:"speakerId"`
	Timestamp   time.Time `json:"timestamp"`
	Cached      bool      `json:"cached,omitempty"`
}

// TranslateRequest is the request body for the direct translation endpoint
type TranslateRequest struct {
	Text         string `json:"text"`
	FromLanguage string `json:"fromLanguage"`
	ToLanguage   string `json:"toLanguage"`
}

// SynthesizeRequest is the request body for the direct TTS endpoint
type SynthesizeRequest struct {
	Text      string `json:"text"`
	Language  string `json:"language"`
	SpeakerID string `json:"speakerId,omitempty"`
}
