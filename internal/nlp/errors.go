package nlp

import "errors"

// Provider errors. Handlers map these onto HTTP statuses; enrichment
// paths (voice replies on chat answers) swallow them instead.
var (
	ErrUpstreamUnavailable = errors.New("nlp provider unavailable")
	ErrUnsupportedLanguage = errors.New("language not supported")
)
