package knowledge

import "strings"

// GeneralTopic is the fallback topic key when no legal topic scores above
// the match threshold.
const GeneralTopic = "general"

// matchThreshold is the minimum keyword-overlap score for a topic match.
const matchThreshold = 0.1

// detailTriggers switch the response from the basic to the detailed
// variant when any of them appears in the query.
var detailTriggers = []string{"explain", "detail", "step", "how", "what"}

// urgentKeywords mark a query as needing emergency contact information.
var urgentKeywords = []string{
	"emergency", "urgent", "arrest", "police", "help",
	"now", "immediately", "violence", "abuse",
}

// MatchResult is the outcome of scoring a query against the topic set.
type MatchResult struct {
	Topic           string   `json:"topic"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// Response is a generated legal answer.
type Response struct {
	Content         string   `json:"content"`
	Language        string   `json:"language"`
	LegalTopic      string   `json:"legalTopic"`
	Confidence      float64  `json:"confidence"`
	RelatedTopics   []string `json:"relatedTopics"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
}

// ResponseContext carries the session context fields the generator reads.
type ResponseContext struct {
	RequestDetail bool
}

// Match scores the query against every topic and returns the best match.
// The score for a topic is the fraction of its keywords contained in the
// lower-cased query. Ties keep the first topic in declaration order, so
// the result is deterministic for a given query and topic set. A best
// score below 0.1 yields the "general" fallback with confidence 0.1 and
// all topic keys as related topics.
func (r *Registry) Match(query string) MatchResult {
	lowerQuery := strings.ToLower(query)

	best := MatchResult{Topic: GeneralTopic}
	for _, topic := range r.topics {
		var matched []string
		for _, keyword := range topic.Keywords {
			if strings.Contains(lowerQuery, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
			}
		}
		score := float64(len(matched)) / float64(len(topic.Keywords))
		if score > best.Confidence {
			best = MatchResult{
				Topic:           topic.Key,
				Confidence:      score,
				MatchedKeywords: matched,
			}
		}
	}

	if best.Confidence < matchThreshold {
		return MatchResult{Topic: GeneralTopic, Confidence: matchThreshold}
	}
	return best
}

// GenerateResponse matches the query and builds the reply text for the
// requested language. Unknown languages fall back to English content but
// the requested language label is kept on the response.
func (r *Registry) GenerateResponse(query, language string, ctx ResponseContext) Response {
	lowerQuery := strings.ToLower(query)
	match := r.Match(query)

	if match.Topic == GeneralTopic {
		return Response{
			Content:       r.defaultResponse(language),
			Language:      language,
			LegalTopic:    GeneralTopic,
			Confidence:    match.Confidence,
			RelatedTopics: r.Topics(),
		}
	}

	topic, _ := r.Topic(match.Topic)
	responses, ok := topic.Responses[language]
	if !ok {
		responses = topic.Responses["en"]
	}

	content := responses.Basic
	if wantsDetail(lowerQuery, ctx) && responses.Detailed != "" {
		content = responses.Detailed
	}

	if isUrgentQuery(lowerQuery) {
		if contact := r.relevantEmergencyContact(lowerQuery, language); contact != "" {
			content += "\n\n" + r.urgentContactMessage(language) + ": " + contact
		}
	}

	return Response{
		Content:         content,
		Language:        language,
		LegalTopic:      match.Topic,
		Confidence:      match.Confidence,
		RelatedTopics:   topic.RelatedTopics,
		MatchedKeywords: match.MatchedKeywords,
	}
}

func wantsDetail(lowerQuery string, ctx ResponseContext) bool {
	if ctx.RequestDetail {
		return true
	}
	for _, trigger := range detailTriggers {
		if strings.Contains(lowerQuery, trigger) {
			return true
		}
	}
	return false
}

func isUrgentQuery(lowerQuery string) bool {
	for _, keyword := range urgentKeywords {
		if strings.Contains(lowerQuery, keyword) {
			return true
		}
	}
	return false
}

// relevantEmergencyContact picks the single most relevant contact line.
// Rules are evaluated in fixed priority order; only the first match wins.
func (r *Registry) relevantEmergencyContact(lowerQuery, language string) string {
	contacts := r.EmergencyContacts(language)
	if contacts == nil {
		return ""
	}
	switch {
	case strings.Contains(lowerQuery, "police") || strings.Contains(lowerQuery, "arrest"):
		return contacts["police"]
	case strings.Contains(lowerQuery, "ambulance") || strings.Contains(lowerQuery, "medical"):
		return contacts["ambulance"]
	case strings.Contains(lowerQuery, "fire"):
		return contacts["fire"]
	case strings.Contains(lowerQuery, "violence") || strings.Contains(lowerQuery, "abuse"):
		return contacts["domestic_violence"]
	case strings.Contains(lowerQuery, "rights"):
		return contacts["human_rights"]
	default:
		return contacts["legal_aid"]
	}
}
