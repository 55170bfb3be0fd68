// Package knowledge holds the legal knowledge base: a fixed set of topics
// with keyword triggers and canned multilingual responses, plus emergency
// contact information. The base is loaded once at startup and injected
// into consumers; it is never mutated afterwards.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/topics.json
var embeddedBase []byte

// ResponsePair is the basic/detailed response variant pair for one language.
type ResponsePair struct {
	Basic    string `json:"basic"`
	Detailed string `json:"detailed,omitempty"`
}

// Topic is one legal subject area.
type Topic struct {
	Key           string                  `json:"key"`
	Keywords      []string                `json:"keywords"`
	Responses     map[string]ResponsePair `json:"responses"`
	RelatedTopics []string                `json:"relatedTopics"`
}

// Registry is the immutable, process-wide knowledge base. Topics keep
// their declaration order; matching iterates the slice, never a map, so
// tie-breaking is deterministic.
type Registry struct {
	topics            []Topic
	topicIndex        map[string]int
	defaultResponses  map[string]string
	emergencyContacts map[string]map[string]string
	urgentMessages    map[string]string
}

type registryData struct {
	Topics                []Topic                      `json:"topics"`
	DefaultResponses      map[string]string            `json:"defaultResponses"`
	EmergencyContacts     map[string]map[string]string `json:"emergencyContacts"`
	UrgentContactMessages map[string]string            `json:"urgentContactMessages"`
}

// Load builds the default registry from the embedded knowledge base.
func Load() (*Registry, error) {
	return LoadFrom(embeddedBase)
}

// LoadFrom builds a registry from raw JSON. Exposed so tests can substitute
// a small topic set.
func LoadFrom(data []byte) (*Registry, error) {
	var raw registryData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if len(raw.Topics) == 0 {
		return nil, fmt.Errorf("knowledge base contains no topics")
	}

	r := &Registry{
		topics:            raw.Topics,
		topicIndex:        make(map[string]int, len(raw.Topics)),
		defaultResponses:  raw.DefaultResponses,
		emergencyContacts: raw.EmergencyContacts,
		urgentMessages:    raw.UrgentContactMessages,
	}
	for i, t := range raw.Topics {
		if t.Key == "" {
			return nil, fmt.Errorf("topic %d has no key", i)
		}
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("topic %q has no keywords", t.Key)
		}
		if _, ok := t.Responses["en"]; !ok {
			return nil, fmt.Errorf("topic %q has no English responses", t.Key)
		}
		if _, dup := r.topicIndex[t.Key]; dup {
			return nil, fmt.Errorf("duplicate topic key %q", t.Key)
		}
		r.topicIndex[t.Key] = i
	}
	return r, nil
}

// Topics returns all topic keys in declaration order.
func (r *Registry) Topics() []string {
	keys := make([]string, len(r.topics))
	for i, t := range r.topics {
		keys[i] = t.Key
	}
	return keys
}

// Topic returns the topic for a key.
func (r *Registry) Topic(key string) (Topic, bool) {
	i, ok := r.topicIndex[key]
	if !ok {
		return Topic{}, false
	}
	return r.topics[i], true
}

// RelatedTopics returns the fixed adjacency list for a topic key.
func (r *Registry) RelatedTopics(key string) []string {
	if i, ok := r.topicIndex[key]; ok {
		return r.topics[i].RelatedTopics
	}
	return nil
}

// EmergencyContacts returns the contact table for a language, falling back
// to English.
func (r *Registry) EmergencyContacts(language string) map[string]string {
	if contacts, ok := r.emergencyContacts[language]; ok {
		return contacts
	}
	return r.emergencyContacts["en"]
}

func (r *Registry) defaultResponse(language string) string {
	if resp, ok := r.defaultResponses[language]; ok {
		return resp
	}
	return r.defaultResponses["en"]
}

func (r *Registry) urgentContactMessage(language string) string {
	if msg, ok := r.urgentMessages[language]; ok {
		return msg
	}
	return r.urgentMessages["en"]
}
