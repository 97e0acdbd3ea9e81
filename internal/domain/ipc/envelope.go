package ipc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// topicPattern constrains topics to the versioned form
// app.<vendor-id>.<channel>.v<major>, e.g. app.system-explorer.refresh.v1.
var topicPattern = regexp.MustCompile(`^app\.[a-z0-9][a-z0-9-]*\.[a-z0-9][a-z0-9-]*\.v[0-9]+$`)

// ValidTopic reports whether topic is well formed.
func ValidTopic(topic string) bool {
	return topicPattern.MatchString(topic)
}

// ErrInvalidTopic is returned for malformed topic names.
type ErrInvalidTopic struct {
	Topic string
}

func (e ErrInvalidTopic) Error() string {
	return fmt.Sprintf("invalid ipc topic %q", e.Topic)
}

// Envelope is a delivered topic event as seen by a subscriber window.
type Envelope struct {
	EventID        string          `json:"event_id"`
	Topic          string          `json:"topic"`
	SourceWindowID uint64          `json:"source_window_id"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	CorrelationID  string          `json:"correlation_id,omitempty"`
	ReplyTo        string          `json:"reply_to,omitempty"`
	PublishedAt    time.Time       `json:"published_at"`
}
