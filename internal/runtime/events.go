package runtime

import (
	"encoding/json"
	"sync"
)

// Event types pushed to live shell connections.
const (
	EventLifecycle  = "lifecycle"
	EventAppEvent   = "app_event"
	EventFocusInput = "focus_input"
	EventNotice     = "notice"
	EventSound      = "sound"
	EventOpenURL    = "open_url"
	EventState      = "state_changed"
)

// Event is a runtime occurrence streamed to connected shells.
type Event struct {
	Type           string          `json:"type"`
	WindowID       uint64          `json:"window_id,omitempty"`
	Lifecycle      string          `json:"lifecycle,omitempty"`
	Topic          string          `json:"topic,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	SourceWindowID uint64          `json:"source_window_id,omitempty"`
	CorrelationID  string          `json:"correlation_id,omitempty"`
	ReplyTo        string          `json:"reply_to,omitempty"`
	Title          string          `json:"title,omitempty"`
	Body           string          `json:"body,omitempty"`
	Sound          string          `json:"sound,omitempty"`
	URL            string          `json:"url,omitempty"`
}

const subscriberBuffer = 128

// Broadcaster fans runtime events out to subscribers. Slow subscribers
// lose events rather than stalling the runtime loop.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan Event
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function must
// be called when the subscriber goes away.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[token] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[token]; ok {
			delete(b.subs, token)
			close(existing)
		}
	}
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Len returns the current subscriber count.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
