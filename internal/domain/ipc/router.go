package ipc

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/retrodesk/desktopd/internal/shared/id"
)

// MaxInboxEvents caps undelivered events per window. When an inbox is full
// the oldest event is dropped and the drop counter increments.
const MaxInboxEvents = 256

// PublishInput describes an event to fan out to a topic's subscribers.
type PublishInput struct {
	Topic          string
	SourceWindowID uint64
	Payload        json.RawMessage
	CorrelationID  string
	ReplyTo        string
}

type inbox struct {
	events  []Envelope
	dropped uint64
}

// Router fans topic events out to subscriber windows. A window's inbox
// survives suspension so the app can catch up on resume; closing the window
// discards it.
type Router struct {
	mu      sync.RWMutex
	topics  map[string]map[uint64]struct{}
	inboxes map[uint64]*inbox
	now     func() time.Time
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		topics:  make(map[string]map[uint64]struct{}),
		inboxes: make(map[uint64]*inbox),
		now:     time.Now,
	}
}

// Subscribe adds windowID to a topic. Subscribing twice is a no-op.
func (r *Router) Subscribe(windowID uint64, topic string) error {
	if !ValidTopic(topic) {
		return ErrInvalidTopic{Topic: topic}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[uint64]struct{})
		r.topics[topic] = subs
	}
	subs[windowID] = struct{}{}
	return nil
}

// Unsubscribe removes windowID from a topic. Unsubscribing a window that
// never subscribed is a no-op.
func (r *Router) Unsubscribe(windowID uint64, topic string) error {
	if !ValidTopic(topic) {
		return ErrInvalidTopic{Topic: topic}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs, ok := r.topics[topic]; ok {
		delete(subs, windowID)
		if len(subs) == 0 {
			delete(r.topics, topic)
		}
	}
	return nil
}

// Delivery pairs a published envelope with the subscriber window that
// received it.
type Delivery struct {
	WindowID uint64
	Event    Envelope
}

// Publish delivers an event to every subscriber of the topic, including the
// publisher itself when subscribed. Returns the per-window deliveries so
// the caller can push them to live connections. Publishing to a topic with
// no subscribers is a no-op.
func (r *Router) Publish(in PublishInput) ([]Delivery, error) {
	if !ValidTopic(in.Topic) {
		return nil, ErrInvalidTopic{Topic: in.Topic}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	subs, ok := r.topics[in.Topic]
	if !ok || len(subs) == 0 {
		return nil, nil
	}

	event := Envelope{
		EventID:        id.Default().New(),
		Topic:          in.Topic,
		SourceWindowID: in.SourceWindowID,
		Payload:        in.Payload,
		CorrelationID:  in.CorrelationID,
		ReplyTo:        in.ReplyTo,
		PublishedAt:    r.now(),
	}

	deliveries := make([]Delivery, 0, len(subs))
	for windowID := range subs {
		box, ok := r.inboxes[windowID]
		if !ok {
			box = &inbox{}
			r.inboxes[windowID] = box
		}
		if len(box.events) >= MaxInboxEvents {
			overflow := len(box.events) - MaxInboxEvents + 1
			box.events = box.events[overflow:]
			box.dropped += uint64(overflow)
		}
		box.events = append(box.events, event)
		deliveries = append(deliveries, Delivery{WindowID: windowID, Event: event})
	}
	return deliveries, nil
}

// Drain removes and returns all pending events for a window, oldest first.
func (r *Router) Drain(windowID uint64) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	box, ok := r.inboxes[windowID]
	if !ok || len(box.events) == 0 {
		return nil
	}
	events := box.events
	box.events = nil
	return events
}

// Dropped returns how many events have been evicted from a window's inbox.
func (r *Router) Dropped(windowID uint64) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if box, ok := r.inboxes[windowID]; ok {
		return box.dropped
	}
	return 0
}

// Pending returns the number of undelivered events for a window.
func (r *Router) Pending(windowID uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if box, ok := r.inboxes[windowID]; ok {
		return len(box.events)
	}
	return 0
}

// RemoveWindow drops a closed window's subscriptions and inbox.
func (r *Router) RemoveWindow(windowID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for topic, subs := range r.topics {
		delete(subs, windowID)
		if len(subs) == 0 {
			delete(r.topics, topic)
		}
	}
	delete(r.inboxes, windowID)
}

// Subscribers returns the windows currently subscribed to topic.
func (r *Router) Subscribers(topic string) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs, ok := r.topics[topic]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(subs))
	for windowID := range subs {
		out = append(out, windowID)
	}
	return out
}
