// Package authbus carries authentication-state notifications between the
// parts of the back office that care about them.
//
// Dispatch is synchronous: Publish returns only after every handler that was
// subscribed when it was called has run.
package authbus

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Kind int

const (
	KindSessionChanged Kind = iota + 1
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindSessionChanged:
		return "session_changed"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Event sources.
const (
	SourceLocal   = "local"   // a store write in this context
	SourceStorage = "storage" // a write made by another context
	SourceRefresh = "refresh" // an explicit re-evaluation request
	SourceAPI     = "api"
)

type Event struct {
	Kind    Kind
	Source  string
	Message string
	At      time.Time
}

type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	id uuid.UUID
}

type Publisher interface {
	Publish(Event)
}

type Subscriber interface {
	Subscribe(Handler) Subscription
	Unsubscribe(Subscription) bool
}

// EventBus is the full bus contract handed to collaborators.
type EventBus interface {
	Publisher
	Subscriber
	Refresh()
}

type subscriber struct {
	id      uuid.UUID
	handler Handler
}

type Bus struct {
	mu   sync.RWMutex
	subs []subscriber
	now  func() time.Time
}

var _ EventBus = (*Bus)(nil)

func New() *Bus {
	return &Bus{now: time.Now}
}

func (b *Bus) Subscribe(h Handler) Subscription {
	id := uuid.New()
	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, handler: h})
	b.mu.Unlock()
	return Subscription{id: id}
}

// Unsubscribe removes the handler. It reports false when the subscription
// was unknown or already removed.
func (b *Bus) Unsubscribe(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers e to a snapshot of the current subscribers in
// subscription order. Handlers may publish, subscribe or unsubscribe.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = b.now()
	}

	b.mu.RLock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	log.Debug().Str("kind", e.Kind.String()).Str("source", e.Source).Int("subscribers", len(snapshot)).Msg("Auth event")

	for _, sub := range snapshot {
		sub.handler(e)
	}
}

// SessionChanged announces that the persisted session may have changed.
func (b *Bus) SessionChanged(source string) {
	b.Publish(Event{Kind: KindSessionChanged, Source: source})
}

// Refresh asks every subscriber to re-evaluate the session now. Code outside
// the component tree calls it after writing tokens, since a context never
// receives storage events for its own writes.
func (b *Bus) Refresh() {
	b.SessionChanged(SourceRefresh)
}

// Forbidden announces a rejected API call. It does not change the session.
func (b *Bus) Forbidden(message string) {
	b.Publish(Event{Kind: KindForbidden, Source: SourceAPI, Message: message})
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }
