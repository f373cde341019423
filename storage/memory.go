package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Origin is shared in-memory data. Each handle returned by Context behaves
// like a separate browser tab on the same origin.
type Origin struct {
	mu       sync.RWMutex
	data     map[string]string
	contexts []*Memory
}

// Memory is one handle onto an Origin.
type Memory struct {
	origin *Origin
	source string

	mu       sync.RWMutex
	watchers map[uint64]func(Event)
	nextID   uint64
}

var (
	_ Storage = (*Memory)(nil)
	_ Watcher = (*Memory)(nil)
)

// NewOrigin creates empty shared data.
func NewOrigin() *Origin {
	return &Origin{data: make(map[string]string)}
}

// NewMemory returns a handle onto a fresh, private origin.
func NewMemory() *Memory {
	return NewOrigin().Context()
}

// Context opens a new handle onto the origin.
func (o *Origin) Context() *Memory {
	m := &Memory{
		origin:   o,
		source:   uuid.NewString(),
		watchers: make(map[uint64]func(Event)),
	}
	o.mu.Lock()
	o.contexts = append(o.contexts, m)
	o.mu.Unlock()
	return m
}

// Keys returns the stored keys in sorted order.
func (o *Origin) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.origin.mu.RLock()
	defer m.origin.mu.RUnlock()
	value, ok := m.origin.data[key]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.SetMany(ctx, map[string]string{key: value})
}

func (m *Memory) SetMany(_ context.Context, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m.origin.mu.Lock()
	events := make([]Event, 0, len(entries))
	for _, k := range keys {
		old, existed := m.origin.data[k]
		m.origin.data[k] = entries[k]
		if !existed || old != entries[k] {
			events = append(events, Event{Key: k, Value: entries[k], Source: m.source})
		}
	}
	others := m.othersLocked()
	m.origin.mu.Unlock()

	broadcast(others, events)
	return nil
}

func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.origin.mu.Lock()
	events := make([]Event, 0, len(keys))
	for _, k := range keys {
		if _, ok := m.origin.data[k]; !ok {
			continue
		}
		delete(m.origin.data, k)
		events = append(events, Event{Key: k, Removed: true, Source: m.source})
	}
	others := m.othersLocked()
	m.origin.mu.Unlock()

	broadcast(others, events)
	return nil
}

// Watch implements Watcher. It never fails.
func (m *Memory) Watch(_ context.Context, fn func(Event)) (func(), error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.watchers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) othersLocked() []*Memory {
	others := make([]*Memory, 0, len(m.origin.contexts))
	for _, c := range m.origin.contexts {
		if c != m {
			others = append(others, c)
		}
	}
	return others
}

func (m *Memory) notify(events []Event) {
	m.mu.RLock()
	ids := make([]uint64, 0, len(m.watchers))
	for id := range m.watchers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.watchers[id])
	}
	m.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func broadcast(contexts []*Memory, events []Event) {
	if len(events) == 0 {
		return
	}
	for _, c := range contexts {
		c.notify(events)
	}
}
