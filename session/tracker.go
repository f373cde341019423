package session

import (
	"context"
	"sort"
	"sync"

	"github.com/jzahidzamacona/Fronty-sub001/authbus"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/rs/zerolog/log"
)

// Tracker keeps the current user in sync with the persisted session. It
// re-evaluates once per bus signal and once per cross-context write to the
// access-token key.
type Tracker struct {
	store   *Store
	bus     authbus.Subscriber
	watcher storage.Watcher

	mu          sync.Mutex
	ctx         context.Context
	active      bool
	current     *User
	sub         authbus.Subscription
	stopWatch   func()
	observers   map[int]func(*User)
	nextObs     int
	evaluations int
}

// NewTracker creates an inactive tracker. Cross-context notifications are
// followed when the store's storage implements storage.Watcher.
func NewTracker(store *Store, bus authbus.Subscriber) *Tracker {
	t := &Tracker{
		store:     store,
		bus:       bus,
		observers: make(map[int]func(*User)),
	}
	if store != nil {
		if w, ok := store.Storage().(storage.Watcher); ok {
			t.watcher = w
		}
	}
	return t
}

// Activate evaluates the session once and starts following changes.
// Activating an active tracker does nothing.
func (t *Tracker) Activate(ctx context.Context) error {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return nil
	}
	t.ctx = ctx
	t.active = true
	t.mu.Unlock()

	t.reevaluate()

	var sub authbus.Subscription
	if t.bus != nil {
		sub = t.bus.Subscribe(t.handle)
	}

	stop := func() {}
	if t.watcher != nil && t.store != nil {
		var err error
		stop, err = authbus.BridgeStorage(ctx, authbus.PublisherFunc(t.handle), t.watcher, t.store.AccessKey())
		if err != nil {
			log.Warn().Err(err).Msg("Cross-context session updates unavailable")
			stop = func() {}
		}
	}

	t.mu.Lock()
	t.sub = sub
	t.stopWatch = stop
	t.mu.Unlock()
	return nil
}

// Deactivate stops following changes. No observer is called afterwards.
func (t *Tracker) Deactivate() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	sub, stop := t.sub, t.stopWatch
	t.stopWatch = nil
	t.mu.Unlock()

	if t.bus != nil {
		t.bus.Unsubscribe(sub)
	}
	if stop != nil {
		stop()
	}
}

// Current returns the last evaluated user, nil when logged out.
func (t *Tracker) Current() *User {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Evaluations returns how many times the session has been evaluated.
func (t *Tracker) Evaluations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.evaluations
}

// OnChange registers fn to run after an evaluation whose result differs
// from the previous one.
func (t *Tracker) OnChange(fn func(*User)) (remove func()) {
	t.mu.Lock()
	t.nextObs++
	id := t.nextObs
	t.observers[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) handle(e authbus.Event) {
	if e.Kind != authbus.KindSessionChanged {
		return
	}
	t.reevaluate()
}

func (t *Tracker) reevaluate() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	ctx := t.ctx
	t.mu.Unlock()

	var user *User
	if t.store != nil {
		user = t.store.CurrentUser(ctx)
	}

	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.evaluations++
	changed := !sameUser(t.current, user)
	t.current = user
	var observers []func(*User)
	if changed {
		ids := make([]int, 0, len(t.observers))
		for id := range t.observers {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			observers = append(observers, t.observers[id])
		}
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(user)
	}
}
