// Package storage is the persisted key/value layer that holds the token pair
// and content-lock records.
//
// A [Storage] handle plays the role of one browsing context. Handles that
// share the same backing data also implement [Watcher], which reports writes
// made through any other handle; a handle never sees its own writes.
package storage

import (
	"context"

	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
)

var ErrUnavailable = apperrors.ErrStorageUnavailable

// Storage is a string key/value store.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// SetMany stores every entry. Readers observe either none or all of them.
	SetMany(ctx context.Context, entries map[string]string) error

	// Remove deletes keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// Event describes a change made through another handle.
type Event struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Removed bool   `json:"removed,omitempty"`
	Source  string `json:"source"`
}

// Watcher is implemented by backends that can report cross-context writes.
type Watcher interface {
	// Watch calls fn for every change made through another handle until
	// the returned stop function is called.
	Watch(ctx context.Context, fn func(Event)) (stop func(), err error)
}
