// Package contentlock guards a section behind an optional password. An
// unlock may be remembered in storage for a number of hours, scoped by a
// caller-supplied key.
//
// A lock configured without a password opens on any unlock request. That is
// intended for sections that only need an acknowledgment; set a password
// where access must actually be restricted.
package contentlock

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

var ErrLockMismatch = apperrors.ErrLockMismatch

type Config struct {
	StorageKey           string
	Title                string
	Password             string
	RememberHours        float64
	AutoLockOnDeactivate bool
}

// record is the persisted unlock, expiry in unix milliseconds.
type record struct {
	ExpiresAt int64 `json:"expiresAt"`
}

type Option func(*Lock)

func WithClock(c clock.Clock) Option {
	return func(l *Lock) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithCost sets the bcrypt cost used to hash the configured password.
func WithCost(cost int) Option {
	return func(l *Lock) { l.cost = cost }
}

type Lock struct {
	storage storage.Storage
	cfg     Config
	clock   clock.Clock
	cost    int
	hash    []byte

	passwordLen int

	mu       sync.Mutex
	unlocked bool
}

// New builds a locked Lock. The configured password is hashed once here.
func New(st storage.Storage, cfg Config, opts ...Option) (*Lock, error) {
	if cfg.StorageKey == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "content lock %q needs a storage key", cfg.Title)
	}
	if cfg.RememberHours < 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "remember hours must not be negative, got %v", cfg.RememberHours)
	}
	if len(cfg.Password) > maxPasswordBytes {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "lock password longer than %d bytes", maxPasswordBytes)
	}

	l := &Lock{
		storage: st,
		cfg:     cfg,
		clock:   clock.New(),
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(l)
	}

	if cfg.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), l.cost)
		if err != nil {
			return nil, apperrors.Wrapf(err, "hashing lock password")
		}
		l.hash = hash
		l.passwordLen = len(cfg.Password)
	}
	return l, nil
}

// Title is the heading shown on the lock screen.
func (l *Lock) Title() string { return l.cfg.Title }

// RequiresPassword reports whether a password was configured.
func (l *Lock) RequiresPassword() bool { return l.hash != nil }

// Activate restores a remembered unlock that is still valid and removes
// one that has expired or cannot be read.
func (l *Lock) Activate(ctx context.Context) {
	if l.storage == nil {
		return
	}
	raw, ok, err := l.storage.Get(ctx, l.cfg.StorageKey)
	if err != nil {
		log.Warn().Err(err).Str("key", l.cfg.StorageKey).Msg("Reading unlock record")
		return
	}
	if !ok {
		return
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err == nil && rec.ExpiresAt > l.clock.Now().UnixMilli() {
		l.mu.Lock()
		l.unlocked = true
		l.mu.Unlock()
		log.Debug().Str("key", l.cfg.StorageKey).Int64("expiresAt", rec.ExpiresAt).Msg("Unlock restored")
		return
	}

	l.removeRecord(ctx)
}

// CanSubmit reports whether the unlock action is enabled for entered.
func (l *Lock) CanSubmit(entered string) bool {
	return !l.RequiresPassword() || entered != ""
}

// Unlock opens the lock when entered matches the configured password, or
// unconditionally when none is configured. There is no attempt limit.
func (l *Lock) Unlock(ctx context.Context, entered string) error {
	if l.hash != nil {
		// bcrypt ignores input past 72 bytes, so a longer entry sharing the
		// prefix would otherwise match
		if len(entered) != l.passwordLen {
			return ErrLockMismatch
		}
		if err := bcrypt.CompareHashAndPassword(l.hash, []byte(entered)); err != nil {
			return ErrLockMismatch
		}
	}

	l.mu.Lock()
	l.unlocked = true
	l.mu.Unlock()

	if l.cfg.RememberHours > 0 && l.storage != nil {
		remember := time.Duration(l.cfg.RememberHours * float64(time.Hour))
		rec := record{ExpiresAt: l.clock.Now().Add(remember).UnixMilli()}
		data, err := json.Marshal(rec)
		if err != nil {
			return apperrors.Wrapf(err, "encoding unlock record")
		}
		if err := l.storage.Set(ctx, l.cfg.StorageKey, string(data)); err != nil {
			log.Warn().Err(err).Str("key", l.cfg.StorageKey).Msg("Unlock not remembered")
		}
	}
	log.Debug().Str("key", l.cfg.StorageKey).Msg("Content unlocked")
	return nil
}

// Unlocked reports the current state.
func (l *Lock) Unlocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlocked
}

// Lock closes the lock and forgets any remembered unlock.
func (l *Lock) Lock(ctx context.Context) {
	l.mu.Lock()
	l.unlocked = false
	l.mu.Unlock()
	l.removeRecord(ctx)
}

// Deactivate forgets the remembered unlock when AutoLockOnDeactivate is set.
func (l *Lock) Deactivate(ctx context.Context) {
	if !l.cfg.AutoLockOnDeactivate {
		return
	}
	l.Lock(ctx)
}

func (l *Lock) removeRecord(ctx context.Context) {
	if l.storage == nil {
		return
	}
	if err := l.storage.Remove(ctx, l.cfg.StorageKey); err != nil {
		log.Warn().Err(err).Str("key", l.cfg.StorageKey).Msg("Removing unlock record")
	}
}
