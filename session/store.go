package session

import (
	"context"

	"github.com/jzahidzamacona/Fronty-sub001/authbus"
	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/jzahidzamacona/Fronty-sub001/token"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAccessKey       = "accessToken"
	DefaultRefreshKey      = "refreshToken"
	DefaultDefaultUsername = "usuario"
)

var ErrInvalidPair = apperrors.ErrInvalidPair

// Navigator performs the full navigation to the login entry point.
type Navigator interface {
	NavigateToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) NavigateToLogin() { f() }

// Store is the process-wide authentication state for one context.
type Store struct {
	storage         storage.Storage
	bus             authbus.Publisher
	navigator       Navigator
	clock           clock.Clock
	accessKey       string
	refreshKey      string
	defaultUsername string
}

type Option func(*Store)

// WithKeys overrides the persisted key names.
func WithKeys(access, refresh string) Option {
	return func(s *Store) {
		if access != "" {
			s.accessKey = access
		}
		if refresh != "" {
			s.refreshKey = refresh
		}
	}
}

func WithDefaultUsername(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.defaultUsername = name
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.navigator = n }
}

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore creates a store over st. A nil storage behaves as permanently
// empty, and a nil bus publishes nothing.
func NewStore(st storage.Storage, bus authbus.Publisher, opts ...Option) *Store {
	s := &Store{
		storage:         st,
		bus:             bus,
		clock:           clock.New(),
		accessKey:       DefaultAccessKey,
		refreshKey:      DefaultRefreshKey,
		defaultUsername: DefaultDefaultUsername,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccessKey is the persisted key of the access token.
func (s *Store) AccessKey() string { return s.accessKey }

// Storage returns the underlying storage handle.
func (s *Store) Storage() storage.Storage { return s.storage }

// SetTokens persists both tokens in one write and announces the change.
func (s *Store) SetTokens(ctx context.Context, pair Pair) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return ErrInvalidPair
	}
	if s.storage == nil {
		return storage.ErrUnavailable
	}
	if err := s.storage.SetMany(ctx, map[string]string{
		s.accessKey:  pair.AccessToken,
		s.refreshKey: pair.RefreshToken,
	}); err != nil {
		return apperrors.Wrapf(err, "storing token pair")
	}
	s.publish()
	return nil
}

// ClearTokens removes both tokens and announces the change. Clearing an
// absent session is not an error.
func (s *Store) ClearTokens(ctx context.Context) error {
	if s.storage != nil {
		if err := s.storage.Remove(ctx, s.accessKey, s.refreshKey); err != nil {
			return apperrors.Wrapf(err, "clearing token pair")
		}
	}
	s.publish()
	return nil
}

// Tokens returns the persisted pair when both members are present.
func (s *Store) Tokens(ctx context.Context) (Pair, bool) {
	if s.storage == nil {
		return Pair{}, false
	}
	access, okAccess, err := s.storage.Get(ctx, s.accessKey)
	if err != nil {
		log.Warn().Err(err).Msg("Reading access token")
		return Pair{}, false
	}
	refresh, okRefresh, err := s.storage.Get(ctx, s.refreshKey)
	if err != nil {
		log.Warn().Err(err).Msg("Reading refresh token")
		return Pair{}, false
	}
	if !okAccess || !okRefresh || access == "" || refresh == "" {
		return Pair{}, false
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, true
}

// CurrentUser decodes the persisted access token. A partial pair, a token
// that does not decode, and an expired token all clear the pair and report
// no user. Nothing is returned as an error.
func (s *Store) CurrentUser(ctx context.Context) *User {
	if s == nil || s.storage == nil {
		return nil
	}

	pair, ok := s.Tokens(ctx)
	if !ok {
		if s.hasAny(ctx) {
			log.Debug().Msg("Partial token pair, clearing")
			s.heal(ctx)
		}
		return nil
	}

	claims, err := token.Decode(pair.AccessToken)
	if err != nil {
		log.Debug().Err(err).Msg("Undecodable access token, clearing")
		s.heal(ctx)
		return nil
	}
	if token.IsExpired(claims, s.clock.Now()) {
		log.Debug().Err(apperrors.ErrExpired).Int64("expMillis", *claims.ExpiresAtMillis).Msg("Access token expired, clearing")
		s.heal(ctx)
		return nil
	}

	return newUser(claims, s.defaultUsername)
}

// Logout clears the pair, announces it and navigates to the login entry.
func (s *Store) Logout(ctx context.Context) {
	if err := s.ClearTokens(ctx); err != nil {
		log.Warn().Err(err).Msg("Logout could not clear tokens")
	}
	s.publish()
	log.Info().Msg("Logged out")
	if s.navigator != nil {
		s.navigator.NavigateToLogin()
	}
}

func (s *Store) hasAny(ctx context.Context) bool {
	for _, key := range []string{s.accessKey, s.refreshKey} {
		if _, ok, err := s.storage.Get(ctx, key); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Store) heal(ctx context.Context) {
	if err := s.ClearTokens(ctx); err != nil {
		log.Warn().Err(err).Msg("Self-healing clear failed")
	}
}

func (s *Store) publish() {
	if s.bus != nil {
		s.bus.Publish(authbus.Event{Kind: authbus.KindSessionChanged, Source: authbus.SourceLocal})
	}
}
