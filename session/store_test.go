package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/authbus"
	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/jzahidzamacona/Fronty-sub001/token"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	storage *storage.Memory
	bus     *authbus.Bus
	clock   *clock.Mock
	store   *session.Store
	events  []authbus.Event
	navs    int
}

func newFixture(t *testing.T, st *storage.Memory) *fixture {
	t.Helper()
	if st == nil {
		st = storage.NewMemory()
	}
	f := &fixture{storage: st, bus: authbus.New(), clock: clock.NewMock(testNow)}
	f.bus.Subscribe(func(e authbus.Event) { f.events = append(f.events, e) })
	f.store = session.NewStore(st, f.bus,
		session.WithClock(f.clock),
		session.WithNavigator(session.NavigatorFunc(func() { f.navs++ })),
	)
	return f
}

func mint(t *testing.T, claims map[string]any) string {
	t.Helper()
	raw, err := token.Encode(claims)
	require.NoError(t, err)
	return raw
}

func validPair(t *testing.T, claims map[string]any) session.Pair {
	return session.Pair{AccessToken: mint(t, claims), RefreshToken: "refresh-1"}
}

func TestStore_SetTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	t.Run("writes both and publishes", func(t *testing.T) {
		require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{"sub": "ana"})))
		pair, ok := f.store.Tokens(ctx)
		require.True(t, ok)
		require.Equal(t, "refresh-1", pair.RefreshToken)
		require.Len(t, f.events, 1)
		require.Equal(t, authbus.SourceLocal, f.events[0].Source)
	})

	t.Run("rejects half a pair", func(t *testing.T) {
		err := f.store.SetTokens(ctx, session.Pair{AccessToken: "a"})
		require.ErrorIs(t, err, session.ErrInvalidPair)
		require.Len(t, f.events, 1)
	})
}

func TestStore_ClearTokensIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{"sub": "ana"})))

	require.NoError(t, f.store.ClearTokens(ctx))
	require.NoError(t, f.store.ClearTokens(ctx))

	_, ok := f.store.Tokens(ctx)
	require.False(t, ok)
	require.Nil(t, f.store.CurrentUser(ctx))
	require.Len(t, f.events, 3)
}

func TestStore_CurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		f := newFixture(t, nil)
		require.Nil(t, f.store.CurrentUser(ctx))
		require.Empty(t, f.events)
	})

	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t, nil)
		exp := testNow.Add(time.Hour).Unix()
		require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{
			"sub":         "ana@joyeria.mx",
			"username":    "Ana Pérez",
			"authorities": []any{"ROLE_ADMIN", map[string]any{"authority": "ROLE_EMPLEADO"}},
			"employeeId":  7,
			"exp":         exp,
		})))

		user := f.store.CurrentUser(ctx)
		require.NotNil(t, user)
		require.Equal(t, "Ana Pérez", user.Username)
		require.Equal(t, token.RoleSet{"ADMIN", "EMPLEADO"}, user.Roles)
		require.Equal(t, int64(7), *user.EmployeeID)
		require.Equal(t, exp, user.ExpiresAt.Unix())
		require.True(t, user.HasRole("role_admin"))
	})

	t.Run("username falls back to subject then default", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{"sub": "ana"})))
		require.Equal(t, "ana", f.store.CurrentUser(ctx).Username)

		require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{"roles": []any{"ADMIN"}})))
		require.Equal(t, session.DefaultDefaultUsername, f.store.CurrentUser(ctx).Username)

		custom := session.NewStore(f.storage, nil, session.WithDefaultUsername("cajero"), session.WithClock(f.clock))
		require.Equal(t, "cajero", custom.CurrentUser(ctx).Username)
	})

	t.Run("expired token self-heals", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{
			"sub": "ana",
			"exp": testNow.Unix(),
		})))
		f.events = nil

		require.Nil(t, f.store.CurrentUser(ctx))
		_, ok, _ := f.storage.Get(ctx, session.DefaultAccessKey)
		require.False(t, ok)
		_, ok, _ = f.storage.Get(ctx, session.DefaultRefreshKey)
		require.False(t, ok)
		require.Len(t, f.events, 1)
	})

	t.Run("corrupt token self-heals", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.store.SetTokens(ctx, session.Pair{AccessToken: "garbage", RefreshToken: "r"}))
		require.Nil(t, f.store.CurrentUser(ctx))
		_, ok := f.store.Tokens(ctx)
		require.False(t, ok)
	})

	t.Run("partial pair is absent and cleared", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.storage.Set(ctx, session.DefaultAccessKey, mint(t, map[string]any{"sub": "ana"})))
		require.Nil(t, f.store.CurrentUser(ctx))
		_, ok, _ := f.storage.Get(ctx, session.DefaultAccessKey)
		require.False(t, ok)
	})

	t.Run("no storage", func(t *testing.T) {
		store := session.NewStore(nil, nil)
		require.Nil(t, store.CurrentUser(ctx))
		require.NoError(t, store.ClearTokens(ctx))
		require.ErrorIs(t, store.SetTokens(ctx, session.Pair{AccessToken: "a", RefreshToken: "r"}), storage.ErrUnavailable)
	})
}

func TestStore_CustomKeys(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	store := session.NewStore(st, nil, session.WithKeys("jwt", "jwt_refresh"))
	require.NoError(t, store.SetTokens(ctx, session.Pair{AccessToken: "a", RefreshToken: "r"}))

	v, ok, _ := st.Get(ctx, "jwt_refresh")
	require.True(t, ok)
	require.Equal(t, "r", v)
	require.Equal(t, "jwt", store.AccessKey())
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.store.SetTokens(ctx, validPair(t, map[string]any{"sub": "ana"})))
	f.events = nil

	f.store.Logout(ctx)

	_, ok := f.store.Tokens(ctx)
	require.False(t, ok)
	require.Equal(t, 1, f.navs)
	require.NotEmpty(t, f.events)
	for _, e := range f.events {
		require.Equal(t, authbus.KindSessionChanged, e.Kind)
	}
}
