package contentlock_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/contentlock"
	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLock(t *testing.T, st storage.Storage, mock *clock.Mock, cfg contentlock.Config) *contentlock.Lock {
	t.Helper()
	l, err := contentlock.New(st, cfg, contentlock.WithClock(mock), contentlock.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	return l
}

func TestLock_RememberedUnlockExpires(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	mock := clock.NewMock(time.UnixMilli(0))
	cfg := contentlock.Config{StorageKey: "k1", Title: "Caja", Password: "s3cret", RememberHours: 1}

	l := newLock(t, st, mock, cfg)
	l.Activate(ctx)
	require.False(t, l.Unlocked())
	require.NoError(t, l.Unlock(ctx, "s3cret"))

	raw, ok, err := st.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"expiresAt":3600000}`, raw)

	mock.Set(time.UnixMilli(3000000))
	again := newLock(t, st, mock, cfg)
	again.Activate(ctx)
	require.True(t, again.Unlocked())

	mock.Set(time.UnixMilli(3700000))
	later := newLock(t, st, mock, cfg)
	later.Activate(ctx)
	require.False(t, later.Unlocked())
	_, ok, _ = st.Get(ctx, "k1")
	require.False(t, ok)
}

func TestLock_Password(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.UnixMilli(0))

	t.Run("mismatch stays locked", func(t *testing.T) {
		l := newLock(t, storage.NewMemory(), mock, contentlock.Config{StorageKey: "k", Password: "s3cret"})
		err := l.Unlock(ctx, "S3CRET")
		require.ErrorIs(t, err, contentlock.ErrLockMismatch)
		require.False(t, l.Unlocked())
		require.NoError(t, l.Unlock(ctx, "s3cret"))
		require.True(t, l.Unlocked())
	})

	t.Run("entry must match exactly at the bcrypt limit", func(t *testing.T) {
		password := strings.Repeat("a", 72)
		l := newLock(t, storage.NewMemory(), mock, contentlock.Config{StorageKey: "k", Password: password})

		err := l.Unlock(ctx, password+"extra")
		require.ErrorIs(t, err, contentlock.ErrLockMismatch)
		require.ErrorIs(t, l.Unlock(ctx, password[:71]), contentlock.ErrLockMismatch)
		require.False(t, l.Unlocked())

		require.NoError(t, l.Unlock(ctx, password))
		require.True(t, l.Unlocked())
	})

	t.Run("no password opens on any request", func(t *testing.T) {
		l := newLock(t, storage.NewMemory(), mock, contentlock.Config{StorageKey: "k"})
		require.False(t, l.RequiresPassword())
		require.True(t, l.CanSubmit(""))
		require.NoError(t, l.Unlock(ctx, "anything"))
		require.True(t, l.Unlocked())
	})

	t.Run("empty entry cannot be submitted", func(t *testing.T) {
		l := newLock(t, storage.NewMemory(), mock, contentlock.Config{StorageKey: "k", Password: "x"})
		require.False(t, l.CanSubmit(""))
		require.True(t, l.CanSubmit("y"))
	})
}

func TestLock_ZeroRememberIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	mock := clock.NewMock(time.UnixMilli(0))
	cfg := contentlock.Config{StorageKey: "ventas"}

	l := newLock(t, st, mock, cfg)
	require.NoError(t, l.Unlock(ctx, ""))
	require.True(t, l.Unlocked())
	_, ok, _ := st.Get(ctx, "ventas")
	require.False(t, ok)

	next := newLock(t, st, mock, cfg)
	next.Activate(ctx)
	require.False(t, next.Unlocked())
}

func TestLock_Deactivate(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.UnixMilli(0))

	t.Run("auto lock removes the record", func(t *testing.T) {
		st := storage.NewMemory()
		l := newLock(t, st, mock, contentlock.Config{StorageKey: "k", RememberHours: 8, AutoLockOnDeactivate: true})
		require.NoError(t, l.Unlock(ctx, ""))
		l.Deactivate(ctx)
		require.False(t, l.Unlocked())
		_, ok, _ := st.Get(ctx, "k")
		require.False(t, ok)
	})

	t.Run("without auto lock the record survives", func(t *testing.T) {
		st := storage.NewMemory()
		l := newLock(t, st, mock, contentlock.Config{StorageKey: "k", RememberHours: 8})
		require.NoError(t, l.Unlock(ctx, ""))
		l.Deactivate(ctx)
		_, ok, _ := st.Get(ctx, "k")
		require.True(t, ok)
	})
}

func TestLock_CorruptRecordIsRemoved(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	require.NoError(t, st.Set(ctx, "k", "not json"))

	l := newLock(t, st, clock.NewMock(time.UnixMilli(0)), contentlock.Config{StorageKey: "k"})
	l.Activate(ctx)
	require.False(t, l.Unlocked())
	_, ok, _ := st.Get(ctx, "k")
	require.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	_, err := contentlock.New(nil, contentlock.Config{})
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	_, err = contentlock.New(nil, contentlock.Config{StorageKey: "k", Password: strings.Repeat("a", 73)})
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	_, err = contentlock.New(nil, contentlock.Config{StorageKey: "k", RememberHours: -1})
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	l, err := contentlock.New(nil, contentlock.Config{StorageKey: "k", RememberHours: 1}, contentlock.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	l.Activate(context.Background())
	require.NoError(t, l.Unlock(context.Background(), ""))
	require.True(t, l.Unlocked())
}
