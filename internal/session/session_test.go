package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"scango/internal/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseManager(t *testing.T, m *Manager) {
	ctx := context.Background()

	s, err := m.Start(ctx, "user-1", "ada@example.com", "Ada", RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.IsAdmin())

	require.NoError(t, m.BindCart(ctx, s, "cart-1"))
	got, err := m.Lookup(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", got.CartID)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, m.End(ctx, s.ID))
	_, err = m.Lookup(ctx, s.ID)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestManager_MemoryStore(t *testing.T) {
	exerciseManager(t, NewManager(NewMemoryStore(), time.Hour))
}

func TestManager_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseManager(t, NewManager(NewRedisStore(client), time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	m := NewManager(store, time.Minute)
	m.now = func() time.Time { return clock }

	s, err := m.Start(context.Background(), "admin", "", "Admin", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	clock = clock.Add(2 * time.Minute)
	_, err = m.Lookup(context.Background(), s.ID)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	m := NewManager(NewRedisStore(client), time.Minute)
	s, err := m.Start(context.Background(), "user-1", "a@b.c", "A", RoleCustomer)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = m.Lookup(context.Background(), s.ID)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
