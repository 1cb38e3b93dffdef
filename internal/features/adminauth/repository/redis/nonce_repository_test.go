package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"miniurban-backend/internal/domain/nonce"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping Redis test")
	}
	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNonceRepository_Lifecycle(t *testing.T) {
	repo := NewNonceRepository(openTestRedis(t), time.Minute)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	value := uuid.NewString()

	require.NoError(t, repo.Create(ctx, &nonce.LoginNonce{
		Nonce: value, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}))

	got, err := repo.Get(ctx, value)
	require.NoError(t, err)
	assert.False(t, got.Used)
	assert.True(t, got.ExpiresAt.Equal(now.Add(5*time.Minute)))

	ok, err := repo.AttachExchangeToken(ctx, value, 12345, "tok")
	require.NoError(t, err)
	assert.False(t, ok, "unused nonce cannot take a token")

	ok, err = repo.MarkUsed(ctx, value, 12345, "staff-1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkUsed(ctx, value, 777, "staff-2", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.AttachExchangeToken(ctx, value, 12345, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.Get(ctx, value)
	require.NoError(t, err)
	assert.True(t, got.Used)
	assert.Equal(t, int64(12345), *got.TgID)
	assert.Equal(t, "staff-1", *got.AdminUserID)
	assert.Equal(t, "tok", *got.ExchangeToken)
}

func TestNonceRepository_ExpiredAndMissing(t *testing.T) {
	repo := NewNonceRepository(openTestRedis(t), time.Minute)
	ctx := context.Background()
	now := time.Now().UTC()
	value := uuid.NewString()

	require.NoError(t, repo.Create(ctx, &nonce.LoginNonce{
		Nonce: value, CreatedAt: now.Add(-6 * time.Minute), ExpiresAt: now.Add(-time.Minute),
	}))

	ok, err := repo.MarkUsed(ctx, value, 12345, "staff-1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, nonce.ErrNotFound)
}
