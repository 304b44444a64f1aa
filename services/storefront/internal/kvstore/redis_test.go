package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, 24*time.Hour), mr
}

func TestRedis_Get_Success(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("iyuc:session:s1:medusa_cart_id", "cart_01"))

	got, err := store.Get(context.Background(), "session:s1:medusa_cart_id")
	require.NoError(t, err)
	assert.Equal(t, "cart_01", got)
}

func TestRedis_Get_NotFound(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRedis_Set_AppliesTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(context.Background(), "k", "v"))

	got, err := mr.Get("iyuc:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, 24*time.Hour, mr.TTL("iyuc:k"))

	mr.FastForward(25 * time.Hour)
	_, err = store.Get(context.Background(), "k")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRedis_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("iyuc:k", "v"))

	require.NoError(t, store.Delete(context.Background(), "k"))
	assert.False(t, mr.Exists("iyuc:k"))

	require.NoError(t, store.Delete(context.Background(), "k"))
}

func TestRedis_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Error(t, store.Ping(context.Background()))
}
