package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	lastTTL time.Duration
	err     error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.lastTTL = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	keys := make([]string, 0)
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStorePurgeKeepsForeignKeys(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{
		"medrag:query:a": "1",
		"medrag:query:b": "2",
		"session:x":      "3",
	}}
	store := NewRedisStore(fake, "medrag:query:")
	require.NoError(t, store.Purge(context.Background()))
	require.Equal(t, map[string]string{"session:x": "3"}, fake.data)
}

func TestRedisStore(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	store := NewRedisStore(fake, "medrag:query:")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "h")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "h", "q", []byte("payload"), time.Now().Add(30*time.Minute)))
	require.Contains(t, fake.data, "medrag:query:h")
	require.Greater(t, fake.lastTTL, 29*time.Minute)

	got, ok, err := store.Get(ctx, "h")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(got))

	fake.err = errors.New("connection reset")
	_, _, err = store.Get(ctx, "h")
	require.Error(t, err)
	require.Error(t, store.Set(ctx, "h", "q", []byte("x"), time.Now().Add(time.Minute)))
}
