package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/typegen"
	"github.com/koustreak/pgmeta/internal/typegen/typegentest"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisWithClient(client, DefaultConfig())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestKey(t *testing.T) {
	meta := typegentest.Metadata()
	opts := typegen.Options{IncludedSchemas: []string{"public"}}

	k1, err := Key("typescript", opts, meta)
	require.NoError(t, err)
	k2, err := Key("typescript", opts, typegentest.Metadata())
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)

	for name, other := range map[string]func() (string, error){
		"target":  func() (string, error) { return Key("dart", opts, meta) },
		"options": func() (string, error) { return Key("typescript", typegen.Options{}, meta) },
		"metadata": func() (string, error) {
			m := typegentest.Metadata()
			m.Columns[0].Name = "renamed"
			return Key("typescript", opts, m)
		},
	} {
		k, err := other()
		require.NoError(t, err)
		assert.NotEqual(t, k1, k, name)
	}
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	res := &typegen.Result{
		Target:   "typescript",
		Output:   "export type Json = string\n",
		Warnings: []typegen.Warning{{Code: "overload", Message: "skipped"}},
	}
	require.NoError(t, c.Set(ctx, "k", res))
	assert.True(t, mr.Exists("pgmeta:k"))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, got)

	mr.FastForward(11 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("pgmeta:k", "{not json"))

	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()

	c, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	cfg.Addr = "127.0.0.1:1"
	_, err = NewRedis(context.Background(), cfg)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", &typegen.Result{}))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
