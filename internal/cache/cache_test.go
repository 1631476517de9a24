package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/types"
)

func TestNopNeverHits(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "abc", &types.Fields{}))

	f, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, f)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "resume:fields:deadbeef", Key("deadbeef"))
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url", time.Minute)
	assert.ErrorContains(t, err, "parse redis url")
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewRedisCacheConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "d1", &types.Fields{Skills: []string{"Go"}}))
	assert.True(t, mr.Exists(Key("d1")))
}

func TestNewRedisCachePingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), "redis://"+addr, time.Minute)
	assert.ErrorContains(t, err, "redis ping")
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := newMiniredisCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	name := "Jane Doe"
	require.NoError(t, c.Set(ctx, "abc", &types.Fields{Name: &name, Skills: []string{"Go", "SQL"}}))

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, &types.Fields{Name: &name, Skills: []string{"Go", "SQL"}}, got)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newMiniredisCache(t, 10*time.Minute)

	require.NoError(t, c.Set(ctx, "abc", &types.Fields{Skills: []string{}}))
	assert.Equal(t, 10*time.Minute, mr.TTL(Key("abc")))

	mr.FastForward(11 * time.Minute)

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheNullSkillsDecodeAsEmpty(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	require.NoError(t, mr.Set(Key("abc"), `{"name":null,"email":"a@b.co","phone":null,"skills":null}`))

	got, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, got.Skills)
	assert.Empty(t, got.Skills)
	assert.Nil(t, got.Name)
	assert.Equal(t, "a@b.co", *got.Email)
}

func TestRedisCacheCorruptValue(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	require.NoError(t, mr.Set(Key("abc"), "not json"))

	_, ok, err := c.Get(context.Background(), "abc")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "decode cached fields")
}

func TestRedisCacheServerGone(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "abc")
	assert.ErrorContains(t, err, "redis get")
	assert.ErrorContains(t, c.Set(context.Background(), "abc", &types.Fields{}), "redis set")
}
