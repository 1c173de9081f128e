package stratacache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/model"
)

func defaultCfg() *config.Cache {
	return &config.Cache{
		Memory:   config.MemoryCfg{SizeBytes: 10 << 20, MaxItems: 1000},
		Eviction: &config.EvictionCfg{Strategy: config.StrategyLRU},
		Metrics:  &config.MetricsCfg{RingCapacity: 32},
	}
}

func defaultLogger() *slog.Logger {
	return slog.Default()
}

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// TestCache_TypedRoundTrip stores a struct and reads it back typed.
func TestCache_TypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "user:1", user{Name: "ann", Age: 34}))

	got, found, err := Get[user](ctx, c, "user:1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, user{Name: "ann", Age: 34}, got)

	_, found, err = Get[user](ctx, c, "absent")
	require.NoError(t, err)
	require.False(t, found)
}

// TestCache_TTL_Expiry misses after the per-call TTL elapses.
func TestCache_TTL_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "session", "token", WithTTL(50*time.Millisecond)))

	require.True(t, c.Has(ctx, "session"))
	_, found, err := Get[string](ctx, c, "session")
	require.NoError(t, err)
	require.True(t, found)

	time.Sleep(60 * time.Millisecond)

	_, found, err = Get[string](ctx, c, "session")
	require.NoError(t, err)
	require.False(t, found)
	require.False(t, c.Has(ctx, "session"))
}

// TestCache_NegativeTTL_Pins keeps an item alive past the default TTL.
func TestCache_NegativeTTL_Pins(t *testing.T) {
	ctx := context.Background()
	cfg := defaultCfg()
	cfg.Memory.DefaultTTL = 10 * time.Millisecond
	c := New(ctx, cfg, defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "pinned", "v", WithTTL(-1)))
	require.NoError(t, c.Set(ctx, "default", "v"))

	time.Sleep(20 * time.Millisecond)

	require.True(t, c.Has(ctx, "pinned"))
	require.False(t, c.Has(ctx, "default"))
}

// TestCache_Tags invalidates grouped items in one call.
func TestCache_Tags(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "u1", "ann", WithTags("users")))
	require.NoError(t, c.Set(ctx, "u2", "bob", WithTags("users", "admins")))
	require.NoError(t, c.Set(ctx, "o1", "order", WithTags("orders")))

	require.Len(t, c.GetByTag("users"), 2)
	require.Equal(t, 2, c.DeleteByTag("users"))
	require.False(t, c.Has(ctx, "u1"))
	require.True(t, c.Has(ctx, "o1"))
}

// TestCache_Delete removes a key and reports prior presence.
func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", "v"))
	require.True(t, c.Delete(ctx, "k"))
	require.False(t, c.Delete(ctx, "k"))
}

// TestCache_Clear wipes the memory layer.
func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", "v"))
	c.Clear(ctx, model.LayerAll)
	require.False(t, c.Has(ctx, "k"))
	require.Empty(t, c.Keys())
}

// TestCache_Stats aggregates engine counters through the facade.
func TestCache_Stats(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, defaultCfg(), defaultLogger())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", "v"))
	_, _, _ = Get[string](ctx, c, "k")
	_, _, _ = Get[string](ctx, c, "absent")

	s := c.Stats()
	require.Equal(t, int64(1), s.Hits)
	require.Equal(t, int64(1), s.Misses)
	require.Equal(t, int64(1), s.Sets)
	require.Equal(t, int64(1), s.Items)
	require.InDelta(t, 0.5, s.HitRate, 1e-9)

	events := c.Metrics(0)
	require.NotEmpty(t, events)
}

// TestCache_Persistence_RestoresAcrossRestart dumps on close and restores on
// the next start.
func TestCache_Persistence_RestoresAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := defaultCfg()
	cfg.Persistence = &config.PersistenceCfg{
		Dir:          t.TempDir(),
		Name:         "strata",
		Crc32Control: true,
	}

	c1 := New(ctx, cfg, defaultLogger())
	require.NoError(t, c1.Set(ctx, "k", "survives"))
	require.NoError(t, c1.Close())

	c2 := New(ctx, cfg, defaultLogger())
	defer c2.Close()

	got, found, err := Get[string](ctx, c2, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "survives", got)
}

// TestCache_Close_Idempotent tolerates repeated Close calls.
func TestCache_Close_Idempotent(t *testing.T) {
	c := New(context.Background(), defaultCfg(), defaultLogger())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

// TestCache_Collector registers without error.
func TestCache_Collector(t *testing.T) {
	c := New(context.Background(), defaultCfg(), defaultLogger())
	defer c.Close()
	require.NotNil(t, c.Collector())
}
