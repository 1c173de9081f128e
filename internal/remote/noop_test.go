package remote

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strata-cache/go-strata-cache/config"
)

// TestNew_Disabled returns the no-op tier for a nil config.
func TestNew_Disabled(t *testing.T) {
	tier := New(nil, slog.Default())
	require.IsType(t, &NoOpTier{}, tier)
}

// TestNoOpTier_SoftFailContract misses every lookup, declines every write
// and reports not connected, so the manager degrades to memory-only without
// ever seeing an error.
func TestNoOpTier_SoftFailContract(t *testing.T) {
	ctx := context.Background()
	tier := New(nil, slog.Default())

	require.False(t, tier.Enabled())
	require.False(t, tier.IsConnected(ctx))

	_, ok := tier.Get(ctx, "k")
	require.False(t, ok)
	require.False(t, tier.Set(ctx, "k", []byte("v"), time.Minute))
	require.False(t, tier.Delete(ctx, "k"))
	require.False(t, tier.Exists(ctx, "k"))
	require.False(t, tier.Clear(ctx))
	require.NoError(t, tier.Close())
}

// TestNew_Enabled builds the Redis-backed tier without touching the network.
func TestNew_Enabled(t *testing.T) {
	cfg := &config.Cache{Remote: &config.RemoteCfg{Addr: "localhost:6379"}}
	cfg.AdjustConfig()

	tier := New(cfg.Remote, slog.Default())
	require.IsType(t, &RedisTier{}, tier)
	require.True(t, tier.Enabled())
	require.NoError(t, tier.Close())
}
