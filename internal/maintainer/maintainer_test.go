package maintainer

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/item"
	"github.com/strata-cache/go-strata-cache/internal/memory"
)

func defaultCfg(maintenance *config.MaintenanceCfg) *config.Cache {
	cfg := &config.Cache{
		Memory:      config.MemoryCfg{SizeBytes: 10 << 20, MaxItems: 1000},
		Eviction:    &config.EvictionCfg{Strategy: config.StrategyLRU},
		Maintenance: maintenance,
	}
	cfg.AdjustConfig()
	return cfg
}

func defaultLogger() *slog.Logger {
	return slog.Default()
}

// quietMaintenance never fires on its own; cycles run through ForceSweep.
func quietMaintenance() *config.MaintenanceCfg {
	return &config.MaintenanceCfg{
		SweepInterval:   time.Hour,
		ReclaimsPerSec:  1000,
		PressurePercent: 101, // unreachable, pressure path stays off
		EvictFraction:   0.5,
	}
}

// TestSweepWorker_ReclaimsExpired removes expired entries on a sweep cycle.
func TestSweepWorker_ReclaimsExpired(t *testing.T) {
	cfg := defaultCfg(quietMaintenance())
	mem := memory.New(cfg, defaultLogger())
	mck := clock.NewMock()
	mck.Set(time.Now())

	past := mck.Now().Add(-time.Minute).UnixNano()
	for i := 0; i < 10; i++ {
		e := item.NewEntry(fmt.Sprintf("dead%d", i), []byte("v"), past, item.Opts{TTL: time.Second})
		require.NoError(t, mem.Set(e))
	}
	live := item.NewEntry("live", []byte("v"), mck.Now().UnixNano(), item.Opts{TTL: time.Hour})
	require.NoError(t, mem.Set(live))

	mnt := New(context.Background(), cfg.Maintenance, defaultLogger(), mem, mck)
	defer mnt.Stop()

	require.NoError(t, mnt.ForceSweep(time.Second))
	require.Eventually(t, func() bool {
		return mem.Len() == 1
	}, time.Second, 5*time.Millisecond, "expired entries are reclaimed, live ones survive")

	require.Eventually(t, func() bool {
		sweeps, expiredItems, expiredBytes, _, _, _ := mnt.Metrics()
		return sweeps >= 1 && expiredItems == 10 && expiredBytes > 0
	}, time.Second, 5*time.Millisecond)
}

// TestSweepWorker_SweepsOnTick runs a cycle when the interval elapses.
func TestSweepWorker_SweepsOnTick(t *testing.T) {
	mCfg := quietMaintenance()
	mCfg.SweepInterval = time.Minute
	cfg := defaultCfg(mCfg)
	mem := memory.New(cfg, defaultLogger())
	mck := clock.NewMock()
	mck.Set(time.Now())

	e := item.NewEntry("dead", []byte("v"), mck.Now().Add(-time.Minute).UnixNano(), item.Opts{TTL: time.Second})
	require.NoError(t, mem.Set(e))

	mnt := New(context.Background(), cfg.Maintenance, defaultLogger(), mem, mck)
	defer mnt.Stop()

	// Let the worker install its ticker before advancing the clock.
	time.Sleep(10 * time.Millisecond)
	mck.Add(time.Minute)

	require.Eventually(t, func() bool {
		return mem.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

// TestSweepWorker_PressureEviction evicts a fraction of the tier when the
// sampled memory usage exceeds the threshold.
func TestSweepWorker_PressureEviction(t *testing.T) {
	mCfg := quietMaintenance()
	mCfg.PressurePercent = 85
	cfg := defaultCfg(mCfg)
	mem := memory.New(cfg, defaultLogger())

	for i := 0; i < 10; i++ {
		e := item.NewEntry(fmt.Sprintf("k%d", i), make([]byte, 1000), time.Now().UnixNano(), item.Opts{})
		require.NoError(t, mem.Set(e))
	}
	before := mem.Mem()

	mnt := New(context.Background(), cfg.Maintenance, defaultLogger(), mem, clock.NewMock())
	defer mnt.Stop()

	w := mnt.(*SweepWorker)
	w.pressure = func() (float64, bool) { return 95, true }

	require.NoError(t, w.ForceSweep(time.Second))
	require.Eventually(t, func() bool {
		_, _, _, pressureHits, evictedItems, evictedBytes := w.Metrics()
		return pressureHits == 1 && evictedItems > 0 && evictedBytes >= before/2
	}, time.Second, 5*time.Millisecond)
	require.Less(t, mem.Mem(), before)
}

// TestSweepWorker_Stop_Idempotent stops cleanly and tolerates repeated calls.
func TestSweepWorker_Stop_Idempotent(t *testing.T) {
	cfg := defaultCfg(quietMaintenance())
	mem := memory.New(cfg, defaultLogger())

	mnt := New(context.Background(), cfg.Maintenance, defaultLogger(), mem, clock.NewMock())
	mnt.Stop()
	mnt.Stop()

	// A stopped worker answers ForceSweep without blocking or sweeping.
	require.NoError(t, mnt.ForceSweep(10*time.Millisecond))
}

// TestNoOpMaintainer stands in when maintenance is disabled.
func TestNoOpMaintainer(t *testing.T) {
	cfg := defaultCfg(nil)
	mem := memory.New(cfg, defaultLogger())

	mnt := New(context.Background(), cfg.Maintenance, defaultLogger(), mem, clock.NewMock())
	require.IsType(t, &NoOpMaintainer{}, mnt)
	require.NoError(t, mnt.ForceSweep(time.Millisecond))
	mnt.Stop()

	sweeps, _, _, _, _, _ := mnt.Metrics()
	require.Zero(t, sweeps)
}
