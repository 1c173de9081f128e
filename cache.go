// Package stratacache is a multi-tier cache engine: a bounded in-memory tier
// with pluggable eviction strategies backed by an optional Redis tier, with
// transparent value compression, tag invalidation, a background maintenance
// sweeper and disk persistence.
package stratacache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/codec"
	"github.com/strata-cache/go-strata-cache/internal/dump"
	"github.com/strata-cache/go-strata-cache/internal/maintainer"
	"github.com/strata-cache/go-strata-cache/internal/manager"
	"github.com/strata-cache/go-strata-cache/internal/memory"
	"github.com/strata-cache/go-strata-cache/internal/remote"
	"github.com/strata-cache/go-strata-cache/internal/telemetry"
	"github.com/strata-cache/go-strata-cache/model"
)

// Sentinel errors surfaced to callers.
var (
	// ErrNoTier means every tier was skipped or declined a write.
	ErrNoTier = manager.ErrNoTier
	// ErrTooLarge means a single value exceeds the memory tier ceiling.
	ErrTooLarge = memory.ErrTooLarge
	// ErrCapacity means a ceiling was breached while eviction is disabled.
	ErrCapacity = memory.ErrCapacity
	// ErrCorrupted means a compressed payload failed to inflate.
	ErrCorrupted = codec.ErrCorrupted
)

type Cache struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Cache
	logger *slog.Logger

	mem        *memory.Tier
	rem        remote.Tier
	manager    *manager.Manager
	maintainer maintainer.Maintainer
	telemetry  telemetry.Logger
	dumper     dump.Dumper

	closeOnce sync.Once
	closeErr  error
}

// New assembles the engine from its config. Disabled components (nil
// sub-configs) are replaced by no-ops, never by errors: a memory-only cache
// is a valid engine. When persistence is enabled the previous snapshot is
// restored, and configured preload keys are then warmed from the remote
// tier.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger) *Cache {
	cfg.AdjustConfig()
	ctx, cancel := context.WithCancel(ctx)

	mem := memory.New(cfg, logger)
	rem := remote.New(cfg.Remote, logger)
	mgr := manager.New(cfg, logger, mem, rem)
	mnt := maintainer.New(ctx, cfg.Maintenance, logger, mem, clock.New())

	c := &Cache{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		logger:     logger,
		mem:        mem,
		rem:        rem,
		manager:    mgr,
		maintainer: mnt,
		telemetry:  telemetry.New(ctx, cfg, logger, mgr, mem, mnt),
		dumper:     dump.New(cfg.Persistence, mem),
	}

	if rem.Enabled() && !rem.IsConnected(ctx) {
		logger.Warn("remote tier is not reachable, starting memory-only", "addr", cfg.Remote.Addr)
	}

	if cfg.Persistence.Enabled() {
		if err := c.dumper.Load(ctx); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("restore from dump failed", "error", err)
		}
	}
	c.preload(ctx)

	return c
}

// Get reads key and unmarshals the cached value into T.
// The found flag is false on a miss; err is non-nil only when a present
// value cannot be unmarshalled into T.
func Get[T any](ctx context.Context, c *Cache, key string, opts ...Option) (value T, found bool, err error) {
	data, ok := c.GetBytes(ctx, key, opts...)
	if !ok {
		return value, false, nil
	}
	if err = json.Unmarshal(data, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}

// GetBytes reads key and returns the serialized (decompressed) value.
func (c *Cache) GetBytes(ctx context.Context, key string, opts ...Option) ([]byte, bool) {
	return c.manager.GetBytes(ctx, key, resolveOptions(opts))
}

// Set writes value to every tier the options do not skip. It returns nil
// when at least one tier accepted the write.
func (c *Cache) Set(ctx context.Context, key string, value any, opts ...Option) error {
	_, err := c.manager.Set(ctx, key, value, resolveOptions(opts))
	return err
}

// Delete removes key from the non-skipped tiers and reports whether any tier
// held it.
func (c *Cache) Delete(ctx context.Context, key string, opts ...Option) bool {
	return c.manager.Delete(ctx, key, resolveOptions(opts))
}

// Has reports whether key is present and not expired, without touching
// access metadata or statistics.
func (c *Cache) Has(ctx context.Context, key string, opts ...Option) bool {
	return c.manager.Has(ctx, key, resolveOptions(opts))
}

// Clear wipes the given layer (LayerMemory, LayerRemote or LayerAll).
func (c *Cache) Clear(ctx context.Context, layer model.Layer) {
	c.manager.Clear(ctx, layer)
}

// DeleteByTag removes every memory tier item carrying the tag and returns
// how many were removed.
func (c *Cache) DeleteByTag(tag string) int {
	return c.manager.DeleteByTag(tag)
}

// GetByTag returns the decoded live memory tier items carrying the tag.
func (c *Cache) GetByTag(tag string) []model.TaggedItem {
	return c.manager.GetByTag(tag)
}

// Keys returns the keys of live memory tier items. Expired but not yet
// reclaimed items are filtered out.
func (c *Cache) Keys() []string {
	return c.mem.Keys()
}

// Stats returns a consistent snapshot of the engine counters.
func (c *Cache) Stats() model.Stats {
	return c.manager.Stats()
}

// Metrics returns up to limit recent operation events, newest first.
func (c *Cache) Metrics(limit int) []model.Event {
	return c.manager.Metrics(limit)
}

// Collector exposes the engine counters to a Prometheus registry.
func (c *Cache) Collector() prometheus.Collector {
	return c.manager.Collector()
}

// ForceSweep triggers a maintenance cycle out of schedule.
func (c *Cache) ForceSweep(timeout time.Duration) error {
	return c.maintainer.ForceSweep(timeout)
}

// Dump snapshots the memory tier to disk.
func (c *Cache) Dump(ctx context.Context) error {
	return c.dumper.Dump(ctx)
}

// Close stops the background workers and releases the remote connection.
// When persistence is enabled the memory tier is dumped first, while the
// engine is still fully alive. Close is idempotent.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		if c.cfg.Persistence.Enabled() {
			if err := c.dumper.Dump(context.Background()); err != nil {
				c.logger.Warn("dump on close failed", "error", err)
				c.closeErr = err
			}
		}
		c.maintainer.Stop()
		_ = c.telemetry.Close()
		if err := c.rem.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
		c.cancel()
	})
	return c.closeErr
}

// preload warms configured keys from the remote tier; a read through the
// manager backfills each hit into the memory tier.
func (c *Cache) preload(ctx context.Context) {
	if len(c.cfg.Preload) == 0 || !c.rem.Enabled() {
		return
	}
	warmed := 0
	for _, key := range c.cfg.Preload {
		if _, ok := c.manager.GetBytes(ctx, key, model.Options{}); ok {
			warmed++
		}
	}
	c.logger.Info("preload finished", "requested", len(c.cfg.Preload), "warmed", warmed)
}
