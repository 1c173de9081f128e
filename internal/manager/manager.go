// Package manager orchestrates the tiers: lookup order, backfill,
// write-through, compression decision, tag invalidation and metrics. Remote
// calls never run while the memory tier's lock is held — the tiers
// synchronize themselves and the manager only sequences them.
package manager

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/codec"
	"github.com/strata-cache/go-strata-cache/internal/item"
	"github.com/strata-cache/go-strata-cache/internal/memory"
	"github.com/strata-cache/go-strata-cache/internal/remote"
	"github.com/strata-cache/go-strata-cache/model"
)

// ErrNoTier means every tier was skipped or declined the write.
var ErrNoTier = errors.New("no tier accepted the operation")

type Manager struct {
	cfg    *config.Cache
	logger *slog.Logger
	mem    *memory.Tier
	rem    remote.Tier
	codec  *codec.Codec
	stats  *statsCounters
	events *eventRing
}

func New(cfg *config.Cache, logger *slog.Logger, mem *memory.Tier, rem remote.Tier) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger,
		mem:    mem,
		rem:    rem,
		codec:  codec.New(cfg.Compression),
		stats:  newStatsCounters(),
		events: newEventRing(cfg.Metrics),
	}
}

// GetBytes returns the serialized (decompressed) value for key, consulting
// the memory tier first and falling back to the remote tier. A remote hit is
// backfilled into the memory tier with the configured default TTL. A miss at
// both tiers counts once, not once per tier.
func (m *Manager) GetBytes(ctx context.Context, key string, opts model.Options) ([]byte, bool) {
	start := time.Now()

	if !opts.SkipMemory {
		if e, ok := m.mem.Get(key); ok {
			data, err := m.codec.Decode(e.Payload())
			if err == nil {
				m.stats.hits.Add(1)
				m.stats.memoryHits.Add(1)
				m.emit("get", key, model.LayerMemory, true, start, int64(len(data)))
				return data, true
			}
			// Undecodable entry: drop it so it does not fail repeatedly,
			// then keep looking — the remote copy is independent.
			m.logger.Warn("dropping undecodable cached value", "key", key, "tier", model.LayerMemory, "error", err)
			m.mem.Delete(key)
		}
	}

	// Enabled() is the only gate here: a disconnected remote already fails
	// soft inside the adapter, so a per-read health probe would only add a
	// round trip without changing the outcome.
	if !opts.SkipRemote && m.rem.Enabled() {
		if payload, ok := m.rem.Get(ctx, key); ok {
			data, err := m.codec.Decode(payload)
			if err != nil {
				m.logger.Warn("dropping undecodable cached value", "key", key, "tier", model.LayerRemote, "error", err)
				m.rem.Delete(ctx, key)
			} else {
				if !opts.SkipMemory {
					m.backfill(key, payload)
				}
				m.stats.hits.Add(1)
				m.stats.remoteHits.Add(1)
				m.emit("get", key, model.LayerRemote, true, start, int64(len(data)))
				return data, true
			}
		}
	}

	m.stats.misses.Add(1)
	m.emit("get", key, model.LayerAll, false, start, 0)
	return nil, false
}

// Set encodes the value and writes it to every tier that is not skipped.
// It succeeds when at least one tier accepted the write; a serialization
// failure or a capacity rejection by the only reachable tier is returned.
func (m *Manager) Set(ctx context.Context, key string, value any, opts model.Options) (bool, error) {
	start := time.Now()

	payload, compressed, err := m.codec.Encode(value, opts.Compress)
	if err != nil {
		return false, err
	}

	ttl := m.resolveTTL(opts.TTL)
	accepted := false
	var memErr error

	if !opts.SkipMemory {
		e := item.NewEntry(key, payload, time.Now().UnixNano(), item.Opts{
			TTL:        ttl,
			Tags:       opts.Tags,
			Priority:   opts.Priority,
			Compressed: compressed,
		})
		if memErr = m.mem.Set(e); memErr != nil {
			m.logger.Warn("memory tier rejected write", "key", key, "size", e.Weight(), "error", memErr)
		} else {
			accepted = true
		}
	}

	if !opts.SkipRemote && m.rem.Enabled() {
		if m.rem.Set(ctx, key, payload, ttl) {
			accepted = true
		}
	}

	if accepted {
		m.stats.sets.Add(1)
		m.emit("set", key, model.LayerAll, true, start, int64(len(payload)))
		return true, nil
	}
	if memErr != nil {
		return false, memErr
	}
	return false, ErrNoTier
}

// Delete removes the key from every enabled, non-skipped tier, best-effort.
func (m *Manager) Delete(ctx context.Context, key string, opts model.Options) bool {
	start := time.Now()

	removed := false
	if !opts.SkipMemory && m.mem.Delete(key) {
		removed = true
	}
	if !opts.SkipRemote && m.rem.Enabled() && m.rem.Delete(ctx, key) {
		removed = true
	}

	if removed {
		m.stats.deletes.Add(1)
	}
	m.emit("delete", key, model.LayerAll, removed, start, 0)
	return removed
}

func (m *Manager) Has(ctx context.Context, key string, opts model.Options) bool {
	start := time.Now()

	if !opts.SkipMemory && m.mem.Has(key) {
		m.emit("has", key, model.LayerMemory, true, start, 0)
		return true
	}
	if !opts.SkipRemote && m.rem.Enabled() && m.rem.Exists(ctx, key) {
		m.emit("has", key, model.LayerRemote, true, start, 0)
		return true
	}
	m.emit("has", key, model.LayerAll, false, start, 0)
	return false
}

// Clear wipes one or both tiers.
func (m *Manager) Clear(ctx context.Context, layer model.Layer) {
	start := time.Now()

	if layer == model.LayerMemory || layer == model.LayerAll {
		m.mem.Clear()
	}
	if (layer == model.LayerRemote || layer == model.LayerAll) && m.rem.Enabled() {
		m.rem.Clear(ctx)
	}
	m.emit("clear", "", layer, true, start, 0)
}

// DeleteByTag bulk-invalidates the memory tier; the remote tier keeps no tag
// index, so its copies age out on their own TTLs.
func (m *Manager) DeleteByTag(tag string) int {
	start := time.Now()

	count := m.mem.DeleteByTag(tag)
	if count > 0 {
		m.stats.deletes.Add(int64(count))
	}
	m.emit("delete_by_tag", tag, model.LayerMemory, count > 0, start, int64(count))
	return count
}

// GetByTag returns the decoded live items carrying the tag (memory tier
// only). Entries that fail to decode are dropped, same as on Get.
func (m *Manager) GetByTag(tag string) []model.TaggedItem {
	var out []model.TaggedItem
	for _, e := range m.mem.GetByTag(tag) {
		data, err := m.codec.Decode(e.Payload())
		if err != nil {
			m.logger.Warn("dropping undecodable cached value", "key", e.KeyString(), "tier", model.LayerMemory, "error", err)
			m.mem.Delete(e.KeyString())
			continue
		}
		out = append(out, model.TaggedItem{Key: e.KeyString(), Data: data})
	}
	return out
}

func (m *Manager) Stats() model.Stats {
	evictedItems, _, _, _ := m.mem.Metrics()
	return m.stats.materialize(m.mem.Mem(), m.mem.Len(), evictedItems)
}

func (m *Manager) Metrics(limit int) []model.Event {
	return m.events.last(limit)
}

/**
 * Private API.
 */

// backfill writes a remote-tier hit into the memory tier so the next read is
// local. Payload stays in its stored representation; a capacity rejection is
// not an error — backfill is opportunistic.
func (m *Manager) backfill(key string, payload []byte) {
	e := item.NewEntry(key, payload, time.Now().UnixNano(), item.Opts{
		TTL:        m.cfg.Memory.DefaultTTL,
		Priority:   model.PriorityNormal,
		Compressed: codec.IsCompressed(payload),
	})
	if err := m.mem.Set(e); err != nil {
		m.logger.Debug("backfill rejected", "key", key, "error", err)
	}
}

func (m *Manager) resolveTTL(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if ttl < 0 {
		return 0 // never expires
	}
	return m.cfg.Memory.DefaultTTL
}

func (m *Manager) emit(op, key string, tier model.Layer, hit bool, start time.Time, size int64) {
	if !m.cfg.Metrics.Enabled() {
		return
	}
	m.events.push(model.Event{
		At:       start,
		Op:       op,
		Key:      key,
		Tier:     tier,
		Hit:      hit,
		Duration: time.Since(start),
		Size:     size,
	})
}
