package telemetry

import (
	"github.com/strata-cache/go-strata-cache/internal/maintainer"
	"github.com/strata-cache/go-strata-cache/internal/manager"
	"github.com/strata-cache/go-strata-cache/internal/memory"
)

type sampler struct {
	manager    *manager.Manager
	mem        *memory.Tier
	maintainer maintainer.Maintainer
}

func newSampler(m *manager.Manager, mem *memory.Tier, mnt maintainer.Maintainer) sampler {
	return sampler{manager: m, mem: mem, maintainer: mnt}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits       uint64
	misses     uint64
	sets       uint64
	deletes    uint64
	memoryHits uint64
	remoteHits uint64

	evictedItems uint64
	evictedBytes uint64

	sweeps               uint64
	expiredItems         uint64
	expiredBytes         uint64
	pressureHits         uint64
	pressureEvictedItems uint64
	pressureEvictedBytes uint64
}

func (s sampler) snapshot() snapshot {
	stats := s.manager.Stats()
	evictedItems, evictedBytes, _, _ := s.mem.Metrics()
	sweeps, expItems, expBytes, pHits, pItems, pBytes := s.maintainer.Metrics()

	return snapshot{
		hits:       uint64(max(stats.Hits, 0)),
		misses:     uint64(max(stats.Misses, 0)),
		sets:       uint64(max(stats.Sets, 0)),
		deletes:    uint64(max(stats.Deletes, 0)),
		memoryHits: uint64(max(stats.MemoryHits, 0)),
		remoteHits: uint64(max(stats.RemoteHits, 0)),

		evictedItems: uint64(max(evictedItems, 0)),
		evictedBytes: uint64(max(evictedBytes, 0)),

		sweeps:               uint64(max(sweeps, 0)),
		expiredItems:         uint64(max(expItems, 0)),
		expiredBytes:         uint64(max(expBytes, 0)),
		pressureHits:         uint64(max(pHits, 0)),
		pressureEvictedItems: uint64(max(pItems, 0)),
		pressureEvictedBytes: uint64(max(pBytes, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:       delta(prev.hits, cur.hits),
		misses:     delta(prev.misses, cur.misses),
		sets:       delta(prev.sets, cur.sets),
		deletes:    delta(prev.deletes, cur.deletes),
		memoryHits: delta(prev.memoryHits, cur.memoryHits),
		remoteHits: delta(prev.remoteHits, cur.remoteHits),

		evictedItems: delta(prev.evictedItems, cur.evictedItems),
		evictedBytes: delta(prev.evictedBytes, cur.evictedBytes),

		sweeps:               delta(prev.sweeps, cur.sweeps),
		expiredItems:         delta(prev.expiredItems, cur.expiredItems),
		expiredBytes:         delta(prev.expiredBytes, cur.expiredBytes),
		pressureHits:         delta(prev.pressureHits, cur.pressureHits),
		pressureEvictedItems: delta(prev.pressureEvictedItems, cur.pressureEvictedItems),
		pressureEvictedBytes: delta(prev.pressureEvictedBytes, cur.pressureEvictedBytes),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
