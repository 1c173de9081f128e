package manager

import (
	"sync/atomic"

	"github.com/strata-cache/go-strata-cache/model"
)

type statsCounters struct {
	hits       atomic.Int64
	misses     atomic.Int64
	sets       atomic.Int64
	deletes    atomic.Int64
	memoryHits atomic.Int64
	remoteHits atomic.Int64
}

func newStatsCounters() *statsCounters {
	return &statsCounters{}
}

func (s *statsCounters) materialize(sizeBytes, items, evictions int64) model.Stats {
	hits := s.hits.Load()
	misses := s.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return model.Stats{
		Hits:       hits,
		Misses:     misses,
		Sets:       s.sets.Load(),
		Deletes:    s.deletes.Load(),
		Evictions:  evictions,
		HitRate:    hitRate,
		SizeBytes:  sizeBytes,
		Items:      items,
		MemoryHits: s.memoryHits.Load(),
		RemoteHits: s.remoteHits.Load(),
	}
}
