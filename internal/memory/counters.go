package memory

import "sync/atomic"

type counters struct {
	evictedItems atomic.Int64
	evictedBytes atomic.Int64
	expiredItems atomic.Int64
	expiredBytes atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (evictedItems, evictedBytes, expiredItems, expiredBytes int64) {
	return c.evictedItems.Load(), c.evictedBytes.Load(), c.expiredItems.Load(), c.expiredBytes.Load()
}
