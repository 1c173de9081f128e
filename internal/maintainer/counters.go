package maintainer

import "sync/atomic"

type sweepCounters struct {
	sweeps               atomic.Int64
	expiredItems         atomic.Int64
	expiredBytes         atomic.Int64
	pressureHits         atomic.Int64
	pressureEvictedItems atomic.Int64
	pressureEvictedBytes atomic.Int64
}

func newSweepCounters() *sweepCounters {
	return &sweepCounters{}
}

func (c *sweepCounters) snapshot() (sweeps, expiredItems, expiredBytes, pressureHits, pressureEvictedItems, pressureEvictedBytes int64) {
	return c.sweeps.Load(),
		c.expiredItems.Load(),
		c.expiredBytes.Load(),
		c.pressureHits.Load(),
		c.pressureEvictedItems.Load(),
		c.pressureEvictedBytes.Load()
}
