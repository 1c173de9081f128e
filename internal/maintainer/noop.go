package maintainer

import "time"

// NoOpMaintainer stands in when maintenance is disabled: expired entries are
// then reclaimed lazily on access only.
type NoOpMaintainer struct{}

func (m *NoOpMaintainer) ForceSweep(time.Duration) error { return nil }

func (m *NoOpMaintainer) Metrics() (sweeps, expiredItems, expiredBytes, pressureHits, pressureEvictedItems, pressureEvictedBytes int64) {
	return 0, 0, 0, 0, 0, 0
}

func (m *NoOpMaintainer) Stop() {}
