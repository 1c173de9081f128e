package model

import "time"

// Stats is a point-in-time snapshot of the cumulative engine counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64

	// HitRate is Hits / (Hits + Misses); zero when nothing was read yet.
	HitRate float64

	// SizeBytes and Items describe the memory tier.
	SizeBytes int64
	Items     int64

	// Per-tier hit breakdown. MemoryHits + RemoteHits == Hits.
	MemoryHits int64
	RemoteHits int64
}

// Event is one timestamped metric record kept in the bounded event ring.
type Event struct {
	At       time.Time
	Op       string // get, set, delete, has, clear, delete_by_tag
	Key      string
	Tier     Layer
	Hit      bool
	Duration time.Duration
	Size     int64
}
