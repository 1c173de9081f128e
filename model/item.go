package model

import "time"

// Priority is the ordinal importance of an item; lower priorities are
// evicted first under the priority and adaptive strategies.
type Priority int32

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical

	MaxPriority = PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Layer names one storage tier or both.
type Layer string

const (
	LayerMemory Layer = "memory"
	LayerRemote Layer = "remote"
	LayerAll    Layer = "all"
)

// Options is the fully-resolved per-call option set. Every field overrides
// the corresponding config default for that single call only.
type Options struct {
	// TTL overrides the configured default TTL. Zero keeps the default;
	// a negative TTL means the item never expires.
	TTL time.Duration

	// Tags are attached to the item for bulk invalidation (memory tier only).
	Tags []string

	// Compress forces compression on or off, bypassing the size threshold.
	// Nil keeps the configured behavior.
	Compress *bool

	// Priority defaults to PriorityNormal.
	Priority Priority

	// SkipMemory and SkipRemote exclude a tier from this call.
	SkipMemory bool
	SkipRemote bool
}

// TaggedItem is a decoded item returned by tag lookups.
type TaggedItem struct {
	Key  string
	Data []byte // serialized (JSON) value, already decompressed
}
