package config

// Strategy selects the victim ordering used when space must be freed.
type Strategy string

const (
	// StrategyLRU evicts the least recently accessed items first.
	StrategyLRU Strategy = "lru"

	// StrategyLFU evicts the least frequently accessed items first.
	StrategyLFU Strategy = "lfu"

	// StrategyTTL evicts the soonest-expiring items first; items without a
	// TTL are evicted last.
	StrategyTTL Strategy = "ttl"

	// StrategyPriority evicts the lowest-priority items first, ties broken
	// by least recent access.
	StrategyPriority Strategy = "priority"

	// StrategyAdaptive evicts by a composite score blending priority,
	// observed hit rate and freshness. The weights are tuning values, not
	// correctness-bearing constants; only the relative ordering matters.
	StrategyAdaptive Strategy = "adaptive"
)

const (
	defaultAdaptivePriorityWeight  = 0.4
	defaultAdaptiveHitRateWeight   = 0.3
	defaultAdaptiveFreshnessWeight = 0.3
	defaultHitsPerMinuteCeiling    = 10.0
)

type EvictionCfg struct {
	// Strategy defines the victim ordering. Defaults to "lru".
	Strategy Strategy `yaml:"strategy"`

	// Adaptive*Weight are the components of the adaptive composite score:
	//
	//   score = priorityWeight*normPriority + hitRateWeight*normHitRate + freshnessWeight*normFreshness
	//
	// Defaults: 0.4 / 0.3 / 0.3.
	AdaptivePriorityWeight  float64 `yaml:"adaptive_priority_weight"`
	AdaptiveHitRateWeight   float64 `yaml:"adaptive_hit_rate_weight"`
	AdaptiveFreshnessWeight float64 `yaml:"adaptive_freshness_weight"`

	// HitsPerMinuteCeiling saturates the normalized hit rate: an item read
	// this often (or more) scores 1.0 on the hit-rate component.
	HitsPerMinuteCeiling float64 `yaml:"hits_per_minute_ceiling"`
}

func (cfg *EvictionCfg) Enabled() bool {
	return cfg != nil
}
