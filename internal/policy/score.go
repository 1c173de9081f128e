package policy

import (
	"time"

	"github.com/strata-cache/go-strata-cache/internal/item"
	"github.com/strata-cache/go-strata-cache/model"
)

// elapsedMinutesEpsilon floors the hit-rate denominator so just-created
// entries do not divide by ~zero.
const elapsedMinutesEpsilon = 0.1

// adaptiveScore blends importance, observed read frequency and freshness.
// Lowest score is evicted first: a high-priority-but-stale entry can outlast
// a low-priority-but-hot one, and vice versa.
func (e *Engine) adaptiveScore(en *item.Entry, now int64) float64 {
	normPriority := float64(en.Priority()) / float64(model.MaxPriority)

	elapsedMin := float64(now-en.CreatedAt()) / float64(time.Minute)
	if elapsedMin < elapsedMinutesEpsilon {
		elapsedMin = elapsedMinutesEpsilon
	}
	hitsPerMin := float64(en.Hits()) / elapsedMin
	normHitRate := hitsPerMin / e.cfg.HitsPerMinuteCeiling
	if normHitRate > 1 {
		normHitRate = 1
	}

	var normFreshness float64
	if e.defaultTTL > 0 {
		age := float64(now - en.CreatedAt())
		normFreshness = 1 - age/float64(e.defaultTTL.Nanoseconds())
		if normFreshness < 0 {
			normFreshness = 0
		}
	}

	return e.cfg.AdaptivePriorityWeight*normPriority +
		e.cfg.AdaptiveHitRateWeight*normHitRate +
		e.cfg.AdaptiveFreshnessWeight*normFreshness
}
