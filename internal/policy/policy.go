// Package policy implements victim ordering for the memory tier. The engine
// is a pure function of an item snapshot: it mutates nothing and performs no
// I/O, so synthetic item sets with controlled timestamps and counters test it
// directly.
package policy

import (
	"sort"
	"time"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/item"
)

type Engine struct {
	cfg        *config.EvictionCfg
	defaultTTL time.Duration
}

func New(cfg *config.EvictionCfg, defaultTTL time.Duration) *Engine {
	return &Engine{cfg: cfg, defaultTTL: defaultTTL}
}

func (e *Engine) Strategy() config.Strategy {
	if !e.cfg.Enabled() {
		return ""
	}
	return e.cfg.Strategy
}

// Order returns the snapshot sorted lowest-value-first: the head of the
// result is the first victim. The input slice is not modified.
func (e *Engine) Order(entries []*item.Entry, now int64) []*item.Entry {
	out := make([]*item.Entry, len(entries))
	copy(out, entries)

	less := e.lessFn(now)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Victims returns, in eviction order, the smallest prefix of the ordered
// snapshot whose removal frees at least needBytes and needCount. When the
// whole snapshot is not enough, it is returned in full.
func (e *Engine) Victims(entries []*item.Entry, now, needBytes, needCount int64) []*item.Entry {
	if needBytes <= 0 && needCount <= 0 {
		return nil
	}

	ordered := e.Order(entries, now)
	victims := ordered[:0:0]
	for _, en := range ordered {
		if needBytes <= 0 && needCount <= 0 {
			break
		}
		victims = append(victims, en)
		needBytes -= en.Weight()
		needCount--
	}
	return victims
}

func (e *Engine) lessFn(now int64) func(a, b *item.Entry) bool {
	switch e.Strategy() {
	case config.StrategyLFU:
		return func(a, b *item.Entry) bool { return a.Hits() < b.Hits() }

	case config.StrategyTTL:
		// soonest expiry first; no-TTL entries sort last
		return func(a, b *item.Entry) bool {
			ea, eb := a.ExpiresAt(), b.ExpiresAt()
			if ea == 0 {
				return false
			}
			if eb == 0 {
				return true
			}
			return ea < eb
		}

	case config.StrategyPriority:
		return func(a, b *item.Entry) bool {
			if a.Priority() != b.Priority() {
				return a.Priority() < b.Priority()
			}
			return a.TouchedAt() < b.TouchedAt()
		}

	case config.StrategyAdaptive:
		return func(a, b *item.Entry) bool { return e.adaptiveScore(a, now) < e.adaptiveScore(b, now) }

	default: // StrategyLRU
		return func(a, b *item.Entry) bool { return a.TouchedAt() < b.TouchedAt() }
	}
}
