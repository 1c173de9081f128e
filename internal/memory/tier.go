// Package memory implements the bounded in-process tier. A single RWMutex
// guards the item map; the size/count counters are atomics mutated only
// inside the same critical section as the map, so they always agree with the
// live item set. Reads touch access metadata through entry atomics under the
// read lock, which cannot interleave with an eviction of the same key (that
// requires the write lock).
package memory

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/item"
	"github.com/strata-cache/go-strata-cache/internal/policy"
)

var (
	// ErrTooLarge means a single item exceeds the tier's byte ceiling even
	// with the tier empty.
	ErrTooLarge = errors.New("item exceeds memory tier size limit")

	// ErrCapacity means a ceiling would be breached and eviction is disabled.
	ErrCapacity = errors.New("memory tier is full and eviction is disabled")
)

type Tier struct {
	cfg    *config.Cache
	engine *policy.Engine
	logger *slog.Logger

	mu    sync.RWMutex
	items map[uint64]*item.Entry

	mem int64 // atomic: summed entry weight; mutated only under mu
	len int64 // atomic: live item count; mutated only under mu

	counters *counters
}

func New(cfg *config.Cache, logger *slog.Logger) *Tier {
	return &Tier{
		cfg:      cfg,
		engine:   policy.New(cfg.Eviction, cfg.Memory.DefaultTTL),
		logger:   logger,
		items:    make(map[uint64]*item.Entry),
		counters: newCounters(),
	}
}

// Get returns the live entry for key. An expired entry observed here is
// deleted as a side effect, not merely reported as a miss. A miss never
// mutates access metadata.
func (t *Tier) Get(key string) (*item.Entry, bool) {
	k := item.NewKey(key)
	now := time.Now().UnixNano()

	t.mu.RLock()
	e, ok := t.items[k.Value()]
	if !ok || !e.Key().IsTheSame(k) {
		t.mu.RUnlock()
		return nil, false
	}
	if e.IsExpired(now) {
		t.mu.RUnlock()
		t.reapIfExpired(k, now)
		return nil, false
	}
	e.Touch(now)
	t.mu.RUnlock()
	return e, true
}

// Set stores the entry, evicting in policy order first when either ceiling
// would be breached. On a capacity error no state changes.
func (t *Tier) Set(e *item.Entry) error {
	w := e.Weight()
	if w > t.cfg.Memory.SizeBytes {
		return ErrTooLarge
	}

	key := e.Key().Value()
	now := time.Now().UnixNano()

	t.mu.Lock()
	defer t.mu.Unlock()

	// An occupied slot is a replacement for accounting purposes whether the
	// logical key matches or collides: the old entry leaves either way.
	old, replacing := t.items[key]

	needBytes := atomic.LoadInt64(&t.mem) + w - t.cfg.Memory.SizeBytes
	needCount := atomic.LoadInt64(&t.len) + 1 - t.cfg.Memory.MaxItems
	if replacing {
		needBytes -= old.Weight()
		needCount--
	}

	if needBytes > 0 || needCount > 0 {
		if !t.cfg.Eviction.Enabled() {
			return ErrCapacity
		}
		t.evictLocked(now, needBytes, needCount, key)
	}

	if replacing {
		atomic.AddInt64(&t.mem, w-old.Weight())
	} else {
		atomic.AddInt64(&t.mem, w)
		atomic.AddInt64(&t.len, 1)
	}
	t.items[key] = e
	return nil
}

func (t *Tier) Delete(key string) bool {
	k := item.NewKey(key)

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.items[k.Value()]
	if !ok || !e.Key().IsTheSame(k) {
		return false
	}
	t.removeLocked(k.Value(), e)
	return true
}

// Has is expiry-aware and, like Get, deletes an expired entry it observes.
// It never touches access metadata.
func (t *Tier) Has(key string) bool {
	k := item.NewKey(key)
	now := time.Now().UnixNano()

	t.mu.RLock()
	e, ok := t.items[k.Value()]
	ok = ok && e.Key().IsTheSame(k)
	expired := ok && e.IsExpired(now)
	t.mu.RUnlock()

	if expired {
		t.reapIfExpired(k, now)
		return false
	}
	return ok
}

func (t *Tier) Clear() {
	t.mu.Lock()
	t.items = make(map[uint64]*item.Entry)
	atomic.StoreInt64(&t.mem, 0)
	atomic.StoreInt64(&t.len, 0)
	t.mu.Unlock()
}

// Keys lists the string keys of live (non-expired) entries.
func (t *Tier) Keys() []string {
	now := time.Now().UnixNano()
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.items))
	for _, e := range t.items {
		if !e.IsExpired(now) {
			keys = append(keys, e.KeyString())
		}
	}
	return keys
}

// GetByTag returns live entries carrying the tag. Access metadata is not
// touched: tag reads are bulk inspection, not item reads.
func (t *Tier) GetByTag(tag string) []*item.Entry {
	now := time.Now().UnixNano()
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*item.Entry
	for _, e := range t.items {
		if e.HasTag(tag) && !e.IsExpired(now) {
			out = append(out, e)
		}
	}
	return out
}

func (t *Tier) DeleteByTag(tag string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for k, e := range t.items {
		if e.HasTag(tag) {
			t.removeLocked(k, e)
			count++
		}
	}
	return count
}

// RemoveExpired deletes up to limit expired entries as seen at now.
// limit <= 0 means unbounded.
func (t *Tier) RemoveExpired(now int64, limit int) (items, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k, e := range t.items {
		if limit > 0 && items >= int64(limit) {
			break
		}
		if e.IsExpired(now) {
			w := e.Weight()
			t.removeLocked(k, e)
			t.counters.expiredItems.Add(1)
			t.counters.expiredBytes.Add(w)
			items++
			bytes += w
		}
	}
	return
}

// EvictFraction releases the given share of tracked bytes in policy order,
// regardless of ceilings. Used by the maintenance sweeper under host memory
// pressure.
func (t *Tier) EvictFraction(frac float64) (freed, evicted int64) {
	if frac <= 0 || !t.cfg.Eviction.Enabled() {
		return 0, 0
	}
	now := time.Now().UnixNano()

	t.mu.Lock()
	defer t.mu.Unlock()

	before := atomic.LoadInt64(&t.mem)
	needBytes := int64(float64(before) * frac)
	freed, evicted = t.evictLocked(now, needBytes, 0, 0)
	return
}

func (t *Tier) Len() int64 { return atomic.LoadInt64(&t.len) }
func (t *Tier) Mem() int64 { return atomic.LoadInt64(&t.mem) }

// Metrics returns the cumulative eviction/expiry counters.
func (t *Tier) Metrics() (evictedItems, evictedBytes, expiredItems, expiredBytes int64) {
	return t.counters.snapshot()
}

// Walk applies fn to every entry under the read lock. The callback must be
// lightweight and must not call back into the tier.
func (t *Tier) Walk(fn func(e *item.Entry) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.items {
		if !fn(e) {
			return
		}
	}
}

/**
 * Private API.
 */

// reapIfExpired re-checks under the write lock before deleting: the entry
// may have been replaced since the read-locked observation.
func (t *Tier) reapIfExpired(k *item.Key, now int64) {
	t.mu.Lock()
	if e, ok := t.items[k.Value()]; ok && e.Key().IsTheSame(k) && e.IsExpired(now) {
		w := e.Weight()
		t.removeLocked(k.Value(), e)
		t.counters.expiredItems.Add(1)
		t.counters.expiredBytes.Add(w)
	}
	t.mu.Unlock()
}

func (t *Tier) removeLocked(key uint64, e *item.Entry) {
	delete(t.items, key)
	atomic.AddInt64(&t.mem, -e.Weight())
	atomic.AddInt64(&t.len, -1)
}

// evictLocked frees at least needBytes and needCount in policy order,
// skipping excludeKey (the slot being replaced).
func (t *Tier) evictLocked(now, needBytes, needCount int64, excludeKey uint64) (freed, evicted int64) {
	snapshot := make([]*item.Entry, 0, len(t.items))
	for k, e := range t.items {
		if k == excludeKey {
			continue
		}
		snapshot = append(snapshot, e)
	}

	for _, victim := range t.engine.Victims(snapshot, now, needBytes, needCount) {
		w := victim.Weight()
		t.removeLocked(victim.Key().Value(), victim)
		t.counters.evictedItems.Add(1)
		t.counters.evictedBytes.Add(w)
		freed += w
		evicted++
	}
	return
}
