package item

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/strata-cache/go-strata-cache/model"
)

// Entry is the unit of storage of the memory tier. The payload and all
// descriptive metadata are fixed at construction; only the access metadata
// (touchedAt, hits) mutates afterwards, and only through atomics.
type Entry struct {
	key    *Key
	keyStr string

	payload    []byte // serialized and possibly compressed
	compressed bool

	createdAt int64 // unix nano
	expiresAt int64 // unix nano; 0 means no expiry
	touchedAt int64 // atomic: unix nano (LRU ordering)
	hits      int64 // atomic: successful non-expired reads

	tags     []string
	priority model.Priority
}

// Opts describes the construction-time metadata of an entry.
type Opts struct {
	// TTL <= 0 means the entry never expires.
	TTL        time.Duration
	Tags       []string
	Priority   model.Priority
	Compressed bool
}

// NewEntry builds an entry at the given instant. The payload must already be
// in its stored representation: Weight is fixed for the entry's lifetime.
func NewEntry(key string, payload []byte, now int64, opts Opts) *Entry {
	var expiresAt int64
	if opts.TTL > 0 {
		expiresAt = now + opts.TTL.Nanoseconds()
	}
	return &Entry{
		key:        NewKey(key),
		keyStr:     key,
		payload:    payload,
		compressed: opts.Compressed,
		createdAt:  now,
		expiresAt:  expiresAt,
		touchedAt:  now,
		tags:       opts.Tags,
		priority:   opts.Priority,
	}
}

func (e *Entry) Key() *Key        { return e.key }
func (e *Entry) KeyString() string { return e.keyStr }
func (e *Entry) Payload() []byte  { return e.payload }
func (e *Entry) Compressed() bool { return e.compressed }
func (e *Entry) CreatedAt() int64 { return e.createdAt }
func (e *Entry) ExpiresAt() int64 { return e.expiresAt }

func (e *Entry) Priority() model.Priority { return e.priority }
func (e *Entry) Tags() []string           { return e.tags }

func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (e *Entry) TouchedAt() int64 { return atomic.LoadInt64(&e.touchedAt) }
func (e *Entry) Hits() int64      { return atomic.LoadInt64(&e.hits) }

// Touch records a successful read. Never call it for a miss or for an
// expired entry: access metadata mutates only on non-expired hits.
func (e *Entry) Touch(now int64) {
	atomic.StoreInt64(&e.touchedAt, now)
	atomic.AddInt64(&e.hits, 1)
}

// Weight is the capacity-accounting size of the entry: the stored payload
// plus the fixed struct overhead.
func (e *Entry) Weight() int64 {
	return int64(unsafe.Sizeof(*e)) + int64(cap(e.payload))
}

// Restore rebuilds an entry from persisted state (dump loader).
func Restore(
	key string,
	payload []byte,
	createdAt, touchedAt, expiresAt, hits int64,
	priority model.Priority,
	tags []string,
	compressed bool,
) *Entry {
	return &Entry{
		key:        NewKey(key),
		keyStr:     key,
		payload:    payload,
		compressed: compressed,
		createdAt:  createdAt,
		expiresAt:  expiresAt,
		touchedAt:  touchedAt,
		hits:       hits,
		tags:       tags,
		priority:   priority,
	}
}
