package item

import "github.com/strata-cache/go-strata-cache/model"

// NewEntryForTesting builds an entry with fully controlled lifecycle state.
// Tests use it to construct synthetic item sets with exact timestamps and
// counters; production code goes through NewEntry or Restore.
func NewEntryForTesting(
	key string,
	payload []byte,
	createdAt, touchedAt, expiresAt, hits int64,
	priority model.Priority,
	tags []string,
	compressed bool,
) *Entry {
	return Restore(key, payload, createdAt, touchedAt, expiresAt, hits, priority, tags, compressed)
}
