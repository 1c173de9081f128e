package item

// IsExpired reports whether the entry is past its absolute expiry at the
// given instant. Pure: no side effects, no clock reads.
func (e *Entry) IsExpired(now int64) bool {
	if e == nil {
		return false
	}
	if e.expiresAt == 0 {
		return false
	}
	return now > e.expiresAt
}
