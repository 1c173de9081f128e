package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strata-cache/go-strata-cache/model"
)

// TestEntry_Expiry_Boundary verifies the exact expiry instant: an entry is
// still live at expiresAt and expired one nanosecond after.
func TestEntry_Expiry_Boundary(t *testing.T) {
	now := time.Now().UnixNano()
	e := NewEntry("k", []byte("v"), now, Opts{TTL: time.Second})

	expiresAt := e.ExpiresAt()
	require.Equal(t, now+time.Second.Nanoseconds(), expiresAt)

	require.False(t, e.IsExpired(now))
	require.False(t, e.IsExpired(expiresAt), "entry is live at the expiry instant")
	require.True(t, e.IsExpired(expiresAt+1))
}

// TestEntry_NoTTL_NeverExpires verifies that a zero TTL yields no expiry.
func TestEntry_NoTTL_NeverExpires(t *testing.T) {
	now := time.Now().UnixNano()
	e := NewEntry("k", []byte("v"), now, Opts{})

	require.Equal(t, int64(0), e.ExpiresAt())
	require.False(t, e.IsExpired(now+time.Hour.Nanoseconds()*24*365))
}

// TestEntry_Touch updates access metadata on reads only.
func TestEntry_Touch(t *testing.T) {
	now := time.Now().UnixNano()
	e := NewEntry("k", []byte("v"), now, Opts{})

	require.Equal(t, now, e.TouchedAt())
	require.Equal(t, int64(0), e.Hits())

	later := now + time.Second.Nanoseconds()
	e.Touch(later)
	e.Touch(later + 1)

	require.Equal(t, later+1, e.TouchedAt())
	require.Equal(t, int64(2), e.Hits())
	require.Equal(t, now, e.CreatedAt(), "creation time is immutable")
}

// TestEntry_Weight grows with the payload and is stable across touches.
func TestEntry_Weight(t *testing.T) {
	now := time.Now().UnixNano()
	small := NewEntry("k", make([]byte, 10), now, Opts{})
	large := NewEntry("k", make([]byte, 1000), now, Opts{})

	require.Greater(t, large.Weight(), small.Weight())
	require.GreaterOrEqual(t, large.Weight()-small.Weight(), int64(990))

	w := small.Weight()
	small.Touch(now + 1)
	require.Equal(t, w, small.Weight())
}

// TestEntry_Tags verifies tag membership checks.
func TestEntry_Tags(t *testing.T) {
	now := time.Now().UnixNano()
	e := NewEntry("k", []byte("v"), now, Opts{Tags: []string{"users", "sessions"}})

	require.True(t, e.HasTag("users"))
	require.True(t, e.HasTag("sessions"))
	require.False(t, e.HasTag("orders"))

	bare := NewEntry("k", []byte("v"), now, Opts{})
	require.False(t, bare.HasTag("users"))
}

// TestEntry_Restore rebuilds an entry with its full lifecycle state.
func TestEntry_Restore(t *testing.T) {
	e := Restore("k", []byte("v"), 100, 200, 300, 7, model.PriorityHigh, []string{"a"}, true)

	require.Equal(t, "k", e.KeyString())
	require.Equal(t, []byte("v"), e.Payload())
	require.Equal(t, int64(100), e.CreatedAt())
	require.Equal(t, int64(200), e.TouchedAt())
	require.Equal(t, int64(300), e.ExpiresAt())
	require.Equal(t, int64(7), e.Hits())
	require.Equal(t, model.PriorityHigh, e.Priority())
	require.True(t, e.HasTag("a"))
	require.True(t, e.Compressed())
}

// TestKey_Collision verifies that the full 128-bit digest disambiguates keys
// sharing a 64-bit map slot comparison.
func TestKey_Distinct(t *testing.T) {
	a := NewKey("alpha")
	b := NewKey("beta")

	require.True(t, a.IsTheSame(NewKey("alpha")))
	require.False(t, a.IsTheSame(b))
}
