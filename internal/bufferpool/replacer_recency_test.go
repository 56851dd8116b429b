package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecencyReplacer_EvictsLeastRecentlyAccessed(t *testing.T) {
	r := newRecencyReplacer(3)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	require.Equal(t, 3, r.Size())

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, v)
	require.Equal(t, 2, r.Size())
}

func TestRecencyReplacer_AccessRefreshesPosition(t *testing.T) {
	r := newRecencyReplacer(3)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)

	// Re-access 0: it should no longer be the oldest.
	r.RecordAccess(0)

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestRecencyReplacer_NonEvictableSkipped(t *testing.T) {
	r := newRecencyReplacer(2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.SetEvictable(0, false) // pinned
	r.SetEvictable(1, true)

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = r.Evict()
	require.False(t, ok)
}

func TestRecencyReplacer_Remove(t *testing.T) {
	r := newRecencyReplacer(2)

	r.RecordAccess(0)
	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())

	r.Remove(0)
	require.Equal(t, 0, r.Size())

	_, ok := r.Evict()
	require.False(t, ok)
}

func TestRecencyReplacer_EvictEmpty(t *testing.T) {
	r := newRecencyReplacer(2)
	_, ok := r.Evict()
	require.False(t, ok)
}
