package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockReplacer_SizeAndEvictable(t *testing.T) {
	r := newClockReplacer(4)

	r.RecordAccess(0)
	r.RecordAccess(1)
	require.Equal(t, 0, r.Size())

	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())

	r.SetEvictable(1, true)
	require.Equal(t, 2, r.Size())

	r.SetEvictable(0, false)
	require.Equal(t, 1, r.Size())

	r.Remove(3)
	require.Equal(t, 1, r.Size())
}

func TestClockReplacer_Evict_NoneEvictable(t *testing.T) {
	r := newClockReplacer(2)

	r.RecordAccess(0)
	r.RecordAccess(1)

	_, ok := r.Evict()
	require.False(t, ok)
	require.Equal(t, 0, r.Size())
}

func TestClockReplacer_Evict_SecondChanceBehavior(t *testing.T) {
	r := newClockReplacer(3)

	for frameID := 0; frameID < 3; frameID++ {
		r.RecordAccess(frameID)
		r.SetEvictable(frameID, true)
	}
	require.Equal(t, 3, r.Size())

	v1, ok := r.Evict()
	require.True(t, ok)
	require.GreaterOrEqual(t, v1, 0)
	require.Less(t, v1, 3)
	require.Equal(t, 2, r.Size())

	v2, ok := r.Evict()
	require.True(t, ok)
	require.NotEqual(t, v1, v2)
	require.Equal(t, 1, r.Size())

	v3, ok := r.Evict()
	require.True(t, ok)
	require.NotEqual(t, v1, v3)
	require.NotEqual(t, v2, v3)
	require.Equal(t, 0, r.Size())

	_, ok = r.Evict()
	require.False(t, ok)
}

func TestClockReplacer_Remove_PreventsEviction(t *testing.T) {
	r := newClockReplacer(2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	require.Equal(t, 2, r.Size())

	r.Remove(0)
	require.Equal(t, 1, r.Size())

	victimFrame, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, victimFrame)
	require.Equal(t, 0, r.Size())

	_, ok = r.Evict()
	require.False(t, ok)
}

// TestClockReplacer_SecondChanceGivesRecentlyTouchedFrameAnotherLap: once a
// sweep has cleared the reference bits, a frame touched again before the
// next eviction survives the hand's pass over it and a colder frame goes
// instead. Touching a frame whose bit is still set from its load changes
// nothing, which is why the S3 trace in DESIGN.md evicts page 0.
func TestClockReplacer_SecondChanceGivesRecentlyTouchedFrameAnotherLap(t *testing.T) {
	r := newClockReplacer(3)

	for frameID := 0; frameID < 3; frameID++ {
		r.RecordAccess(frameID)
		r.SetEvictable(frameID, true)
	}

	// The first eviction clears every reference bit on its first sweep and
	// takes frame 0 on the second; the hand stops at frame 1.
	first, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, first)

	// Frame 1 gets touched again, so its reference bit is set once more
	// right before the hand (now at 1) sweeps past it.
	r.RecordAccess(1)

	victimFrame, ok := r.Evict()
	require.True(t, ok)
	require.NotEqual(t, 1, victimFrame)
}
