package bufferpool

import "sync"

// clockReplacer implements CLOCK (second-chance) replacement directly over
// buffer-pool frame indices. Per frame it tracks a reference ("used") bit,
// whether the frame is currently pinned out of consideration, and whether
// the frame holds a resident page at all, and sweeps a persistent hand over
// them to choose a victim: a two-pass scan (bounded at 2*numFrames steps)
// that clears reference bits on its first pass over a frame and evicts the
// first unpinned frame it finds with a clear bit.
type clockReplacer struct {
	mu sync.Mutex

	ref       []bool
	evictable []bool
	present   []bool
	hand      int
	size      int // number of currently evictable frames
}

func newClockReplacer(numFrames int) Replacer {
	if numFrames <= 0 {
		numFrames = 1
	}
	return &clockReplacer{
		ref:       make([]bool, numFrames),
		evictable: make([]bool, numFrames),
		present:   make([]bool, numFrames),
	}
}

// RecordAccess sets frameID's reference bit, marking it recently touched by
// a pin hit or a fresh load.
func (r *clockReplacer) RecordAccess(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frameID < 0 || frameID >= len(r.ref) {
		return
	}
	r.present[frameID] = true
	r.ref[frameID] = true
}

// SetEvictable flips whether frameID may be chosen as a victim. Pool calls
// this false while a frame is pinned and true once its fix count returns to
// zero.
func (r *clockReplacer) SetEvictable(frameID int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frameID < 0 || frameID >= len(r.ref) || !r.present[frameID] {
		return
	}
	old := r.evictable[frameID]
	if old == evictable {
		return
	}
	r.evictable[frameID] = evictable
	if evictable {
		r.size++
	} else {
		r.size--
	}
}

// Evict sweeps the hand forward, giving every evictable frame with a set
// reference bit one second chance, and returns the first evictable frame it
// finds with a clear bit. It advances the hand past the victim.
func (r *clockReplacer) Evict() (frameID int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.ref)
	if n == 0 || r.size == 0 {
		return -1, false
	}

	for range 2 * n {
		idx := r.hand

		if r.present[idx] && r.evictable[idx] {
			if !r.ref[idx] {
				r.present[idx] = false
				r.evictable[idx] = false
				r.ref[idx] = false
				r.size--

				r.hand = (r.hand + 1) % n
				return idx, true
			}
			r.ref[idx] = false
		}

		r.hand = (r.hand + 1) % n
	}

	return -1, false
}

// Remove drops frameID from tracking entirely.
func (r *clockReplacer) Remove(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frameID < 0 || frameID >= len(r.ref) || !r.present[frameID] {
		return
	}
	if r.evictable[frameID] {
		r.size--
	}
	r.present[frameID] = false
	r.evictable[frameID] = false
	r.ref[frameID] = false
}

func (r *clockReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
