package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tuannm99/pagepool/internal/storagemgr"
)

var logDebugPrefix = "bufferpool: "

// Pool is a fixed-size buffer pool bound to a single page file. It is the
// generalized, single-pool descendant of the teacher's GlobalPool: same
// hit/free-slot/evict shape and the same wasZero-before-pin trick for
// telling the replacer when a frame newly becomes non-evictable, but
// parameterized over Strategy instead of hardwiring CLOCK, and backed by
// storagemgr.PageFile instead of a relation-keyed FileSet.
type Pool struct {
	mu sync.Mutex

	pageFile  *storagemgr.PageFile
	numFrames int
	strategy  Strategy

	frames    []*frame
	directory map[int32]int // page_number -> frame index
	replacer  Replacer

	numReads  int
	numWrites int

	closed bool
}

// Init opens the named page file and allocates a pool of numFrames empty
// frames using the given replacement strategy. It fails with
// storagemgr.ErrFileNotFound if the file does not exist; init never
// creates the backing file (spec.md §4.5).
func Init(fileName string, numFrames int, strategy Strategy) (*Pool, error) {
	if numFrames <= 0 {
		return nil, fmt.Errorf("bufferpool: numFrames must be positive: %w", ErrInvalidRequest)
	}

	pf, err := storagemgr.Open(fileName)
	if err != nil {
		return nil, err
	}

	frames := make([]*frame, numFrames)
	for i := range frames {
		frames[i] = newFrame()
	}

	p := &Pool{
		pageFile:  pf,
		numFrames: numFrames,
		strategy:  strategy,
		frames:    frames,
		directory: make(map[int32]int, numFrames),
		replacer:  newReplacer(strategy, numFrames),
	}

	slog.Debug(logDebugPrefix+"initialised", "file", fileName, "numFrames", numFrames, "strategy", strategy)
	return p, nil
}

// Pin resolves pageNum to a frame, loading it from disk on a miss, and
// returns a handle onto the frame's buffer with its fix count incremented.
func (p *Pool) Pin(pageNum int32) (PageHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return PageHandle{}, ErrPoolNotInitialised
	}
	if pageNum < 0 {
		return PageHandle{}, fmt.Errorf("bufferpool: pin page %d: %w", pageNum, ErrInvalidRequest)
	}

	// Hit path.
	if idx, ok := p.directory[pageNum]; ok {
		f := p.frames[idx]
		wasZero := f.fixCount == 0
		f.fixCount++
		p.replacer.RecordAccess(idx)
		if wasZero {
			p.replacer.SetEvictable(idx, false)
		}
		slog.Debug(logDebugPrefix+"pin hit", "pageNum", pageNum, "frame", idx, "fixCount", f.fixCount)
		return PageHandle{pageNum: pageNum, pool: p, frame: idx}, nil
	}

	// Miss, free frame available.
	if idx := p.firstFreeFrameLocked(); idx != -1 {
		if err := p.loadLocked(idx, pageNum); err != nil {
			return PageHandle{}, err
		}
		p.directory[pageNum] = idx
		p.replacer.RecordAccess(idx)
		p.replacer.SetEvictable(idx, false)
		slog.Debug(logDebugPrefix+"pin miss, free frame", "pageNum", pageNum, "frame", idx)
		return PageHandle{pageNum: pageNum, pool: p, frame: idx}, nil
	}

	// Miss, pool full: evict.
	victimIdx, ok := p.replacer.Evict()
	if !ok {
		slog.Debug(logDebugPrefix + "pool full, no evictable frame")
		return PageHandle{}, ErrPoolFull
	}

	victim := p.frames[victimIdx]
	if victim.dirty {
		if err := p.writeBackLocked(victim); err != nil {
			return PageHandle{}, err
		}
	}
	delete(p.directory, victim.pageNum)

	if err := p.loadLocked(victimIdx, pageNum); err != nil {
		return PageHandle{}, err
	}
	p.directory[pageNum] = victimIdx
	p.replacer.RecordAccess(victimIdx)
	p.replacer.SetEvictable(victimIdx, false)

	slog.Debug(logDebugPrefix+"pin miss, evicted", "pageNum", pageNum, "frame", victimIdx)
	return PageHandle{pageNum: pageNum, pool: p, frame: victimIdx}, nil
}

func (p *Pool) firstFreeFrameLocked() int {
	for i, f := range p.frames {
		if f.pageNum == storagemgr.NoPage {
			return i
		}
	}
	return -1
}

// loadLocked ensures the page file is large enough, reads pageNum into
// frame index idx, and marks it pinned and clean. Caller holds p.mu.
func (p *Pool) loadLocked(idx int, pageNum int32) error {
	if err := p.pageFile.EnsureCapacity(int(pageNum) + 1); err != nil {
		return err
	}
	f := p.frames[idx]
	if err := p.pageFile.ReadPage(pageNum, f.data); err != nil {
		return err
	}
	f.pageNum = pageNum
	f.dirty = false
	f.fixCount = 1
	p.numReads++
	return nil
}

// writeBackLocked flushes a frame's buffer to disk at its current page
// number and clears dirty. Caller holds p.mu.
func (p *Pool) writeBackLocked(f *frame) error {
	if err := p.pageFile.WritePage(f.pageNum, f.data); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// Unpin decrements the fix count of the page referenced by handle. It
// fails with ErrPageNotPinned if the fix count is already zero.
func (p *Pool) Unpin(handle PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolNotInitialised
	}

	idx, ok := p.directory[handle.pageNum]
	if !ok {
		return fmt.Errorf("bufferpool: unpin page %d: %w", handle.pageNum, ErrPageNotResident)
	}
	f := p.frames[idx]
	if f.fixCount == 0 {
		return fmt.Errorf("bufferpool: unpin page %d: %w", handle.pageNum, ErrPageNotPinned)
	}
	f.fixCount--
	if f.fixCount == 0 {
		p.replacer.SetEvictable(idx, true)
	}
	slog.Debug(logDebugPrefix+"unpin", "pageNum", handle.pageNum, "frame", idx, "fixCount", f.fixCount)
	return nil
}

// MarkDirty marks the page referenced by handle dirty.
func (p *Pool) MarkDirty(handle PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolNotInitialised
	}

	idx, ok := p.directory[handle.pageNum]
	if !ok {
		return fmt.Errorf("bufferpool: markDirty page %d: %w", handle.pageNum, ErrPageNotResident)
	}
	p.frames[idx].dirty = true
	p.numWrites++
	return nil
}

// ForcePage writes the resident dirty page referenced by handle back to
// disk immediately. It fails with ErrPageNotDirty if the page is clean or
// not resident.
func (p *Pool) ForcePage(handle PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolNotInitialised
	}

	idx, ok := p.directory[handle.pageNum]
	if !ok {
		return fmt.Errorf("bufferpool: forcePage %d: %w", handle.pageNum, ErrPageNotDirty)
	}
	f := p.frames[idx]
	if !f.dirty {
		return fmt.Errorf("bufferpool: forcePage %d: %w", handle.pageNum, ErrPageNotDirty)
	}
	return p.writeBackLocked(f)
}

// ForceFlushPool writes every dirty, unpinned frame back to disk.
// Pinned-dirty frames are skipped silently. It aborts on the first I/O
// failure.
func (p *Pool) ForceFlushPool() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolNotInitialised
	}

	for _, f := range p.frames {
		if f.pageNum == storagemgr.NoPage || !f.dirty || f.fixCount != 0 {
			continue
		}
		if err := p.writeBackLocked(f); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown flushes every dirty frame regardless of pin state, then
// releases all frame buffers and policy state. Further operations on the
// pool fail with ErrPoolNotInitialised.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolNotInitialised
	}

	var firstErr error
	for _, f := range p.frames {
		if f.pageNum == storagemgr.NoPage || !f.dirty {
			continue
		}
		if err := p.writeBackLocked(f); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := p.pageFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	p.frames = nil
	p.directory = nil
	p.replacer = nil
	p.closed = true

	return firstErr
}

// FrameContents returns a fresh snapshot of each frame's resident page
// number (storagemgr.NoPage for an empty frame).
func (p *Pool) FrameContents() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int32, p.numFrames)
	if p.closed {
		for i := range out {
			out[i] = storagemgr.NoPage
		}
		return out
	}
	for i, f := range p.frames {
		out[i] = f.pageNum
	}
	return out
}

// DirtyFlags returns a fresh snapshot of each frame's dirty bit.
func (p *Pool) DirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]bool, p.numFrames)
	if p.closed {
		return out
	}
	for i, f := range p.frames {
		out[i] = f.dirty
	}
	return out
}

// FixCounts returns a fresh snapshot of each frame's fix count.
func (p *Pool) FixCounts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int, p.numFrames)
	if p.closed {
		return out
	}
	for i, f := range p.frames {
		out[i] = f.fixCount
	}
	return out
}

// NumReadIO returns the number of page loads performed since Init.
func (p *Pool) NumReadIO() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numReads
}

// NumWriteIO returns the number of markDirty calls since Init.
func (p *Pool) NumWriteIO() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numWrites
}

// NumFrames returns the pool's fixed frame count.
func (p *Pool) NumFrames() int {
	return p.numFrames
}

// Strategy returns the pool's replacement strategy.
func (p *Pool) Strategy() Strategy {
	return p.strategy
}
