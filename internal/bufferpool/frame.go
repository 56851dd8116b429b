package bufferpool

import "github.com/tuannm99/pagepool/internal/storagemgr"

// frame holds one resident page and its bookkeeping inside the pool. It is
// the generalized, policy-agnostic counterpart of the teacher's
// bufferpool.Frame: that type baked a CLOCK ref bit directly into the
// struct, whereas here replacement state lives entirely behind the
// Replacer interface so the same frame shape serves FIFO, LRU, and CLOCK.
type frame struct {
	pageNum  int32
	data     []byte
	dirty    bool
	fixCount int
}

func newFrame() *frame {
	return &frame{
		pageNum: storagemgr.NoPage,
		data:    make([]byte, storagemgr.PageSize),
	}
}
