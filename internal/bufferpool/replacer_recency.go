package bufferpool

import (
	"container/list"
	"sync"
)

// recencyReplacer backs both the FIFO and LRU strategies: it threads frame
// IDs through a doubly linked list ordered by recency (front = most
// recently accessed), the same container/list + mutex shape pkg/cache's
// LRUManager uses, generalized to carry the evictable/present bookkeeping
// that clockReplacer also needs to satisfy the shared Replacer interface.
type recencyReplacer struct {
	mu        sync.Mutex
	order     *list.List
	elems     map[int]*list.Element
	evictable map[int]bool
	size      int
}

func newRecencyReplacer(capacity int) Replacer {
	return &recencyReplacer{
		order:     list.New(),
		elems:     make(map[int]*list.Element, capacity),
		evictable: make(map[int]bool, capacity),
	}
}

func (r *recencyReplacer) RecordAccess(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.elems[frameID]; ok {
		r.order.MoveToFront(e)
		return
	}
	r.elems[frameID] = r.order.PushFront(frameID)
}

func (r *recencyReplacer) SetEvictable(frameID int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, present := r.elems[frameID]; !present {
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

func (r *recencyReplacer) Evict() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return -1, false
	}
	for e := r.order.Back(); e != nil; e = e.Prev() {
		frameID := e.Value.(int)
		if r.evictable[frameID] {
			r.order.Remove(e)
			delete(r.elems, frameID)
			delete(r.evictable, frameID)
			r.size--
			return frameID, true
		}
	}
	return -1, false
}

func (r *recencyReplacer) Remove(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elems[frameID]
	if !ok {
		return
	}
	if r.evictable[frameID] {
		r.size--
	}
	r.order.Remove(e)
	delete(r.elems, frameID)
	delete(r.evictable, frameID)
}

func (r *recencyReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
