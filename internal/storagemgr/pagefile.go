package storagemgr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// PageFile is a flat array of fixed-size pages backed by a single OS file.
// It implements the Storage Manager contract of spec.md §6.1: create,
// open/close yielding a handle, block-granular read/write by page number,
// append a zero-filled block, and ensure capacity.
type PageFile struct {
	mu     sync.Mutex
	name   string
	f      *os.File
	curPos int
}

// CreatePageFile creates a new, empty page file. It does not allocate any
// pages; EnsureCapacity grows it on demand. Creation is deliberately
// separate from Open: the buffer manager never creates files on a miss,
// it only grows an already-open one (spec.md §4.5).
func CreatePageFile(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return fmt.Errorf("storagemgr: create %s: %w", name, err)
	}
	return f.Close()
}

// DestroyPageFile removes a page file from disk.
func DestroyPageFile(name string) error {
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("storagemgr: destroy %s: %w", name, err)
	}
	return nil
}

// Open opens an existing page file. It fails with ErrFileNotFound if the
// file does not exist on disk; it never creates one.
func Open(name string) (*PageFile, error) {
	f, err := os.OpenFile(name, os.O_RDWR, filePerm)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storagemgr: open %s: %w", name, ErrFileNotFound)
		}
		return nil, fmt.Errorf("storagemgr: open %s: %w", name, err)
	}
	return &PageFile{name: name, f: f}, nil
}

// Close releases the underlying OS file handle.
func (pf *PageFile) Close() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.f.Close()
}

// FileName returns the name the page file was opened with.
func (pf *PageFile) FileName() string {
	return pf.name
}

// CurrentPosition returns the page number most recently read or written.
func (pf *PageFile) CurrentPosition() int {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.curPos
}

// TotalPages derives the page count from the file's current size.
func (pf *PageFile) TotalPages() (int, error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.totalPagesLocked()
}

func (pf *PageFile) totalPagesLocked() (int, error) {
	info, err := pf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("storagemgr: stat %s: %w", pf.name, err)
	}
	return int(info.Size() / PageSize), nil
}

// ReadPage reads exactly PageSize bytes for pageNum into dst. A short read
// at or beyond the current end of file is zero-filled rather than treated
// as an error — callers that need a hard existence check should compare
// against TotalPages first.
func (pf *PageFile) ReadPage(pageNum int32, dst []byte) error {
	if len(dst) != PageSize {
		return fmt.Errorf("storagemgr: read page %d: dst must be exactly %d bytes: %w", pageNum, PageSize, ErrInvalidRequest)
	}
	if pageNum < 0 {
		return fmt.Errorf("storagemgr: read page %d: %w", pageNum, ErrReadNonExistingPage)
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	off := int64(pageNum) * PageSize
	n, err := pf.f.ReadAt(dst, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("storagemgr: read page %d: %w", pageNum, ErrIoError)
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	pf.curPos = int(pageNum)
	return nil
}

// WritePage writes exactly PageSize bytes from src to pageNum's offset.
func (pf *PageFile) WritePage(pageNum int32, src []byte) error {
	if len(src) != PageSize {
		return fmt.Errorf("storagemgr: write page %d: src must be exactly %d bytes: %w", pageNum, PageSize, ErrInvalidRequest)
	}
	if pageNum < 0 {
		return fmt.Errorf("storagemgr: write page %d: %w", pageNum, ErrInvalidRequest)
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	off := int64(pageNum) * PageSize
	n, err := pf.f.WriteAt(src, off)
	if err != nil {
		return fmt.Errorf("storagemgr: write page %d: %w", pageNum, ErrWriteFailed)
	}
	if n != PageSize {
		return fmt.Errorf("storagemgr: write page %d: short write (%d/%d bytes): %w", pageNum, n, PageSize, ErrWriteFailed)
	}
	pf.curPos = int(pageNum)
	return nil
}

// AppendEmptyPage grows the file by one zero-filled page.
func (pf *PageFile) AppendEmptyPage() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	total, err := pf.totalPagesLocked()
	if err != nil {
		return err
	}

	zero := make([]byte, PageSize)
	off := int64(total) * PageSize
	n, err := pf.f.WriteAt(zero, off)
	if err != nil {
		return fmt.Errorf("storagemgr: append page %d: %w", total, ErrWriteFailed)
	}
	if n != PageSize {
		return fmt.Errorf("storagemgr: append page %d: short write (%d/%d bytes): %w", total, n, PageSize, ErrWriteFailed)
	}
	pf.curPos = total
	return nil
}

// EnsureCapacity grows the file with zero-filled pages, one at a time,
// until it holds at least n pages. It is a no-op if the file is already
// large enough.
func (pf *PageFile) EnsureCapacity(n int) error {
	for {
		total, err := pf.TotalPages()
		if err != nil {
			return err
		}
		if total >= n {
			return nil
		}
		if err := pf.AppendEmptyPage(); err != nil {
			return err
		}
	}
}
