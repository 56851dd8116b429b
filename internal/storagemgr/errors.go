package storagemgr

import "errors"

// Sentinel errors, one per spec.md §6.2 error code this package can raise.
// Callers distinguish them with errors.Is; page reads, writes and appends,
// and opening a missing file, wrap one of these with operation-specific
// context via fmt.Errorf("...: %w", ...). Errors from creating, destroying,
// closing or stat-ing the file, and from opening it for any other reason,
// wrap the underlying os error instead.
var (
	ErrFileNotFound        = errors.New("storagemgr: page file not found")
	ErrReadNonExistingPage = errors.New("storagemgr: read of a non-existing page")
	ErrWriteFailed         = errors.New("storagemgr: write failed")
	ErrIoError             = errors.New("storagemgr: I/O error")
	ErrInvalidRequest      = errors.New("storagemgr: invalid request")
)
