package bufferpool

import "errors"

// Sentinel errors, one per spec.md §6.2 error code this package can raise.
var (
	ErrPoolNotInitialised = errors.New("bufferpool: pool not initialised")
	ErrPoolFull           = errors.New("bufferpool: no free frame available (all pinned)")
	ErrPageNotPinned      = errors.New("bufferpool: page is not pinned")
	ErrPageNotDirty       = errors.New("bufferpool: page is not marked dirty")
	ErrPageNotResident    = errors.New("bufferpool: page is not currently resident")
	ErrInvalidRequest     = errors.New("bufferpool: invalid request")
)
