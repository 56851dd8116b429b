// Package storagemgr implements the page-file storage manager: a flat,
// fixed-size-page file opened by name, with block-granular read/write,
// zero-filled growth, and capacity accounting. It is the external
// collaborator the buffer manager (package bufferpool) loads pages from
// and writes pages back to.
package storagemgr

const (
	// PageSize is the fixed block size in bytes. Page N occupies byte
	// range [N*PageSize, (N+1)*PageSize) in the backing file.
	PageSize = 4096

	// NoPage is the sentinel page number meaning "no page".
	NoPage int32 = -1

	filePerm = 0o644
)
