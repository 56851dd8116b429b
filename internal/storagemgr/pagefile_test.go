package storagemgr

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileReturnsFileNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.page"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestCreateThenOpen_EmptyFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))

	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	total, err := pf.TotalPages()
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, name, pf.FileName())
}

func TestCreate_AlreadyExistsFails(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	require.Error(t, CreatePageFile(name))
}

func TestEnsureCapacity_GrowsWithZeroFilledPages(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	require.NoError(t, pf.EnsureCapacity(3))
	total, err := pf.TotalPages()
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	buf := make([]byte, PageSize)
	require.NoError(t, pf.ReadPage(2, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}

	// Idempotent: asking for a smaller capacity doesn't shrink or error.
	require.NoError(t, pf.EnsureCapacity(1))
	total, err = pf.TotalPages()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestWritePageThenReadPage_RoundTrips(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	require.NoError(t, pf.EnsureCapacity(1))

	want := make([]byte, PageSize)
	for i := range want {
		want[i] = byte(i % 251)
	}
	require.NoError(t, pf.WritePage(0, want))

	got := make([]byte, PageSize)
	require.NoError(t, pf.ReadPage(0, got))
	assert.Equal(t, want, got)
	assert.Equal(t, 0, pf.CurrentPosition())
}

func TestReadPage_BeyondEOFIsZeroFilled(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = 0xAB
	}
	require.NoError(t, pf.ReadPage(5, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestReadPage_NegativePageNumberFails(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	buf := make([]byte, PageSize)
	err = pf.ReadPage(NoPage, buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadNonExistingPage))
}

func TestWritePage_WrongSizedBufferFails(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	pf, err := Open(name)
	require.NoError(t, err)
	defer pf.Close()

	err = pf.WritePage(0, make([]byte, PageSize-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestDestroyPageFile_RemovesFromDisk(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.page")
	require.NoError(t, CreatePageFile(name))
	require.NoError(t, DestroyPageFile(name))

	_, err := Open(name)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}
