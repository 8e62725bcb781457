// ABOUTME: Tests for the content-addressed file store
// ABOUTME: Covers round trips, deduplication, size limits, and corruption detection

package filestore

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docket/internal/errs"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	s, err := New(t.TempDir(), maxSize)
	require.NoError(t, err)
	return s
}

func TestSaveOpen_RoundTrip(t *testing.T) {
	s := newTestStore(t, 1<<20)
	ctx := context.Background()
	data := []byte(strings.Repeat("contract clause\n", 200))

	ref, err := s.Save(ctx, "contract.pdf", "", data)
	require.NoError(t, err)
	assert.Len(t, ref.Ref, 64)
	assert.Equal(t, "contract.pdf", ref.Name)
	assert.Equal(t, int64(len(data)), ref.Size)
	assert.Equal(t, "application/pdf", ref.Type)

	got, err := s.Open(ctx, ref.Ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// compressed on disk
	info, err := os.Stat(s.path(ref.Ref))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(data)))
}

func TestSave_Deduplicates(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	a, err := s.Save(ctx, "a.pdf", "application/pdf", []byte("same bytes"))
	require.NoError(t, err)
	b, err := s.Save(ctx, "b.pdf", "application/pdf", []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, a.Ref, b.Ref)
	assert.Equal(t, "b.pdf", b.Name)
}

func TestSave_StripsDirectories(t *testing.T) {
	s := newTestStore(t, 0)

	ref, err := s.Save(context.Background(), "../../etc/passwd", "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", ref.Name)
	assert.Equal(t, DefaultContentType, ref.Type)

	ref, err = s.Save(context.Background(), `C:\docs\memo.txt`, "text/markdown", []byte("y"))
	require.NoError(t, err)
	assert.Equal(t, "memo.txt", ref.Name)
	assert.Equal(t, "text/markdown", ref.Type)
}

func TestSave_Validation(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()

	_, err := s.Save(ctx, "big.bin", "", bytes.Repeat([]byte{1}, 9))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = s.Save(ctx, "empty.bin", "", nil)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = s.Save(ctx, "  ", "", []byte("x"))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = s.Save(ctx, "exact.bin", "", bytes.Repeat([]byte{1}, 8))
	assert.NoError(t, err)
}

func TestOpen_NotFound(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	_, err := s.Open(ctx, Hash([]byte("never stored")))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Open(ctx, "../../secret")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_DetectsCorruption(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	ref, err := s.Save(ctx, "a.txt", "", []byte("original"))
	require.NoError(t, err)
	other, err := s.Save(ctx, "b.txt", "", []byte("tampered"))
	require.NoError(t, err)

	swapped, err := os.ReadFile(s.path(other.Ref))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.path(ref.Ref), swapped, 0o600))

	_, err = s.Open(ctx, ref.Ref)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, os.WriteFile(s.path(ref.Ref), []byte("not zstd"), 0o600))
	_, err = s.Open(ctx, ref.Ref)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestHash_Stable(t *testing.T) {
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}
