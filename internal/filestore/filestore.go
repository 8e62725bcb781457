// ABOUTME: Content-addressed blob store for document attachments
// ABOUTME: BLAKE3 keyed hash as the reference, zstd-compressed files on disk

package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

// ErrNotFound is returned by Open when no blob has the given reference.
var ErrNotFound = errors.New("blob not found")

// ErrCorrupt is returned by Open when stored bytes no longer match their reference.
var ErrCorrupt = errors.New("blob corrupt")

// DefaultContentType is used when neither the caller nor the file extension
// names a content type.
const DefaultContentType = "application/octet-stream"

// blobDomainKey separates attachment hashes from any other BLAKE3 use.
// ASCII "docket.filestore.blob" zero-padded to 32 bytes.
var blobDomainKey = [32]byte{
	'd', 'o', 'c', 'k', 'e', 't', '.', 'f', 'i', 'l', 'e', 's', 't', 'o', 'r', 'e',
	'.', 'b', 'l', 'o', 'b', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// zstd encoders and decoders are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("filestore: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("filestore: zstd decoder initialization failed: " + err.Error())
	}
}

// Store keeps blobs under dir as <dir>/<ref[:2]>/<ref>.zst.
type Store struct {
	dir     string
	maxSize int64
}

// New creates a Store rooted at dir, creating it if needed. maxSize bounds
// the uncompressed size of a single blob; zero means unlimited.
func New(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating file store directory: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// MaxSize returns the configured per-file limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save stores data and returns a reference describing it. Saving identical
// bytes twice yields the same Ref and writes nothing the second time.
func (s *Store) Save(ctx context.Context, name, contentType string, data []byte) (*store.FileRef, error) {
	name = cleanName(name)
	if name == "" {
		return nil, errs.Validation("file name is required")
	}
	if len(data) == 0 {
		return nil, errs.Validation("file is empty")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, errs.Validation("file exceeds maximum size of %d bytes", s.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := Hash(data)
	path := s.path(ref)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(path, encoder.EncodeAll(data, nil)); err != nil {
			return nil, errs.Internal("storing file", err)
		}
	} else if err != nil {
		return nil, errs.Internal("checking file", err)
	}

	return &store.FileRef{
		Ref:  ref,
		Name: name,
		Type: detectType(name, contentType),
		Size: int64(len(data)),
	}, nil
}

// Open returns the uncompressed bytes stored under ref.
func (s *Store) Open(ctx context.Context, ref string) ([]byte, error) {
	if !validRef(ref) {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if Hash(data) != ref {
		return nil, ErrCorrupt
	}
	return data, nil
}

// Hash returns the hex-encoded keyed BLAKE3 digest used as a blob reference.
func Hash(data []byte) string {
	h, err := blake3.NewKeyed(blobDomainKey[:])
	if err != nil {
		panic("filestore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) path(ref string) string {
	return filepath.Join(s.dir, ref[:2], ref+".zst")
}

// write places data at path via a temp file and rename so readers never see
// a partial blob.
func (s *Store) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func validRef(ref string) bool {
	if len(ref) != 64 {
		return false
	}
	_, err := hex.DecodeString(ref)
	return err == nil
}

// cleanName strips any directory components a client may have sent.
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

func detectType(name, contentType string) string {
	if ct := strings.TrimSpace(contentType); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return DefaultContentType
}
