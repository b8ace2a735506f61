package comparator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// Comparator defines the interface for comparing local and remote entries.
type Comparator interface {
	// HasChanged determines if the local and remote content differ.
	// An error means the comparison could not be made; it never means "changed".
	HasChanged(ctx context.Context, local pubtypes.LocalEntry, remote pubtypes.RemoteEntry) (bool, error)
}

// Hasher computes the integrity token of a local key.
type Hasher interface {
	Hash(ctx context.Context, key string) (string, error)
}

// HashFunc adapts a plain function to Hasher.
type HashFunc func(ctx context.Context, key string) (string, error)

// Hash implements Hasher.
func (f HashFunc) Hash(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

// FileHasher streams files under a root through a hash function.
type FileHasher struct {
	filesystem fs.Filesystem
	root       string
	newHash    func() hash.Hash
}

// NewFileHasher creates an MD5 hasher for keys relative to root.
func NewFileHasher(filesystem fs.Filesystem, root string) *FileHasher {
	return &FileHasher{
		filesystem: filesystem,
		root:       root,
		newHash:    md5.New,
	}
}

// Hash returns the lowercase hex digest of the file behind key.
// Failures are returned as read errors for key.
func (h *FileHasher) Hash(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", sperrors.NewCanceledError("hash", err).WithKey(key)
	}

	file, err := h.filesystem.Open(filepath.Join(h.root, filepath.FromSlash(key)))
	if err != nil {
		return "", sperrors.NewReadError(key, err)
	}
	defer file.Close()

	digest := h.newHash()
	if _, err := io.Copy(digest, file); err != nil {
		return "", sperrors.NewReadError(key, fmt.Errorf("hash content: %w", err))
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// TokenComparator compares local content hashes with remote integrity tokens.
type TokenComparator struct {
	hasher Hasher
	policy pubtypes.MultipartPolicy
}

// NewTokenComparator creates a comparator that hashes local content with hasher.
// An empty policy selects MultipartReupload.
func NewTokenComparator(hasher Hasher, policy pubtypes.MultipartPolicy) *TokenComparator {
	if policy == "" {
		policy = pubtypes.MultipartReupload
	}
	return &TokenComparator{
		hasher: hasher,
		policy: policy,
	}
}

// HasChanged implements the Comparator interface for TokenComparator.
func (c *TokenComparator) HasChanged(
	ctx context.Context,
	local pubtypes.LocalEntry,
	remote pubtypes.RemoteEntry,
) (bool, error) {
	if !IsContentDigest(remote.IntegrityToken) {
		if c.policy == pubtypes.MultipartSizeOnly {
			return local.Size != remote.SizeBytes, nil
		}
		return true, nil
	}

	// A size mismatch already proves a change without reading the file.
	if local.Size != remote.SizeBytes {
		return true, nil
	}

	sum, err := c.hasher.Hash(ctx, local.RelativePath)
	if err != nil {
		return false, err
	}
	return sum != remote.IntegrityToken, nil
}

// SizeOnlyComparator only compares sizes.
type SizeOnlyComparator struct{}

// HasChanged implements the Comparator interface for SizeOnlyComparator.
func (SizeOnlyComparator) HasChanged(
	_ context.Context,
	local pubtypes.LocalEntry,
	remote pubtypes.RemoteEntry,
) (bool, error) {
	return local.Size != remote.SizeBytes, nil
}

// IsContentDigest reports whether token looks like a hex MD5 of the object bytes.
// Multipart ETags carry a "-N" part suffix and never match.
func IsContentDigest(token string) bool {
	if len(token) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
