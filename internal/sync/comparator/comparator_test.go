package comparator

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs/billy"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

func computeMD5String(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}

func setupSite(t *testing.T, files map[string]string) *billy.FS {
	t.Helper()
	fs := billy.NewInMemoryFS()
	for name, content := range files {
		require.NoError(t, fs.WriteFile("/site/"+name, []byte(content), 0o644))
	}
	return fs
}

func TestFileHasher(t *testing.T) {
	ctx := context.Background()
	fs := setupSite(t, map[string]string{"css/b.css": "body{}"})
	hasher := NewFileHasher(fs, "/site")

	t.Run("matches store digest", func(t *testing.T) {
		sum, err := hasher.Hash(ctx, "css/b.css")
		require.NoError(t, err)
		assert.Equal(t, computeMD5String("body{}"), sum)
	})

	t.Run("missing file is a read error", func(t *testing.T) {
		_, err := hasher.Hash(ctx, "gone.css")
		require.Error(t, err)
		assert.True(t, sperrors.IsRead(err))
		assert.Contains(t, err.Error(), "gone.css")
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := hasher.Hash(canceled, "css/b.css")
		assert.ErrorIs(t, err, sperrors.ErrCanceled)
	})
}

func TestTokenComparator(t *testing.T) {
	ctx := context.Background()
	fs := setupSite(t, map[string]string{"a.html": "hello world"})
	comp := NewTokenComparator(NewFileHasher(fs, "/site"), "")
	local := pubtypes.LocalEntry{RelativePath: "a.html", Size: 11}

	t.Run("same size same MD5", func(t *testing.T) {
		remote := pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 11, IntegrityToken: computeMD5String("hello world")}
		changed, err := comp.HasChanged(ctx, local, remote)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("same size different MD5", func(t *testing.T) {
		remote := pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 11, IntegrityToken: computeMD5String("world hello")}
		changed, err := comp.HasChanged(ctx, local, remote)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("different sizes", func(t *testing.T) {
		remote := pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 3, IntegrityToken: computeMD5String("abc")}
		changed, err := comp.HasChanged(ctx, local, remote)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("multipart token is reuploaded by default", func(t *testing.T) {
		remote := pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 11, IntegrityToken: computeMD5String("x") + "-2"}
		changed, err := comp.HasChanged(ctx, local, remote)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("empty token is reuploaded by default", func(t *testing.T) {
		remote := pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 11}
		changed, err := comp.HasChanged(ctx, local, remote)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}

func TestTokenComparatorSizeOnlyPolicy(t *testing.T) {
	ctx := context.Background()
	hashed := false
	hasher := HashFunc(func(context.Context, string) (string, error) {
		hashed = true
		return "", nil
	})
	comp := NewTokenComparator(hasher, pubtypes.MultipartSizeOnly)
	local := pubtypes.LocalEntry{RelativePath: "big.mp4", Size: 100}

	changed, err := comp.HasChanged(ctx, local, pubtypes.RemoteEntry{SizeBytes: 100, IntegrityToken: "abc-3"})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = comp.HasChanged(ctx, local, pubtypes.RemoteEntry{SizeBytes: 99, IntegrityToken: "abc-3"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, hashed)
}

func TestTokenComparatorHashFailure(t *testing.T) {
	readErr := sperrors.NewReadError("a.html", errors.New("permission denied"))
	comp := NewTokenComparator(HashFunc(func(context.Context, string) (string, error) {
		return "", readErr
	}), "")

	changed, err := comp.HasChanged(
		context.Background(),
		pubtypes.LocalEntry{RelativePath: "a.html", Size: 1},
		pubtypes.RemoteEntry{Key: "a.html", SizeBytes: 1, IntegrityToken: computeMD5String("a")},
	)
	assert.False(t, changed)
	assert.ErrorIs(t, err, readErr)
}

func TestIsContentDigest(t *testing.T) {
	assert.True(t, IsContentDigest(computeMD5String("x")))
	assert.False(t, IsContentDigest(""))
	assert.False(t, IsContentDigest("d41d8cd98f00b204e9800998ecf8427e-4"))
	assert.False(t, IsContentDigest("zz1d8cd98f00b204e9800998ecf8427e"))
}

func TestSizeOnlyComparator(t *testing.T) {
	changed, err := SizeOnlyComparator{}.HasChanged(context.Background(),
		pubtypes.LocalEntry{Size: 1}, pubtypes.RemoteEntry{SizeBytes: 2})
	require.NoError(t, err)
	assert.True(t, changed)
}
