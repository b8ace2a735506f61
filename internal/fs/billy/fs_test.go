package billy

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]struct {
	fs   *FS
	root string
} {
	t.Helper()
	return map[string]struct {
		fs   *FS
		root string
	}{
		"memfs": {fs: NewInMemoryFS(), root: "/site"},
		"osfs":  {fs: NewOSFS("/"), root: t.TempDir()},
		"base":  {fs: NewBaseOSFS(), root: t.TempDir()},
	}
}

func TestFS_OpenReadSeek(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(b.root, "css", "main.css")
			require.NoError(t, b.fs.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, b.fs.WriteFile(path, []byte("body{}"), 0o644))

			f, err := b.fs.Open(path)
			require.NoError(t, err)
			defer f.Close()

			data, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, "body{}", string(data))

			pos, err := f.Seek(0, io.SeekStart)
			require.NoError(t, err)
			assert.Zero(t, pos)

			data, err = io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, "body{}", string(data), "rewound body must replay in full")

			info, err := f.Stat()
			require.NoError(t, err)
			assert.EqualValues(t, 6, info.Size())
			assert.True(t, info.Mode().IsRegular())
		})
	}
}

func TestFS_WalkReportsSymlinksWithoutFollowing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.fs.MkdirAll(filepath.Join(b.root, "docs"), 0o755))
			require.NoError(t, b.fs.WriteFile(filepath.Join(b.root, "index.html"), []byte("i"), 0o644))
			require.NoError(t, b.fs.WriteFile(filepath.Join(b.root, "docs", "a.html"), []byte("a"), 0o644))
			require.NoError(t, b.fs.Symlink(b.root, filepath.Join(b.root, "docs", "loop")))

			var files, links []string
			err := b.fs.Walk(b.root, func(path string, info os.FileInfo, err error) error {
				require.NoError(t, err)
				rel, relErr := filepath.Rel(b.root, path)
				require.NoError(t, relErr)
				switch {
				case info.Mode()&os.ModeSymlink != 0:
					links = append(links, filepath.ToSlash(rel))
				case info.Mode().IsRegular():
					files = append(files, filepath.ToSlash(rel))
				}
				return nil
			})
			require.NoError(t, err)

			sort.Strings(files)
			assert.Equal(t, []string{"docs/a.html", "index.html"}, files)
			assert.Equal(t, []string{"docs/loop"}, links)
		})
	}
}

func TestFS_SymlinkPrimitives(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.fs.MkdirAll(b.root, 0o755))
			target := filepath.Join(b.root, "robots.txt")
			link := filepath.Join(b.root, "robots-link.txt")
			require.NoError(t, b.fs.WriteFile(target, []byte("User-agent: *"), 0o644))
			require.NoError(t, b.fs.Symlink(target, link))

			linfo, err := b.fs.Lstat(link)
			require.NoError(t, err)
			assert.NotZero(t, linfo.Mode()&os.ModeSymlink)

			info, err := b.fs.Stat(link)
			require.NoError(t, err)
			assert.True(t, info.Mode().IsRegular())
			assert.EqualValues(t, 13, info.Size())

			got, err := b.fs.Readlink(link)
			require.NoError(t, err)
			assert.Equal(t, target, got)
		})
	}
}

func TestFS_ErrorsKeepCause(t *testing.T) {
	fs := NewInMemoryFS()

	_, err := fs.Open("/missing.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), `billy: open "/missing.html"`)

	_, err = fs.Stat("/missing.html")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.Lstat("/missing.html")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBaseOSFS_RelativePathsUseWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "public"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public", "index.html"), []byte("<h1/>"), 0o644))
	t.Chdir(dir)

	fs := NewBaseOSFS()

	info, err := fs.Stat("public/index.html")
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size())

	var seen []string
	require.NoError(t, fs.Walk("public", func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if info.Mode().IsRegular() {
			seen = append(seen, filepath.ToSlash(path))
		}
		return nil
	}))
	assert.Equal(t, []string{"public/index.html"}, seen)

	abs, err := fs.Stat(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, abs.Size())
}
