// Package billy backs fs.Filesystem with go-billy, either on the host
// filesystem or in memory.
package billy

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/input-output-hk/sitepublish/internal/fs"
)

var _ parentfs.Filesystem = (*FS)(nil)

// FS adapts a billy.Filesystem.
type FS struct {
	fs billy.Filesystem
}

// NewFS wraps an existing go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewInMemoryFS returns an empty memfs-backed filesystem.
func NewInMemoryFS() *FS {
	return NewFS(memfs.New())
}

// NewOSFS returns a filesystem over the host tree rooted at path.
func NewOSFS(path string) *FS {
	return NewFS(osfs.New(path))
}

// wrap prefixes err with the operation and path, preserving the chain so that
// errors.Is(err, os.ErrNotExist) keeps working.
func wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("billy: %s %q: %w", op, name, err)
}

//nolint:ireturn // callers work against parentfs.File.
func (b *FS) Open(name string) (parentfs.File, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, wrap("open", name, err)
	}
	return &file{File: f, owner: b}, nil
}

func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	return info, wrap("stat", name, err)
}

func (b *FS) Lstat(name string) (os.FileInfo, error) {
	info, err := b.fs.Lstat(name)
	return info, wrap("lstat", name, err)
}

func (b *FS) Readlink(name string) (string, error) {
	target, err := b.fs.Readlink(name)
	return target, wrap("readlink", name, err)
}

// Symlink creates link pointing at target. Used to build fixture trees.
func (b *FS) Symlink(target, link string) error {
	return wrap("symlink", link, b.fs.Symlink(target, link))
}

// Walk visits root in lexical order. Symbolic links are reported with their
// Lstat info and never descended.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	return wrap("walk", root, util.Walk(b.fs, root, walkFn))
}

func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	return wrap("mkdir", path, b.fs.MkdirAll(path, perm))
}

func (b *FS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return wrap("write", name, util.WriteFile(b.fs, name, data, perm))
}

// file decorates billy.File errors with its name. io.EOF passes through
// untouched so readers terminate normally.
type file struct {
	billy.File
	owner *FS
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.File.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = wrap("read", f.Name(), err)
	}
	return n, err
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.File.Seek(offset, whence)
	return pos, wrap("seek", f.Name(), err)
}

func (f *file) Close() error {
	return wrap("close", f.Name(), f.File.Close())
}

// Stat goes through the owning filesystem because billy.File has no Stat.
func (f *file) Stat() (iofs.FileInfo, error) {
	return f.owner.Stat(f.Name())
}
