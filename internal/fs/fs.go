// Package fs defines the filesystem abstraction the publisher reads its
// generated site tree through.
package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File is an open, seekable, read-only handle on a site file. Seeking lets
// the upload path rewind after content sniffing and lets the SDK replay the
// body on a transport retry.
type File interface {
	io.ReadSeekCloser
	Name() string
	Stat() (fs.FileInfo, error)
}

// Filesystem is the set of filesystem operations used by the scanner, the
// hasher and the upload path.
type Filesystem interface {
	// Open opens the named file for reading.
	Open(name string) (File, error)

	// Stat returns file info, following symbolic links.
	Stat(name string) (os.FileInfo, error)

	// Lstat returns file info without following symbolic links.
	Lstat(name string) (os.FileInfo, error)

	// Readlink returns the target of a symbolic link.
	Readlink(name string) (string, error)

	// Walk walks the tree rooted at root. Symbolic links are reported, not followed.
	Walk(root string, walkFn filepath.WalkFunc) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm os.FileMode) error

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
