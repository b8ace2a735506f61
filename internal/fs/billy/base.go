package billy

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// BaseOSFS is the host filesystem without a chroot: absolute paths are used
// as given and relative paths resolve against the working directory.
type BaseOSFS struct {
	osfs.ChrootOS
}

// Chroot returns a filesystem confined to path.
//
//nolint:ireturn // signature is fixed by billy.Chroot.
func (b *BaseOSFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root reports "/" since paths are not rewritten.
func (b *BaseOSFS) Root() string {
	return "/"
}

// NewBaseOSFS returns the filesystem a command-line publish reads from, so a
// source like "public" means ./public.
func NewBaseOSFS() *FS {
	return NewFS(&BaseOSFS{})
}
