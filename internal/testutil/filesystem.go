package testutil

import (
	"os"
	"path/filepath"

	"github.com/input-output-hk/sitepublish/internal/fs"
)

// UnreadableDirFS wraps a Filesystem so that listing Dir fails partway
// through a walk, the way a directory without read permission does. The walk
// function receives Dir's info together with Err and Dir is not descended.
type UnreadableDirFS struct {
	fs.Filesystem
	Dir string
	Err error
}

func (u *UnreadableDirFS) Walk(root string, walkFn filepath.WalkFunc) error {
	return u.Filesystem.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && info.IsDir() && filepath.Clean(path) == filepath.Clean(u.Dir) {
			if cbErr := walkFn(path, info, u.Err); cbErr != nil {
				return cbErr
			}
			return filepath.SkipDir
		}
		return walkFn(path, info, err)
	})
}
