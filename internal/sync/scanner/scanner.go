package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// maxLinkHops bounds symlink resolution of the scan root.
const maxLinkHops = 40

// Scanner discovers the files of a local tree.
type Scanner struct {
	filesystem fs.Filesystem
	logger     *slog.Logger
}

// NewScanner creates a new scanner reading from filesystem.
func NewScanner(filesystem fs.Filesystem, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		filesystem: filesystem,
		logger:     logger,
	}
}

// Scan returns one entry per regular file under root. Directories are
// descended but not reported. Symlinks to files are followed; symlinks to
// directories are skipped so the walk cannot cycle.
// Any unreadable directory or file fails the whole scan with a traversal error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]pubtypes.LocalEntry, error) {
	resolved, err := s.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	var entries []pubtypes.LocalEntry
	err = s.filesystem.Walk(resolved, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return sperrors.NewTraversalError(p, walkErr)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := s.filesystem.Stat(p)
			if err != nil {
				return sperrors.NewTraversalError(p, err)
			}
			if target.IsDir() {
				s.logger.WarnContext(ctx, "skipping directory symlink", "path", p)
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			s.logger.DebugContext(ctx, "skipping irregular file", "path", p, "mode", info.Mode().String())
			return nil
		}

		rel, err := filepath.Rel(resolved, p)
		if err != nil {
			return sperrors.NewTraversalError(p, err)
		}

		entries = append(entries, pubtypes.LocalEntry{
			RelativePath: filepath.ToSlash(rel),
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, traversalError(resolved, err)
	}

	s.logger.DebugContext(ctx, "local scan complete", "root", resolved, "files", len(entries))
	return entries, nil
}

// resolveRoot follows symlinks at root and checks the result is a directory.
func (s *Scanner) resolveRoot(root string) (string, error) {
	current := filepath.Clean(root)
	for range maxLinkHops {
		info, err := s.filesystem.Lstat(current)
		if err != nil {
			return "", sperrors.NewTraversalError(current, err)
		}

		if info.Mode()&os.ModeSymlink == 0 {
			if !info.IsDir() {
				return "", sperrors.NewTraversalError(current, fmt.Errorf("not a directory"))
			}
			return current, nil
		}

		target, err := s.filesystem.Readlink(current)
		if err != nil {
			return "", sperrors.NewTraversalError(current, err)
		}
		if !filepath.IsAbs(target) && !path.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = filepath.Clean(target)
	}
	return "", sperrors.NewTraversalError(root, fmt.Errorf("too many levels of symbolic links"))
}

// traversalError keeps an existing publisher error intact and wraps anything else.
func traversalError(root string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return sperrors.NewCanceledError("scan", err)
	}

	var pubErr *sperrors.Error
	if errors.As(err, &pubErr) {
		return pubErr
	}
	return sperrors.NewTraversalError(root, err)
}
