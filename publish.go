package sitepublish

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	syncpkg "github.com/input-output-hk/sitepublish/internal/sync/sync"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// Publish reconciles bucket with the tree at localPath.
//
// Returns:
//   - *pubtypes.Report: per-key outcomes and counts, including failed keys
//   - error: non-nil only when the pass aborted before any mutation
//
// Errors:
//   - ErrInvalidInput: If localPath or bucket is empty
//   - ErrInvalidPattern: If an include or exclude pattern is malformed
//   - ErrTraversal: If the local tree could not be read
//   - ErrListing: If the remote listing failed on any page
//
// A report with HasFailures() true means the pass completed but some keys
// failed; the bucket then holds a mix of old and new content for those keys.
func (c *Client) Publish(
	ctx context.Context,
	localPath, bucket string,
	opts ...pubtypes.PublishOption,
) (*pubtypes.Report, error) {
	cfg := &pubtypes.PublishOptionConfig{
		DeleteExtra:     true,
		MultipartPolicy: pubtypes.MultipartReupload,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c.mu.RLock()
	filesystem := c.fs
	c.mu.RUnlock()

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = c.concurrency
	}

	manager := syncpkg.NewManager(c.s3Client, filesystem, c.logger)
	return manager.Sync(ctx, &syncpkg.Config{
		LocalPath:       localPath,
		Bucket:          bucket,
		Prefix:          cfg.Prefix,
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		DeleteExtra:     cfg.DeleteExtra,
		DryRun:          cfg.DryRun,
		Parallelism:     parallelism,
		Limiter:         newLimiter(cfg.RequestsPerSec, cfg.RequestBurst),
		MultipartPolicy: cfg.MultipartPolicy,
		SniffContent:    cfg.SniffContent,
		CacheControl:    cfg.CacheControl,
		StorageClass:    cfg.StorageClass,
		BatchDelete:     cfg.BatchDelete,
		Progress:        cfg.Progress,
	})
}

// Plan computes the operations a Publish call would perform without
// performing any of them. Every planned key is reported as skipped.
func (c *Client) Plan(
	ctx context.Context,
	localPath, bucket string,
	opts ...pubtypes.PublishOption,
) (*pubtypes.Report, error) {
	return c.Publish(ctx, localPath, bucket, append(opts, WithDryRun(true))...)
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 || math.IsInf(perSecond, 1) {
		return nil
	}
	if burst <= 0 {
		burst = max(1, int(math.Ceil(perSecond)))
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
