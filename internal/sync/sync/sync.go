package sync

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/internal/s3api"
	"github.com/input-output-hk/sitepublish/internal/sync/comparator"
	"github.com/input-output-hk/sitepublish/internal/sync/executor"
	"github.com/input-output-hk/sitepublish/internal/sync/lister"
	"github.com/input-output-hk/sitepublish/internal/sync/planner"
	"github.com/input-output-hk/sitepublish/internal/sync/scanner"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// Manager coordinates the phases of a publish pass.
type Manager struct {
	s3Client   s3api.S3API
	filesystem fs.Filesystem
	logger     *slog.Logger
}

// NewManager creates a new publish manager.
func NewManager(s3Client s3api.S3API, filesystem fs.Filesystem, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		s3Client:   s3Client,
		filesystem: filesystem,
		logger:     logger,
	}
}

// Sync reconciles config.Bucket under config.Prefix with config.LocalPath.
//
// A non-nil error means the pass aborted before any remote mutation: invalid
// input, a traversal error or a listing error. Per-key failures are reported
// in the returned report instead.
func (m *Manager) Sync(ctx context.Context, config *Config) (*pubtypes.Report, error) {
	startTime := time.Now()

	if err := validate(config); err != nil {
		return nil, err
	}
	prefix := NormalizePrefix(config.Prefix)

	matcher, err := scanner.NewPatternMatcher(config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, &sperrors.Error{Op: "validate", Code: sperrors.CodeInvalidPattern, Err: err}
	}

	// Phase 1: Inventory Building
	local, remote, err := m.buildInventory(ctx, config, prefix)
	if err != nil {
		return nil, err
	}
	local, remote = filterInventory(matcher, local, remote)

	// Phase 2: Change Detection
	hasher := comparator.NewFileHasher(m.filesystem, config.LocalPath)
	comp := comparator.NewTokenComparator(hasher, config.MultipartPolicy)
	ops := planner.NewPlanner(comp, config.Parallelism, m.logger).Plan(ctx, local, remote)

	report := &pubtypes.Report{
		Bucket:    config.Bucket,
		Prefix:    prefix,
		DryRun:    config.DryRun,
		Unchanged: ops.Unchanged.Cardinality(),
	}
	var results []pubtypes.OperationResult
	for key, err := range ops.Failed {
		results = append(results, pubtypes.OperationResult{
			Key:     key,
			Action:  pubtypes.ActionCompare,
			Outcome: pubtypes.OutcomeFailed,
			Err:     err,
		})
	}

	if !config.DeleteExtra || config.DryRun {
		results = append(results, skipped(ops.ToRemove.ToSlice(), pubtypes.ActionRemove)...)
		ops.ToRemove.Clear()
	}
	if config.DryRun {
		results = append(results, skipped(ops.ToAdd.ToSlice(), pubtypes.ActionAdd)...)
		results = append(results, skipped(ops.ToUpdate.ToSlice(), pubtypes.ActionUpdate)...)
		ops.ToAdd.Clear()
		ops.ToUpdate.Clear()
	}

	// Phase 3: Execution
	exec := executor.NewExecutor(m.s3Client, m.filesystem, m.logger)
	results = append(results, exec.Apply(ctx, &executor.Config{
		Bucket:       config.Bucket,
		Prefix:       prefix,
		SourceDir:    config.LocalPath,
		Parallelism:  config.Parallelism,
		Limiter:      config.Limiter,
		BatchDelete:  config.BatchDelete,
		SniffContent: config.SniffContent,
		CacheControl: config.CacheControl,
		StorageClass: config.StorageClass,
		Progress:     config.Progress,
	}, ops)...)

	summarize(report, results)
	report.Duration = time.Since(startTime)

	m.logger.InfoContext(ctx, "publish pass complete",
		"bucket", config.Bucket,
		"prefix", prefix,
		"dry_run", config.DryRun,
		"added", report.Added,
		"updated", report.Updated,
		"removed", report.Removed,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// buildInventory scans the local tree and lists the bucket concurrently.
// Either failure cancels the other and aborts the pass.
func (m *Manager) buildInventory(
	ctx context.Context,
	config *Config,
	prefix string,
) ([]pubtypes.LocalEntry, []pubtypes.RemoteEntry, error) {
	var (
		local  []pubtypes.LocalEntry
		remote []pubtypes.RemoteEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = scanner.NewScanner(m.filesystem, m.logger).Scan(gctx, config.LocalPath)
		return err
	})
	g.Go(func() error {
		var err error
		remote, err = lister.New(m.s3Client, config.PageSize, m.logger).List(gctx, config.Bucket, prefix)
		return err
	})

	if err := g.Wait(); err != nil {
		m.logger.ErrorContext(ctx, "publish pass aborted", "bucket", config.Bucket, "error", err)
		return nil, nil, err
	}
	return local, remote, nil
}

func validate(config *Config) error {
	if config == nil {
		return sperrors.NewValidationError("config cannot be nil")
	}
	if config.LocalPath == "" {
		return sperrors.NewValidationError("local path cannot be empty")
	}
	if config.Bucket == "" {
		return sperrors.NewValidationError("bucket name cannot be empty")
	}
	if config.MultipartPolicy != "" &&
		config.MultipartPolicy != pubtypes.MultipartReupload &&
		config.MultipartPolicy != pubtypes.MultipartSizeOnly {
		return sperrors.NewValidationError("unknown multipart policy: " + string(config.MultipartPolicy))
	}
	return nil
}

// filterInventory drops keys the matcher rejects from both sides, so excluded
// remote keys are never deleted.
func filterInventory(
	matcher *scanner.PatternMatcher,
	local []pubtypes.LocalEntry,
	remote []pubtypes.RemoteEntry,
) ([]pubtypes.LocalEntry, []pubtypes.RemoteEntry) {
	if matcher.Empty() {
		return local, remote
	}

	keptLocal := local[:0]
	for _, entry := range local {
		if matcher.Match(entry.RelativePath) {
			keptLocal = append(keptLocal, entry)
		}
	}

	keptRemote := remote[:0]
	for _, entry := range remote {
		if matcher.Match(entry.Key) {
			keptRemote = append(keptRemote, entry)
		}
	}
	return keptLocal, keptRemote
}

func skipped(keys []string, action pubtypes.Action) []pubtypes.OperationResult {
	results := make([]pubtypes.OperationResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, pubtypes.OperationResult{
			Key:     key,
			Action:  action,
			Outcome: pubtypes.OutcomeSkipped,
		})
	}
	return results
}

// summarize fills the report counters from the per-key results.
func summarize(report *pubtypes.Report, results []pubtypes.OperationResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})

	for _, r := range results {
		switch r.Outcome {
		case pubtypes.OutcomeUploaded:
			report.BytesUploaded += r.Size
			if r.Action == pubtypes.ActionAdd {
				report.Added++
			} else {
				report.Updated++
			}
		case pubtypes.OutcomeDeleted:
			report.Removed++
		case pubtypes.OutcomeSkipped:
			report.Skipped++
		case pubtypes.OutcomeFailed:
			report.Failed++
			report.Failures = append(report.Failures, pubtypes.Failure{
				Key:    r.Key,
				Action: r.Action,
				Code:   string(sperrors.CodeOf(r.Err)),
				Reason: errString(r.Err),
			})
		}
	}
	report.Results = results
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
