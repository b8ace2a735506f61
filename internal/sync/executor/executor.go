package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/internal/s3api"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

const (
	// DefaultParallelism bounds concurrent requests when none is configured.
	DefaultParallelism = 8

	// maxBatchSize is the S3 limit on keys per DeleteObjects request.
	maxBatchSize = 1000
)

// Config holds the per-pass settings of an execution.
type Config struct {
	// Bucket is the target bucket
	Bucket string

	// Prefix is prepended to every key; empty or ending in "/"
	Prefix string

	// SourceDir is the local root the upload keys are relative to
	SourceDir string

	// Parallelism bounds concurrent requests
	Parallelism int

	// Limiter paces mutating requests; nil means unlimited
	Limiter *rate.Limiter

	// BatchDelete removes keys with DeleteObjects instead of one call per key
	BatchDelete bool

	// SniffContent inspects file content when the extension is unknown
	SniffContent bool

	// CacheControl is sent with every upload when set
	CacheControl string

	// StorageClass is sent with every upload when set
	StorageClass string

	// Progress observes per-key state transitions
	Progress pubtypes.ProgressFunc
}

// Executor performs the uploads and deletes of an operation set.
type Executor struct {
	s3Client   s3api.Mutator
	filesystem fs.Filesystem
	logger     *slog.Logger
}

// NewExecutor creates a new executor.
func NewExecutor(s3Client s3api.Mutator, filesystem fs.Filesystem, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		s3Client:   s3Client,
		filesystem: filesystem,
		logger:     logger,
	}
}

// run carries the state of one Apply call.
type run struct {
	*Executor
	cfg *Config

	mu      sync.Mutex
	results []pubtypes.OperationResult
}

// Apply uploads ToAdd and ToUpdate and deletes ToRemove, returning one result
// per key sorted by key. An empty set returns no results and makes no calls.
func (e *Executor) Apply(ctx context.Context, cfg *Config, ops *pubtypes.OperationSet) []pubtypes.OperationResult {
	if ops == nil || ops.IsEmpty() {
		return nil
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	r := &run{Executor: e, cfg: cfg, results: make([]pubtypes.OperationResult, 0, ops.Len())}

	adds := pubtypes.Sorted(ops.ToAdd)
	updates := pubtypes.Sorted(ops.ToUpdate)
	removes := pubtypes.Sorted(ops.ToRemove)

	for _, key := range adds {
		r.progress(key, pubtypes.ActionAdd, pubtypes.StatePlanned)
	}
	for _, key := range updates {
		r.progress(key, pubtypes.ActionUpdate, pubtypes.StatePlanned)
	}
	for _, key := range removes {
		r.progress(key, pubtypes.ActionRemove, pubtypes.StatePlanned)
	}

	// Plain Group: one key's failure must not cancel the others.
	g := &errgroup.Group{}
	g.SetLimit(parallelism)

	if cfg.BatchDelete {
		for start := 0; start < len(removes); start += maxBatchSize {
			batch := removes[start:min(start+maxBatchSize, len(removes))]
			g.Go(func() error {
				r.deleteBatch(ctx, batch)
				return nil
			})
		}
	} else {
		for _, key := range removes {
			g.Go(func() error {
				r.delete(ctx, key)
				return nil
			})
		}
	}

	for _, key := range adds {
		g.Go(func() error {
			r.upload(ctx, key, pubtypes.ActionAdd)
			return nil
		})
	}
	for _, key := range updates {
		g.Go(func() error {
			r.upload(ctx, key, pubtypes.ActionUpdate)
			return nil
		})
	}

	_ = g.Wait()

	sort.Slice(r.results, func(i, j int) bool {
		return r.results[i].Key < r.results[j].Key
	})
	return r.results
}

// upload puts the local file behind key.
func (r *run) upload(ctx context.Context, key string, action pubtypes.Action) {
	fullKey := r.cfg.Prefix + key

	if err := r.wait(ctx); err != nil {
		r.fail(ctx, key, action, sperrors.NewRemoteError("put", r.cfg.Bucket, fullKey, err))
		return
	}
	r.progress(key, action, pubtypes.StateInFlight)

	file, err := r.filesystem.Open(filepath.Join(r.cfg.SourceDir, filepath.FromSlash(key)))
	if err != nil {
		r.fail(ctx, key, action, sperrors.NewReadError(key, err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		r.fail(ctx, key, action, sperrors.NewReadError(key, err))
		return
	}

	var sniffBody io.Reader
	if r.cfg.SniffContent {
		sniffBody = file
	}
	contentType := detectContentType(key, sniffBody, r.cfg.SniffContent)
	if sniffBody != nil {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			r.fail(ctx, key, action, sperrors.NewReadError(key, fmt.Errorf("rewind after sniffing: %w", err)))
			return
		}
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.Bucket),
		Key:           aws.String(fullKey),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	}
	if r.cfg.CacheControl != "" {
		input.CacheControl = aws.String(r.cfg.CacheControl)
	}
	if r.cfg.StorageClass != "" {
		input.StorageClass = types.StorageClass(r.cfg.StorageClass)
	}

	if _, err := r.s3Client.PutObject(ctx, input); err != nil {
		r.fail(ctx, key, action, sperrors.NewRemoteError("put", r.cfg.Bucket, fullKey, err))
		return
	}

	r.logger.DebugContext(ctx, "uploaded object", "key", fullKey, "size", info.Size(), "content_type", contentType)
	r.record(pubtypes.OperationResult{
		Key:         key,
		Action:      action,
		Outcome:     pubtypes.OutcomeUploaded,
		Size:        info.Size(),
		ContentType: contentType,
	})
	r.progress(key, action, pubtypes.StateSucceeded)
}

// delete removes key with a single DeleteObject call.
func (r *run) delete(ctx context.Context, key string) {
	fullKey := r.cfg.Prefix + key

	if err := r.wait(ctx); err != nil {
		r.fail(ctx, key, pubtypes.ActionRemove, sperrors.NewRemoteError("delete", r.cfg.Bucket, fullKey, err))
		return
	}
	r.progress(key, pubtypes.ActionRemove, pubtypes.StateInFlight)

	_, err := r.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		r.fail(ctx, key, pubtypes.ActionRemove, sperrors.NewRemoteError("delete", r.cfg.Bucket, fullKey, err))
		return
	}

	r.logger.DebugContext(ctx, "deleted object", "key", fullKey)
	r.succeedDelete(key)
}

// deleteBatch removes up to maxBatchSize keys with one DeleteObjects call.
// Keys rejected individually by the store fail alone.
func (r *run) deleteBatch(ctx context.Context, keys []string) {
	if err := r.wait(ctx); err != nil {
		for _, key := range keys {
			r.fail(ctx, key, pubtypes.ActionRemove,
				sperrors.NewRemoteError("delete", r.cfg.Bucket, r.cfg.Prefix+key, err))
		}
		return
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		r.progress(key, pubtypes.ActionRemove, pubtypes.StateInFlight)
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(r.cfg.Prefix + key)})
	}

	output, err := r.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(r.cfg.Bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		for _, key := range keys {
			r.fail(ctx, key, pubtypes.ActionRemove,
				sperrors.NewRemoteError("delete", r.cfg.Bucket, r.cfg.Prefix+key, err))
		}
		return
	}

	rejected := make(map[string]error, len(output.Errors))
	for _, deleteErr := range output.Errors {
		fullKey := aws.ToString(deleteErr.Key)
		rejected[strings.TrimPrefix(fullKey, r.cfg.Prefix)] = sperrors.NewRemoteError(
			"delete", r.cfg.Bucket, fullKey, &smithy.GenericAPIError{
				Code:    aws.ToString(deleteErr.Code),
				Message: aws.ToString(deleteErr.Message),
			})
	}

	for _, key := range keys {
		if err, ok := rejected[key]; ok {
			r.fail(ctx, key, pubtypes.ActionRemove, err)
			continue
		}
		r.succeedDelete(key)
	}
	r.logger.DebugContext(ctx, "deleted object batch", "keys", len(keys), "rejected", len(rejected))
}

// wait checks for cancellation and paces the request against the limiter.
func (r *run) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.cfg.Limiter == nil {
		return nil
	}
	if err := r.cfg.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

func (r *run) succeedDelete(key string) {
	r.record(pubtypes.OperationResult{
		Key:     key,
		Action:  pubtypes.ActionRemove,
		Outcome: pubtypes.OutcomeDeleted,
	})
	r.progress(key, pubtypes.ActionRemove, pubtypes.StateSucceeded)
}

func (r *run) fail(ctx context.Context, key string, action pubtypes.Action, err error) {
	r.logger.WarnContext(ctx, "operation failed", "key", key, "action", string(action), "error", err)
	r.record(pubtypes.OperationResult{
		Key:     key,
		Action:  action,
		Outcome: pubtypes.OutcomeFailed,
		Err:     err,
	})
	r.progress(key, action, pubtypes.StateFailed)
}

func (r *run) record(result pubtypes.OperationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *run) progress(key string, action pubtypes.Action, state pubtypes.State) {
	if r.cfg.Progress != nil {
		r.cfg.Progress(key, action, state)
	}
}
