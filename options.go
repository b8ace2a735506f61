package sitepublish

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// WithRegion sets the AWS region.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of attempts the SDK transport makes per request.
// Default is 3. The publisher itself never retries a key.
func WithMaxRetries(maxRetries int) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default worker pool size for publish passes.
// Default is 8.
func WithConcurrency(concurrency int) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig provides a custom AWS configuration instead of the default chain.
func WithAWSConfig(config *aws.Config) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing.
func WithEndpoint(endpoint string) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCustomHTTPClient provides the HTTP client used for S3 requests.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets the filesystem the local tree is read from.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger. Default discards all output.
func WithLogger(logger *slog.Logger) pubtypes.Option {
	return func(c *pubtypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithPublishPrefix publishes under a key prefix instead of the bucket root.
// A trailing "/" is added when missing.
func WithPublishPrefix(prefix string) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.Prefix = prefix
	}
}

// WithDryRun plans the pass and reports every planned operation as skipped
// without mutating the bucket.
func WithDryRun(dryRun bool) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithDeleteExtra controls whether remote keys with no local file are deleted.
// Default is true.
func WithDeleteExtra(deleteExtra bool) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.DeleteExtra = deleteExtra
	}
}

// WithInclude adds glob patterns a key must match to take part in the pass.
func WithInclude(patterns ...string) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithExclude adds glob patterns that remove keys from the pass on both sides.
// Excludes take precedence over includes.
func WithExclude(patterns ...string) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}

// WithParallelism overrides the client concurrency for one pass.
func WithParallelism(parallelism int) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		if parallelism > 0 {
			c.Parallelism = parallelism
		}
	}
}

// WithRequestRate paces mutating requests to perSecond with the given burst.
// A non-positive rate disables pacing.
func WithRequestRate(perSecond float64, burst int) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.RequestsPerSec = perSecond
		c.RequestBurst = burst
	}
}

// WithMultipartPolicy selects how remote tokens that are not plain digests are compared.
// Default is MultipartReupload.
func WithMultipartPolicy(policy pubtypes.MultipartPolicy) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.MultipartPolicy = policy
	}
}

// WithContentSniffing inspects file content when the extension has no known type.
func WithContentSniffing(enabled bool) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.SniffContent = enabled
	}
}

// WithCacheControl sets the Cache-Control header on every upload.
func WithCacheControl(cacheControl string) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.CacheControl = cacheControl
	}
}

// WithStorageClass sets the storage class of every upload (e.g. "STANDARD_IA").
func WithStorageClass(storageClass string) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithBatchDelete removes keys with DeleteObjects in batches of up to 1000.
func WithBatchDelete(enabled bool) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.BatchDelete = enabled
	}
}

// WithProgress registers a callback for per-key state transitions.
func WithProgress(fn pubtypes.ProgressFunc) pubtypes.PublishOption {
	return func(c *pubtypes.PublishOptionConfig) {
		c.Progress = fn
	}
}
