package sync

import (
	"strings"

	"golang.org/x/time/rate"

	"github.com/input-output-hk/sitepublish/pubtypes"
)

// Config holds configuration for a publish pass.
type Config struct {
	// LocalPath is the local directory to publish
	LocalPath string

	// Bucket is the S3 bucket to publish to
	Bucket string

	// Prefix is the S3 key prefix to publish under
	Prefix string

	// IncludePatterns are glob patterns for keys to include
	IncludePatterns []string

	// ExcludePatterns are glob patterns for keys to exclude
	ExcludePatterns []string

	// DeleteExtra determines if remote keys missing locally are deleted
	DeleteExtra bool

	// DryRun determines if this should be a dry run (no actual changes)
	DryRun bool

	// Parallelism controls the number of concurrent operations
	Parallelism int

	// Limiter paces mutating requests; nil means unlimited
	Limiter *rate.Limiter

	// MultipartPolicy decides how non-digest remote tokens are compared
	MultipartPolicy pubtypes.MultipartPolicy

	// SniffContent inspects file content when the extension is unknown
	SniffContent bool

	// CacheControl is sent with every upload when set
	CacheControl string

	// StorageClass is sent with every upload when set
	StorageClass string

	// BatchDelete removes keys with DeleteObjects
	BatchDelete bool

	// Progress observes per-key state transitions
	Progress pubtypes.ProgressFunc

	// PageSize caps keys per listing page; zero selects the S3 maximum
	PageSize int32
}

// NormalizePrefix strips leading slashes and ensures a non-empty prefix ends in "/".
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
