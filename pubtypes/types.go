// Package pubtypes provides shared type definitions for the publisher.
package pubtypes

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/input-output-hk/sitepublish/internal/fs"
)

// DefaultContentType is used for uploads whose content type cannot be resolved.
const DefaultContentType = "application/octet-stream"

// LocalEntry is one regular file found under the publish root.
type LocalEntry struct {
	// RelativePath is the slash-separated path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64
}

// RemoteEntry is one stored object.
type RemoteEntry struct {
	// Key is the object key relative to the publish prefix
	Key string

	// IntegrityToken is the store-supplied content fingerprint (the ETag without quotes).
	// It is compared for equality only.
	IntegrityToken string

	// SizeBytes is the object size in bytes
	SizeBytes int64
}

// OperationSet is the output of the diff engine. Keys are relative to the
// publish prefix and every key appears in at most one of the sets.
type OperationSet struct {
	// ToAdd holds keys present locally and absent remotely
	ToAdd mapset.Set[string]

	// ToUpdate holds keys present on both sides whose content differs
	ToUpdate mapset.Set[string]

	// ToRemove holds keys present remotely and absent locally
	ToRemove mapset.Set[string]

	// Unchanged holds keys present on both sides whose content matches
	Unchanged mapset.Set[string]

	// Failed holds keys whose comparison could not be completed
	Failed map[string]error
}

// NewOperationSet returns an empty operation set.
func NewOperationSet() *OperationSet {
	return &OperationSet{
		ToAdd:     mapset.NewThreadUnsafeSet[string](),
		ToUpdate:  mapset.NewThreadUnsafeSet[string](),
		ToRemove:  mapset.NewThreadUnsafeSet[string](),
		Unchanged: mapset.NewThreadUnsafeSet[string](),
		Failed:    make(map[string]error),
	}
}

// IsEmpty reports whether there is nothing to add, update or remove.
func (s *OperationSet) IsEmpty() bool {
	return s.ToAdd.Cardinality() == 0 &&
		s.ToUpdate.Cardinality() == 0 &&
		s.ToRemove.Cardinality() == 0
}

// Len returns the number of planned mutations.
func (s *OperationSet) Len() int {
	return s.ToAdd.Cardinality() + s.ToUpdate.Cardinality() + s.ToRemove.Cardinality()
}

// Sorted returns the members of set in lexical order.
func Sorted(set mapset.Set[string]) []string {
	keys := set.ToSlice()
	sort.Strings(keys)
	return keys
}

// Action is what the executor was asked to do with a key.
type Action string

const (
	// ActionAdd uploads a key that does not exist remotely
	ActionAdd Action = "add"

	// ActionUpdate re-uploads a key whose content changed
	ActionUpdate Action = "update"

	// ActionRemove deletes a key that no longer exists locally
	ActionRemove Action = "remove"

	// ActionCompare marks a key whose comparison failed before execution
	ActionCompare Action = "compare"
)

// Outcome is the final result of one key's operation.
type Outcome string

const (
	// OutcomeUploaded indicates the object was put
	OutcomeUploaded Outcome = "uploaded"

	// OutcomeDeleted indicates the object was deleted
	OutcomeDeleted Outcome = "deleted"

	// OutcomeSkipped indicates the operation was planned but deliberately not performed
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed indicates the operation was attempted and failed
	OutcomeFailed Outcome = "failed"
)

// State is a step in a key's lifecycle inside the executor.
type State string

const (
	// StatePlanned is the state of every key handed to the executor
	StatePlanned State = "planned"

	// StateInFlight is entered when the key's network call starts
	StateInFlight State = "in_flight"

	// StateSucceeded is the terminal state of a successful operation
	StateSucceeded State = "succeeded"

	// StateFailed is the terminal state of a failed operation
	StateFailed State = "failed"
)

// ProgressFunc observes per-key state transitions. It may be called from
// multiple goroutines at once.
type ProgressFunc func(key string, action Action, state State)

// OperationResult is the per-key outcome of a publish pass.
type OperationResult struct {
	// Key is the object key relative to the publish prefix
	Key string

	// Action is the operation that was planned for the key
	Action Action

	// Outcome is what happened
	Outcome Outcome

	// Size is the number of bytes uploaded (uploads only)
	Size int64

	// ContentType is the content type sent with the upload (uploads only)
	ContentType string

	// Err is set when Outcome is OutcomeFailed
	Err error
}

// Failure describes one failed key in a Report.
type Failure struct {
	Key    string `json:"key"`
	Action Action `json:"action"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Report summarises a reconciliation pass.
type Report struct {
	// Bucket and Prefix identify the publish target
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`

	// DryRun is true when no mutation was attempted
	DryRun bool `json:"dry_run"`

	// Counts of succeeded operations by kind
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`

	// Unchanged is the number of keys whose content already matched
	Unchanged int `json:"unchanged"`

	// Skipped is the number of planned operations deliberately not performed
	Skipped int `json:"skipped"`

	// Failed is the number of keys that failed comparison or execution
	Failed int `json:"failed"`

	// BytesUploaded is the total bytes uploaded
	BytesUploaded int64 `json:"bytes_uploaded"`

	// Failures lists every failed key with its reason
	Failures []Failure `json:"failures,omitempty"`

	// Results holds the per-key results in key order
	Results []OperationResult `json:"-"`

	// Duration is how long the pass took
	Duration time.Duration `json:"duration"`
}

// HasFailures reports whether any key failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// FailedKeys returns the keys that failed, suitable for a targeted retry.
func (r *Report) FailedKeys() []string {
	keys := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		keys = append(keys, f.Key)
	}
	return keys
}

// MultipartPolicy decides how keys whose remote token is not a plain content
// digest are compared.
type MultipartPolicy string

const (
	// MultipartReupload treats such keys as changed, so the next put replaces the
	// token with a plain digest.
	MultipartReupload MultipartPolicy = "reupload"

	// MultipartSizeOnly treats such keys as changed only when the sizes differ.
	MultipartSizeOnly MultipartPolicy = "size-only"
)

// Configuration types for functional options

// ClientConfig holds configuration for the publisher client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem
	Logger           *slog.Logger
}

// PublishOptionConfig holds configuration for a publish pass via functional options.
type PublishOptionConfig struct {
	Prefix          string
	DryRun          bool
	DeleteExtra     bool
	IncludePatterns []string
	ExcludePatterns []string
	Parallelism     int
	RequestsPerSec  float64
	RequestBurst    int
	MultipartPolicy MultipartPolicy
	SniffContent    bool
	CacheControl    string
	StorageClass    string
	BatchDelete     bool
	Progress        ProgressFunc
}

type (
	// Option is a functional option for configuring the client.
	Option func(*ClientConfig)
	// PublishOption is a functional option for configuring a publish pass.
	PublishOption func(*PublishOptionConfig)
)
