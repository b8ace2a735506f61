// Package errors provides the error taxonomy of a publish pass.
//
// Pass-level failures (traversal, listing) abort before any remote mutation.
// Key-level failures (read, remote operation) are reported per key and never
// stop sibling operations.
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error represents a publish error with context about the operation that failed.
// It wraps the underlying error with the bucket, key and error code it applies to.
type Error struct {
	// Op is the operation that failed (e.g., "scan", "list", "hash", "put", "delete")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the object key or local path (if applicable)
	Key string

	// Code classifies the error
	Code ErrorCode

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("sitepublish.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("sitepublish.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("sitepublish.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("sitepublish.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching this error's code.
func (e *Error) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && target == sentinel
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error for op. The code is inherited from err when it
// already carries one.
func NewError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Code: CodeOf(err),
		Err:  err,
	}
}

// NewTraversalError reports that path could not be read during the local scan.
func NewTraversalError(path string, err error) *Error {
	return &Error{
		Op:   "scan",
		Key:  path,
		Code: CodeTraversal,
		Err:  err,
	}
}

// NewListingError reports a failed or incomplete remote listing.
func NewListingError(bucket, prefix string, err error) *Error {
	return &Error{
		Op:     "list",
		Bucket: bucket,
		Key:    prefix,
		Code:   CodeListing,
		Err:    Classify(err),
	}
}

// NewReadError reports that the local file behind key could not be read.
func NewReadError(key string, err error) *Error {
	return &Error{
		Op:   "read",
		Key:  key,
		Code: CodeRead,
		Err:  err,
	}
}

// NewRemoteError reports that the store rejected op on bucket/key.
func NewRemoteError(op, bucket, key string, err error) *Error {
	code := CodeRemoteOperation
	if errors.Is(err, context.Canceled) {
		code = CodeCanceled
	}
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Code:   code,
		Err:    Classify(err),
	}
}

// NewCanceledError reports that op stopped because its context ended.
func NewCanceledError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Code: CodeCanceled,
		Err:  err,
	}
}

// NewValidationError creates an input validation error.
func NewValidationError(message string) *Error {
	return &Error{
		Op:   "validate",
		Code: CodeInvalidInput,
		Err:  errors.New(message),
	}
}

// Sentinel errors, one per error code.
// These can be used with errors.Is() for error checking.
var (
	// ErrTraversal indicates that the local tree could not be scanned
	ErrTraversal = errors.New("sitepublish: traversal error")

	// ErrListing indicates that the remote listing failed or was incomplete
	ErrListing = errors.New("sitepublish: listing error")

	// ErrRead indicates that a local file could not be read
	ErrRead = errors.New("sitepublish: read error")

	// ErrRemoteOperation indicates that the store rejected an operation
	ErrRemoteOperation = errors.New("sitepublish: remote operation error")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("sitepublish: invalid input")

	// ErrInvalidPattern indicates that an include or exclude pattern is malformed
	ErrInvalidPattern = errors.New("sitepublish: invalid pattern")

	// ErrCanceled indicates that an operation was abandoned because the pass was canceled
	ErrCanceled = errors.New("sitepublish: canceled")
)

// Store-side conditions recognised from AWS API error codes.
var (
	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrTooManyRequests indicates that the request rate is too high
	ErrTooManyRequests = errors.New("s3: too many requests")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("s3: operation timeout")
)

var codeSentinels = map[ErrorCode]error{
	CodeTraversal:       ErrTraversal,
	CodeListing:         ErrListing,
	CodeRead:            ErrRead,
	CodeRemoteOperation: ErrRemoteOperation,
	CodeInvalidInput:    ErrInvalidInput,
	CodeInvalidPattern:  ErrInvalidPattern,
	CodeCanceled:        ErrCanceled,
}

var apiErrorCodes = map[string]error{
	"AccessDenied":            ErrAccessDenied,
	"Forbidden":               ErrAccessDenied,
	"NoSuchBucket":            ErrBucketNotFound,
	"NoSuchKey":               ErrObjectNotFound,
	"NotFound":                ErrObjectNotFound,
	"SlowDown":                ErrTooManyRequests,
	"Throttling":              ErrTooManyRequests,
	"ThrottlingException":     ErrTooManyRequests,
	"RequestLimitExceeded":    ErrTooManyRequests,
	"RequestTimeout":          ErrTimeout,
	"ServiceUnavailable":      ErrTooManyRequests,
	"TooManyRequests":         ErrTooManyRequests,
	"RequestTimeoutException": ErrTimeout,
}

// Classify annotates err with the store-side sentinel matching its AWS API
// error code, so callers can use errors.Is(err, ErrAccessDenied) and friends.
// Errors that are not recognised are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := apiErrorCodes[apiErr.ErrorCode()]; ok && !errors.Is(err, sentinel) {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}

	return err
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsTraversal checks if an error is a local traversal failure.
func IsTraversal(err error) bool {
	return errors.Is(err, ErrTraversal)
}

// IsListing checks if an error is a remote listing failure.
func IsListing(err error) bool {
	return errors.Is(err, ErrListing)
}

// IsRead checks if an error is a local read failure.
func IsRead(err error) bool {
	return errors.Is(err, ErrRead)
}

// IsRemoteOperation checks if an error is a rejected remote put or delete.
func IsRemoteOperation(err error) bool {
	return errors.Is(err, ErrRemoteOperation)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
