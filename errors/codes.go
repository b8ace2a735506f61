package errors

// ErrorCode identifies the class of a publish failure.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Pass-level errors. Any of these aborts the pass before remote state is touched.

	// CodeTraversal indicates the local tree could not be scanned.
	CodeTraversal ErrorCode = "TRAVERSAL_ERROR"

	// CodeListing indicates the remote listing failed or was incomplete.
	CodeListing ErrorCode = "LISTING_ERROR"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidPattern indicates an include or exclude pattern could not be parsed.
	CodeInvalidPattern ErrorCode = "INVALID_PATTERN"

	// Key-level errors. These fail a single key and never abort sibling operations.

	// CodeRead indicates a local file could not be read for hashing or upload.
	CodeRead ErrorCode = "READ_ERROR"

	// CodeRemoteOperation indicates the store rejected a put or delete.
	CodeRemoteOperation ErrorCode = "REMOTE_OPERATION_ERROR"

	// CodeCanceled indicates the operation was not attempted because the pass was canceled.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
