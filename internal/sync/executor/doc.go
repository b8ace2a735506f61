// Package executor applies an operation set to a bucket.
//
// Every planned key is attempted exactly once and produces exactly one result.
// Uploads and deletes share one bounded worker pool, and a failure on one key
// never cancels its siblings. Retries are left to the SDK transport.
package executor
