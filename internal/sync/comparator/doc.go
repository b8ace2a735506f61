// Package comparator decides whether a key present on both sides has changed.
//
// Local content is hashed with the same digest and encoding S3 uses for
// single-part ETags (hex MD5), so the local hash and the remote integrity token
// can be compared for equality. Tokens that are not plain digests, such as
// multipart ETags, are handled by a configurable policy.
package comparator
