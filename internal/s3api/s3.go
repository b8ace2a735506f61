// Package s3api narrows the S3 client to the calls a publish pass makes, so
// each stage depends only on what it uses and can be faked in tests.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Lister reads one page of a bucket listing.
type Lister interface {
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Mutator writes and removes objects. DeleteObjects accepts at most 1000 keys.
type Mutator interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
	DeleteObject(
		ctx context.Context,
		params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// S3API is everything a full pass needs.
type S3API interface {
	Lister
	Mutator
}

var _ S3API = (*s3.Client)(nil)
