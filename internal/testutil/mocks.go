// Package testutil holds S3 test doubles: MockS3Client for scripting single
// responses and MemoryBucket for whole-pass scenarios.
package testutil

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/sitepublish/internal/s3api"
)

var _ s3api.S3API = (*MockS3Client)(nil)

// MockS3Client answers each call with the matching func field, or an empty
// successful output when the field is nil. Every call is counted by operation.
type MockS3Client struct {
	PutObjectFunc     func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjectFunc  func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjectsFunc func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)

	mu    sync.Mutex
	calls map[string]int
}

// CallCount reports how many times op (one of the Op* constants) was invoked.
func (m *MockS3Client) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockS3Client) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	m.count(OpPut)
	if m.PutObjectFunc == nil {
		return &s3.PutObjectOutput{}, nil
	}
	return m.PutObjectFunc(ctx, params, optFns...)
}

func (m *MockS3Client) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	m.count(OpDelete)
	if m.DeleteObjectFunc == nil {
		return &s3.DeleteObjectOutput{}, nil
	}
	return m.DeleteObjectFunc(ctx, params, optFns...)
}

func (m *MockS3Client) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	m.count(OpDeleteObjects)
	if m.DeleteObjectsFunc == nil {
		return &s3.DeleteObjectsOutput{}, nil
	}
	return m.DeleteObjectsFunc(ctx, params, optFns...)
}

func (m *MockS3Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	m.count(OpList)
	if m.ListObjectsV2Func == nil {
		return &s3.ListObjectsV2Output{}, nil
	}
	return m.ListObjectsV2Func(ctx, params, optFns...)
}
