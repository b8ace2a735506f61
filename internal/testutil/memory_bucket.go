package testutil

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/sitepublish/internal/s3api"
)

// Operation names counted by MemoryBucket.
const (
	OpList          = "ListObjectsV2"
	OpPut           = "PutObject"
	OpDelete        = "DeleteObject"
	OpDeleteObjects = "DeleteObjects"
)

// StoredObject is an object held by a MemoryBucket.
type StoredObject struct {
	Data         []byte
	ETag         string
	ContentType  string
	CacheControl string
	StorageClass types.StorageClass
}

// MemoryBucket is an in-memory S3 bucket implementing S3API.
// Objects get MD5 ETags the way single-part uploads do, listings are paginated
// and failures can be injected per key or per listing page.
type MemoryBucket struct {
	// Name is the only bucket name the fake accepts
	Name string

	// PageSize caps the number of keys per listing page
	PageSize int32

	// Latency is added to every mutating call
	Latency time.Duration

	mu          sync.Mutex
	objects     map[string]*StoredObject
	calls       map[string]int
	putErrs     map[string]error
	deleteErrs  map[string]error
	listErrs    map[int]error
	inFlight    int
	maxInFlight int
}

// NewMemoryBucket creates an empty bucket named name.
func NewMemoryBucket(name string) *MemoryBucket {
	return &MemoryBucket{
		Name:       name,
		PageSize:   1000,
		objects:    make(map[string]*StoredObject),
		calls:      make(map[string]int),
		putErrs:    make(map[string]error),
		deleteErrs: make(map[string]error),
		listErrs:   make(map[int]error),
	}
}

// Seed stores data at key without counting a call.
func (b *MemoryBucket) Seed(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = &StoredObject{Data: data, ETag: etagOf(data)}
}

// SetETag overrides the ETag of an existing object, e.g. to mimic a multipart upload.
func (b *MemoryBucket) SetETag(key, etag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if obj, ok := b.objects[key]; ok {
		obj.ETag = etag
	}
}

// FailPut makes every PutObject for key return err.
func (b *MemoryBucket) FailPut(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putErrs[key] = err
}

// FailDelete makes every delete of key return err.
func (b *MemoryBucket) FailDelete(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteErrs[key] = err
}

// FailListPage makes the n-th listing call (1-based) return err.
func (b *MemoryBucket) FailListPage(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErrs[n] = err
}

// Object returns a copy of the object at key.
func (b *MemoryBucket) Object(key string) (StoredObject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return StoredObject{}, false
	}
	return *obj, true
}

// Keys returns every stored key in lexical order.
func (b *MemoryBucket) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedKeys()
}

// Calls returns how many times op was invoked.
func (b *MemoryBucket) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// MutationCalls returns the number of put and delete calls.
func (b *MemoryBucket) MutationCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[OpPut] + b.calls[OpDelete] + b.calls[OpDeleteObjects]
}

// MaxConcurrent returns the highest number of mutating calls seen at once.
func (b *MemoryBucket) MaxConcurrent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}

// ResetCalls clears the call counters.
func (b *MemoryBucket) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = make(map[string]int)
	b.maxInFlight = 0
}

// ListObjectsV2 returns one page of keys using the last returned key as the token.
func (b *MemoryBucket) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls[OpList]++
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	if err, ok := b.listErrs[b.calls[OpList]]; ok {
		return nil, err
	}

	pageSize := int(aws.ToInt32(params.MaxKeys))
	if pageSize <= 0 || (b.PageSize > 0 && pageSize > int(b.PageSize)) {
		pageSize = int(b.PageSize)
	}
	if pageSize <= 0 {
		pageSize = 1000
	}

	prefix := aws.ToString(params.Prefix)
	after := aws.ToString(params.ContinuationToken)

	out := &s3.ListObjectsV2Output{Name: params.Bucket, Prefix: params.Prefix}
	for _, key := range b.sortedKeys() {
		if !strings.HasPrefix(key, prefix) || (after != "" && key <= after) {
			continue
		}
		if len(out.Contents) == pageSize {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = out.Contents[len(out.Contents)-1].Key
			break
		}
		obj := b.objects[key]
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(key),
			ETag: aws.String(`"` + obj.ETag + `"`),
			Size: aws.Int64(int64(len(obj.Data))),
		})
	}
	if out.IsTruncated == nil {
		out.IsTruncated = aws.Bool(false)
	}
	out.KeyCount = aws.Int32(int32(len(out.Contents)))
	return out, nil
}

// PutObject stores the request body and returns its MD5 ETag.
func (b *MemoryBucket) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	done := b.enter(OpPut)
	defer done()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	key := aws.ToString(params.Key)
	b.mu.Lock()
	err := b.checkBucket(params.Bucket)
	if err == nil {
		err = b.putErrs[key]
	}
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var data []byte
	if params.Body != nil {
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
	if params.ContentLength != nil && aws.ToInt64(params.ContentLength) != int64(len(data)) {
		return nil, &smithy.GenericAPIError{Code: "IncompleteBody", Message: "content length mismatch"}
	}

	obj := &StoredObject{
		Data:         data,
		ETag:         etagOf(data),
		ContentType:  aws.ToString(params.ContentType),
		CacheControl: aws.ToString(params.CacheControl),
		StorageClass: params.StorageClass,
	}

	b.mu.Lock()
	b.objects[key] = obj
	b.mu.Unlock()

	return &s3.PutObjectOutput{ETag: aws.String(`"` + obj.ETag + `"`)}, nil
}

// DeleteObject removes key. Deleting a missing key succeeds as it does on S3.
func (b *MemoryBucket) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	done := b.enter(OpDelete)
	defer done()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	key := aws.ToString(params.Key)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	if err := b.deleteErrs[key]; err != nil {
		return nil, err
	}
	delete(b.objects, key)
	return &s3.DeleteObjectOutput{}, nil
}

// DeleteObjects removes a batch of keys, reporting injected failures per key.
func (b *MemoryBucket) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	done := b.enter(OpDeleteObjects)
	defer done()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	if params.Delete == nil {
		return nil, &smithy.GenericAPIError{Code: "MalformedXML", Message: "missing delete"}
	}
	if len(params.Delete.Objects) > 1000 {
		return nil, &smithy.GenericAPIError{Code: "MalformedXML", Message: "too many keys"}
	}

	out := &s3.DeleteObjectsOutput{}
	for _, id := range params.Delete.Objects {
		key := aws.ToString(id.Key)
		if err := b.deleteErrs[key]; err != nil {
			code, msg := "InternalError", err.Error()
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				code, msg = apiErr.ErrorCode(), apiErr.ErrorMessage()
			}
			out.Errors = append(out.Errors, types.Error{
				Key:     aws.String(key),
				Code:    aws.String(code),
				Message: aws.String(msg),
			})
			continue
		}
		delete(b.objects, key)
		out.Deleted = append(out.Deleted, types.DeletedObject{Key: aws.String(key)})
	}
	return out, nil
}

func (b *MemoryBucket) enter(op string) func() {
	b.mu.Lock()
	b.calls[op]++
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}
}

func (b *MemoryBucket) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.Latency):
		return nil
	}
}

func (b *MemoryBucket) checkBucket(name *string) error {
	if aws.ToString(name) != b.Name {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}
	return nil
}

func (b *MemoryBucket) sortedKeys() []string {
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

var _ s3api.S3API = (*MemoryBucket)(nil)
