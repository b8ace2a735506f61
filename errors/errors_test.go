package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewRemoteError("put", "site", "index.html", errors.New("boom")),
			want: "sitepublish.put site/index.html: boom",
		},
		{
			name: "bucket only",
			err:  NewListingError("site", "", errors.New("boom")),
			want: "sitepublish.list bucket site: boom",
		},
		{
			name: "key only",
			err:  NewReadError("css/app.css", errors.New("boom")),
			want: "sitepublish.read css/app.css: boom",
		},
		{
			name: "neither",
			err:  NewValidationError("bucket cannot be empty"),
			want: "sitepublish.validate: bucket cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTaxonomySentinels(t *testing.T) {
	cause := errors.New("cause")

	assert.True(t, IsTraversal(NewTraversalError("/srv/public", cause)))
	assert.True(t, IsListing(NewListingError("site", "docs/", cause)))
	assert.True(t, IsRead(NewReadError("a.html", cause)))
	assert.True(t, IsRemoteOperation(NewRemoteError("delete", "site", "a.html", cause)))
	assert.True(t, IsInvalidInput(NewValidationError("bad")))

	assert.False(t, IsListing(NewTraversalError("/srv/public", cause)))
	assert.False(t, IsRemoteOperation(NewReadError("a.html", cause)))
}

func TestWrappedErrorKeepsCode(t *testing.T) {
	base := NewListingError("site", "", errors.New("page 3 failed"))
	wrapped := fmt.Errorf("failed to build inventory: %w", base)

	assert.True(t, IsListing(wrapped))
	assert.Equal(t, CodeListing, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeListing, NewError("sync", wrapped).Code)
}

func TestClassifyAPIErrors(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{"AccessDenied", ErrAccessDenied},
		{"NoSuchBucket", ErrBucketNotFound},
		{"SlowDown", ErrTooManyRequests},
		{"RequestTimeout", ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			apiErr := &smithy.GenericAPIError{Code: tt.code, Message: "rejected"}
			err := NewRemoteError("put", "site", "a.html", apiErr)

			assert.True(t, errors.Is(err, tt.sentinel))
			assert.True(t, IsRemoteOperation(err))

			var got smithy.APIError
			assert.True(t, errors.As(err, &got))
			assert.Equal(t, tt.code, got.ErrorCode())
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, Classify(plain))
	assert.Nil(t, Classify(nil))

	timeout := Classify(context.DeadlineExceeded)
	assert.True(t, errors.Is(timeout, ErrTimeout))
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))
}

func TestCanceledRemoteError(t *testing.T) {
	err := NewRemoteError("put", "site", "a.html", context.Canceled)
	assert.Equal(t, CodeCanceled, err.Code)
	assert.True(t, errors.Is(err, ErrCanceled))
	assert.False(t, IsRemoteOperation(err))
}

func TestWithMessage(t *testing.T) {
	err := NewValidationError("empty").WithBucket("site").WithKey("k").WithMessage("check input")
	assert.Equal(t, "sitepublish.validate site/k: check input: empty", err.Error())
	assert.True(t, IsInvalidInput(err))
}
