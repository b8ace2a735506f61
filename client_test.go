package sitepublish

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/sitepublish/internal/fs/billy"
	"github.com/input-output-hk/sitepublish/internal/testutil"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

func TestClient_New(t *testing.T) {
	tests := []struct {
		name       string
		opts       []pubtypes.Option
		wantRegion string
	}{
		{
			name:       "with region option",
			opts:       []pubtypes.Option{WithRegion("us-west-2")},
			wantRegion: "us-west-2",
		},
		{
			name: "with custom aws config",
			opts: []pubtypes.Option{
				WithAWSConfig(&aws.Config{Region: "eu-central-1"}),
				WithMaxRetries(5),
			},
			wantRegion: "eu-central-1",
		},
		{
			name: "with endpoint and path style",
			opts: []pubtypes.Option{
				WithAWSConfig(&aws.Config{}),
				WithEndpoint("http://localhost:9000"),
				WithForcePathStyle(true),
				WithTimeout(5 * time.Second),
			},
			wantRegion: "us-east-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
			assert.Equal(t, tt.wantRegion, client.config.Region)
		})
	}
}

func TestClient_New_MaxRetries(t *testing.T) {
	client, err := New(WithAWSConfig(&aws.Config{}), WithMaxRetries(7))
	require.NoError(t, err)
	assert.Equal(t, 7, client.config.RetryMaxAttempts)
}

func TestS3Options(t *testing.T) {
	apply := func(cfg *pubtypes.ClientConfig) s3.Options {
		var o s3.Options
		for _, fn := range s3Options(cfg) {
			fn(&o)
		}
		return o
	}

	o := apply(&pubtypes.ClientConfig{})
	assert.False(t, o.UsePathStyle)
	assert.Nil(t, o.BaseEndpoint)
	assert.Nil(t, o.HTTPClient)

	o = apply(&pubtypes.ClientConfig{
		Endpoint:       "http://localhost:9000",
		ForcePathStyle: true,
		Timeout:        2 * time.Second,
	})
	assert.True(t, o.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(o.BaseEndpoint))
	hc, ok := o.HTTPClient.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, hc.Timeout)

	custom := &http.Client{}
	o = apply(&pubtypes.ClientConfig{CustomHTTPClient: custom, Timeout: time.Second})
	assert.Same(t, custom, o.HTTPClient)
}

func TestNewWithClient_Defaults(t *testing.T) {
	client := NewWithClient(testutil.NewMemoryBucket("site"))
	assert.Equal(t, DefaultConcurrency, client.concurrency)
	assert.NotNil(t, client.fs)
	assert.NotNil(t, client.logger)
	assert.NoError(t, client.Close())
}

func TestNewWithClient_Options(t *testing.T) {
	mem := billy.NewInMemoryFS()
	logger := slog.New(slog.DiscardHandler)

	client := NewWithClient(testutil.NewMemoryBucket("site"),
		WithFilesystem(mem),
		WithLogger(logger),
		WithConcurrency(3),
		WithConcurrency(0),
		WithCustomHTTPClient(&http.Client{}),
	)
	assert.Same(t, mem, client.fs)
	assert.Same(t, logger, client.logger)
	assert.Equal(t, 3, client.concurrency)

	other := billy.NewInMemoryFS()
	client.SetFilesystem(other)
	assert.Same(t, other, client.fs)
}

func TestPublishOptions(t *testing.T) {
	cfg := &pubtypes.PublishOptionConfig{}
	for _, opt := range []pubtypes.PublishOption{
		WithPublishPrefix("docs"),
		WithDryRun(true),
		WithDeleteExtra(false),
		WithInclude("**/*.html"),
		WithInclude("*.css"),
		WithExclude("drafts/"),
		WithParallelism(4),
		WithParallelism(-1),
		WithRequestRate(50, 10),
		WithMultipartPolicy(pubtypes.MultipartSizeOnly),
		WithContentSniffing(true),
		WithCacheControl("max-age=60"),
		WithStorageClass("STANDARD_IA"),
		WithBatchDelete(true),
	} {
		opt(cfg)
	}

	assert.Equal(t, "docs", cfg.Prefix)
	assert.True(t, cfg.DryRun)
	assert.False(t, cfg.DeleteExtra)
	assert.Equal(t, []string{"**/*.html", "*.css"}, cfg.IncludePatterns)
	assert.Equal(t, []string{"drafts/"}, cfg.ExcludePatterns)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 50.0, cfg.RequestsPerSec)
	assert.Equal(t, 10, cfg.RequestBurst)
	assert.Equal(t, pubtypes.MultipartSizeOnly, cfg.MultipartPolicy)
	assert.True(t, cfg.SniffContent)
	assert.Equal(t, "max-age=60", cfg.CacheControl)
	assert.Equal(t, "STANDARD_IA", cfg.StorageClass)
	assert.True(t, cfg.BatchDelete)
}
