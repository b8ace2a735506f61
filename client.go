package sitepublish

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/fs"
	"github.com/input-output-hk/sitepublish/internal/fs/billy"
	"github.com/input-output-hk/sitepublish/internal/s3api"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

const (
	// DefaultConcurrency bounds in-flight requests when neither
	// WithConcurrency nor WithParallelism is given.
	DefaultConcurrency = 8

	defaultRegion     = "us-east-1"
	defaultMaxRetries = 3
)

// Client publishes local trees to S3. Publish may be called concurrently;
// passes share only the S3 client and filesystem.
type Client struct {
	s3Client s3api.S3API
	config   aws.Config

	mu sync.RWMutex
	fs fs.Filesystem

	logger      *slog.Logger
	concurrency int
}

// New builds a client on the AWS default credential chain.
//
// Example:
//
//	client, err := sitepublish.New(
//	    sitepublish.WithRegion("eu-central-1"),
//	    sitepublish.WithMaxRetries(5),
//	)
func New(opts ...pubtypes.Option) (*Client, error) {
	clientCfg := applyOptions(opts)

	awsCfg, err := resolveAWSConfig(context.Background(), clientCfg)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	client := newClient(s3.NewFromConfig(awsCfg, s3Options(clientCfg)...), clientCfg)
	client.config = awsCfg
	return client, nil
}

// NewWithClient wraps an existing S3 implementation, such as a fake bucket or
// a preconfigured *s3.Client.
func NewWithClient(s3Client s3api.S3API, opts ...pubtypes.Option) *Client {
	return newClient(s3Client, applyOptions(opts))
}

func applyOptions(opts []pubtypes.Option) *pubtypes.ClientConfig {
	cfg := &pubtypes.ClientConfig{
		MaxRetries:  defaultMaxRetries,
		Concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// resolveAWSConfig starts from the caller's aws.Config or the default chain
// and layers region and retry settings on top.
func resolveAWSConfig(ctx context.Context, clientCfg *pubtypes.ClientConfig) (aws.Config, error) {
	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		loaded, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, err
		}
		cfg = loaded
	}

	switch {
	case clientCfg.Region != "":
		cfg.Region = clientCfg.Region
	case cfg.Region == "":
		cfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}
	return cfg, nil
}

// s3Options translates endpoint, addressing and transport settings into
// per-client S3 options.
func s3Options(clientCfg *pubtypes.ClientConfig) []func(*s3.Options) {
	httpClient := clientCfg.CustomHTTPClient
	if httpClient == nil && clientCfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}

	return []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = clientCfg.ForcePathStyle
			if clientCfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(clientCfg.Endpoint)
			}
			if httpClient != nil {
				o.HTTPClient = httpClient
			}
		},
	}
}

func newClient(s3Client s3api.S3API, clientCfg *pubtypes.ClientConfig) *Client {
	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewBaseOSFS()
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		s3Client:    s3Client,
		fs:          filesystem,
		logger:      logger,
		concurrency: clientCfg.Concurrency,
	}
}

// SetFilesystem replaces the filesystem local trees are read from. Passes
// already running keep the one they started with.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// Close is a no-op kept for symmetry with other clients; the SDK client
// holds no resources that need releasing.
func (c *Client) Close() error {
	return nil
}
