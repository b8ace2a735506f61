package lister

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sperrors "github.com/input-output-hk/sitepublish/errors"
	"github.com/input-output-hk/sitepublish/internal/s3api"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// MaxPageSize is the largest page S3 returns.
const MaxPageSize int32 = 1000

// Lister aggregates paginated object listings.
type Lister struct {
	client   s3api.Lister
	pageSize int32
	logger   *slog.Logger
}

// New creates a new Lister. A pageSize outside 1..1000 selects the maximum.
func New(client s3api.Lister, pageSize int32, logger *slog.Logger) *Lister {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lister{
		client:   client,
		pageSize: pageSize,
		logger:   logger,
	}
}

// List returns every object under prefix with keys made relative to it.
// prefix must be empty or end in "/".
func (l *Lister) List(ctx context.Context, bucket, prefix string) ([]pubtypes.RemoteEntry, error) {
	var entries []pubtypes.RemoteEntry

	paginator := l.paginator(bucket, prefix)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, sperrors.NewListingError(bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			key, ok := strings.CutPrefix(aws.ToString(obj.Key), prefix)
			if !ok || key == "" {
				continue
			}
			entries = append(entries, pubtypes.RemoteEntry{
				Key:            key,
				IntegrityToken: strings.Trim(aws.ToString(obj.ETag), `"`),
				SizeBytes:      aws.ToInt64(obj.Size),
			})
		}
	}

	l.logger.DebugContext(ctx, "remote listing complete",
		"bucket", bucket,
		"prefix", prefix,
		"objects", len(entries),
		"pages", paginator.pages,
	)
	return entries, nil
}

func (l *Lister) paginator(bucket, prefix string) *Paginator {
	return &Paginator{
		client:    l.client,
		bucket:    bucket,
		prefix:    prefix,
		pageSize:  l.pageSize,
		firstPage: true,
	}
}

// Paginator walks ListObjectsV2 continuation tokens.
type Paginator struct {
	client            s3api.Lister
	bucket            string
	prefix            string
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
	pages             int
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
// A page that claims truncation without a usable continuation token is an error.
func (p *Paginator) NextPage(ctx context.Context) (*s3.ListObjectsV2Output, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		MaxKeys: aws.Int32(p.pageSize),
	}
	if p.prefix != "" {
		input.Prefix = aws.String(p.prefix)
	}
	if !p.firstPage {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects page %d: %w", p.pages+1, err)
	}
	if output == nil {
		return nil, fmt.Errorf("list objects page %d: empty response", p.pages+1)
	}

	p.pages++
	p.firstPage = false
	p.hasMorePages = aws.ToBool(output.IsTruncated)

	if p.hasMorePages {
		next := aws.ToString(output.NextContinuationToken)
		if next == "" {
			return nil, fmt.Errorf("list objects page %d: truncated without continuation token", p.pages)
		}
		if next == aws.ToString(p.continuationToken) {
			return nil, fmt.Errorf("list objects page %d: continuation token did not advance", p.pages)
		}
	}
	p.continuationToken = output.NextContinuationToken

	return output, nil
}
