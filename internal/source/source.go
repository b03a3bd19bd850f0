// Package source retrieves the raw meter CSV text. A fetch is a single
// attempt: failures are returned to the caller and never retried.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/meter-dashboard/internal/config"
)

// ErrFetch wraps every retrieval failure.
var ErrFetch = errors.New("fetch failed")

// Fetcher returns the full CSV text of the sheet.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
	// Location names the source for logs and ingestion history. Secrets are
	// not included.
	Location() string
}

// New picks a Fetcher from the scheme of the configured sheet URL:
// http(s) URLs go over HTTP, s3:// URLs through S3 and anything else is read
// from the local filesystem.
func New(ctx context.Context, cfg config.SheetConfig) (Fetcher, error) {
	url := cfg.URL()
	switch {
	case url == "":
		return nil, errors.New("sheet: neither csv_url nor sheet_id is set")
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return NewHTTPFetcher(url, cfg.AccessToken, cfg.Timeout()), nil
	case strings.HasPrefix(url, "s3://"):
		bucket, key, err := ParseS3URL(url)
		if err != nil {
			return nil, err
		}
		client, err := newS3Client(ctx, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey)
		if err != nil {
			return nil, err
		}
		return NewS3Fetcher(client, bucket, key), nil
	default:
		return NewFileFetcher(strings.TrimPrefix(url, "file://")), nil
	}
}

func fetchErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFetch, fmt.Sprintf(format, args...))
}
