package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// maxBodyBytes caps the CSV download.
const maxBodyBytes = 32 << 20

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads the CSV export over HTTP.
type HTTPFetcher struct {
	url    string
	client HTTPDoer
}

// NewHTTPFetcher creates a fetcher for url. A non-empty token is sent as an
// OAuth2 bearer token, which private sheets require.
func NewHTTPFetcher(url, token string, timeout time.Duration) *HTTPFetcher {
	base := &http.Client{Timeout: timeout}
	if token == "" {
		return &HTTPFetcher{url: url, client: base}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout
	return &HTTPFetcher{url: url, client: client}
}

// WithClient replaces the HTTP client. Used by tests.
func (f *HTTPFetcher) WithClient(c HTTPDoer) *HTTPFetcher {
	f.client = c
	return f
}

func (f *HTTPFetcher) Location() string { return f.url }

func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fetchErr("build request: %v", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fetchErr("GET sheet: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fetchErr("GET sheet: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fetchErr("read body: %v", err)
	}
	return string(body), nil
}
