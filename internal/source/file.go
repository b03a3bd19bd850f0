package source

import (
	"context"
	"os"
)

// FileFetcher reads a CSV export from disk. Used for local development and
// offline snapshots.
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Location() string { return f.path }

func (f *FileFetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fetchErr("%v", err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fetchErr("%v", err)
	}
	return string(data), nil
}
