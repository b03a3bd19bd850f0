// Package storage publishes dashboard snapshots so the pages can be served
// as static JSON. Snapshots live under <room>/<id>.json with a
// <room>/latest.json copy of the newest one.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/dashboard"
)

// ErrNotFound is returned by Latest when no snapshot exists for the room.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one published set of pages.
type Snapshot struct {
	ID        string           `json:"id"`
	Room      string           `json:"room"`
	CreatedAt time.Time        `json:"created_at"`
	Pages     *dashboard.Pages `json:"pages"`
}

// NewSnapshot wraps pages with a fresh ID.
func NewSnapshot(pages *dashboard.Pages, now time.Time) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		Room:      pages.Room,
		CreatedAt: now.UTC(),
		Pages:     pages,
	}
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context, room string) (*Snapshot, error)
}

// New creates the store selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (SnapshotStore, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStore(cfg.LocalPath)
	case "aws":
		if cfg.S3Bucket == "" {
			return nil, errors.New("storage: s3_bucket is required for type aws")
		}
		client, err := newS3Client(ctx, cfg.AWSRegion, cfg.GetAWSProfile())
		if err != nil {
			return nil, fmt.Errorf("initializing AWS storage: %w", err)
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// roomSegment turns a room label into a single safe path segment.
func roomSegment(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		room = "all"
	}
	seg := url.PathEscape(room)
	if strings.Trim(seg, ".") == "" {
		return "_"
	}
	return seg
}
