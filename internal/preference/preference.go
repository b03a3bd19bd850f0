// Package preference persists the selected room between visits.
package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/meter-dashboard/internal/config"
)

// Key is the fixed name the selected room is stored under.
const Key = "selectedRoom"

// DefaultRoom is returned when nothing has been stored.
const DefaultRoom = "all"

// ErrInvalidRoom is returned by Set for a blank room.
var ErrInvalidRoom = errors.New("room must not be empty")

// Store reads and writes the selected room.
type Store interface {
	// Get returns the stored room, or DefaultRoom when none is stored.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, room string) error
}

// New builds the store named by cfg.Type.
func New(ctx context.Context, cfg config.PreferenceConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Owner), nil
	case "dynamodb":
		client, err := newDynamoClient(ctx, cfg.AWSRegion, cfg.AWSProfile)
		if err != nil {
			return nil, err
		}
		return NewDynamoStore(client, cfg.DynamoDBTable, cfg.Owner), nil
	default:
		return nil, fmt.Errorf("unknown preference store type %q", cfg.Type)
	}
}

// normalizeRoom trims room and rejects blanks.
func normalizeRoom(room string) (string, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return "", ErrInvalidRoom
	}
	return room, nil
}
