package preference

import (
	"context"
	"sync"
)

// MemoryStore keeps the preference for the life of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	room string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.room == "" {
		return DefaultRoom, nil
	}
	return s.room, nil
}

func (s *MemoryStore) Set(_ context.Context, room string) error {
	room, err := normalizeRoom(room)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
	return nil
}
