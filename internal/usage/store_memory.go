package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string][]Record
}

// NewMemoryStore constructs an in-memory usage store for local development
// and tests.
func NewMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string][]Record)}
}

func (s *memoryStore) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(userID, since), nil
}

func (s *memoryStore) Reserve(ctx context.Context, rec Record, since time.Time, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countLocked(rec.UserID, since) >= limit {
		return ErrLimitReached
	}
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
	return nil
}

func (s *memoryStore) countLocked(userID string, since time.Time) int {
	count := 0
	for _, rec := range s.records[userID] {
		if !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count
}

var _ Store = (*memoryStore)(nil)
