package verse

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used when no database is configured
// and by tests. Verses are kept in id order.
type MemoryStore struct {
	mu     sync.RWMutex
	verses []Verse
}

// NewMemoryStore constructs a MemoryStore seeded with the given verses.
func NewMemoryStore(verses ...Verse) *MemoryStore {
	s := &MemoryStore{verses: make([]Verse, len(verses))}
	copy(s.verses, verses)
	sort.Slice(s.verses, func(i, j int) bool { return s.verses[i].ID < s.verses[j].ID })
	return s
}

// Count returns the number of stored verses.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.verses)), nil
}

// ByOffset returns the verse at the given position in id order.
func (s *MemoryStore) ByOffset(ctx context.Context, offset int64) (Verse, error) {
	if err := ctx.Err(); err != nil {
		return Verse{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 || offset >= int64(len(s.verses)) {
		return Verse{}, ErrOutOfRange
	}
	return s.verses[offset], nil
}
