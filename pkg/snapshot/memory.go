package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// MemoryStore keeps snapshots in process memory, bounded to the newest max
// entries.
type MemoryStore struct {
	mu    sync.RWMutex
	max   int
	snaps map[uuid.UUID]*deps.Snapshot
}

// DefaultMemoryLimit bounds a MemoryStore created with a non-positive max.
const DefaultMemoryLimit = 100

// NewMemoryStore creates an in-memory store holding at most max snapshots.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMemoryLimit
	}
	return &MemoryStore{max: max, snaps: make(map[uuid.UUID]*deps.Snapshot)}
}

func (s *MemoryStore) Save(ctx context.Context, snap *deps.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
	for len(s.snaps) > s.max {
		delete(s.snaps, s.oldest())
	}
	return nil
}

func (s *MemoryStore) oldest() uuid.UUID {
	var id uuid.UUID
	var at time.Time
	for k, v := range s.snaps {
		if id == uuid.Nil || v.TakenAt.Before(at) {
			id, at = k, v.TakenAt
		}
	}
	return id
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*deps.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context, module string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []Summary
	for _, snap := range s.snaps {
		if module == "" || snap.Module == module {
			list = append(list, Summarize(snap))
		}
	}
	sortSummaries(list)
	return list, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.snaps, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, snap := range s.snaps {
		if snap.TakenAt.Before(cutoff) {
			delete(s.snaps, id)
			n++
		}
	}
	return n, nil
}

var _ Store = (*MemoryStore)(nil)
