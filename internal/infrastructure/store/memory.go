package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pickpost/backend/internal/domain"
)

// Compile-time interface guard.
var _ domain.DraftRepository = (*MemoryStore)(nil)

// MemoryStore is a thread-safe in-memory draft repository. Suitable for
// development and tests; drafts do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]memoryEntry
	seq    int
}

type memoryEntry struct {
	draft domain.Draft
	seq   int
}

// NewMemoryStore creates an empty in-memory draft store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]memoryEntry)}
}

// Save stores a copy of the draft.
func (s *MemoryStore) Save(ctx context.Context, draft *domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.drafts[draft.ID] = memoryEntry{draft: clone(draft), seq: s.seq}
	return nil
}

// Get returns a copy of the draft with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	d := clone(&entry.draft)
	return &d, nil
}

// List returns drafts matching the filter in insertion order.
func (s *MemoryStore) List(ctx context.Context, filter domain.DraftFilter) ([]*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]memoryEntry, 0, len(s.drafts))
	for _, entry := range s.drafts {
		if filter.BatchID != "" && entry.draft.BatchID != filter.BatchID {
			continue
		}
		if filter.Status != "" && entry.draft.Status != filter.Status {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]*domain.Draft, 0, len(entries))
	for _, entry := range entries {
		d := clone(&entry.draft)
		out = append(out, &d)
	}
	return out, nil
}

// Update replaces an existing draft.
func (s *MemoryStore) Update(ctx context.Context, draft *domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[draft.ID]
	if !ok {
		return domain.ErrDraftNotFound
	}
	entry.draft = clone(draft)
	s.drafts[draft.ID] = entry
	return nil
}

// Delete removes a draft.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return domain.ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}

// Size returns the current number of drafts (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// clone copies a draft deeply enough that callers cannot mutate stored state
// through shared slices or pointers.
func clone(d *domain.Draft) domain.Draft {
	out := *d
	if d.Recommendations != nil {
		out.Recommendations = append([]domain.Recommendation(nil), d.Recommendations...)
	}
	if d.SentAt != nil {
		t := *d.SentAt
		out.SentAt = &t
	}
	return out
}
