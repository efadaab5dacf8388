package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps drafts in process. Used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[uuid.UUID]Draft{}}
}

func (m *MemoryStore) Save(ctx context.Context, d *Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.ID] = clone(*d)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(d)
	return &c, nil
}

func (m *MemoryStore) GetByCode(ctx context.Context, code string) (*Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *Draft
	for _, d := range m.drafts {
		if d.Code == code && (found == nil || d.CreatedAt.After(found.CreatedAt)) {
			c := clone(d)
			found = &c
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// List returns the newest drafts first.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]Draft, error) {
	m.mu.RLock()
	out := make([]Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, clone(d))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Draft) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clone(d Draft) Draft {
	d.Records = slices.Clone(d.Records)
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		d.CompletedAt = &t
	}
	return d
}
