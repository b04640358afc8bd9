package content

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ ItemStore = (*InMemory)(nil)

// InMemory implements ItemStore with in-process concurrency safety. Used by
// tests and DSN-less development runs.
type InMemory struct {
	mu    sync.RWMutex
	items map[string]*Item
	slugs map[string]string // slug -> item id
}

// NewInMemory creates an empty item store.
func NewInMemory() *InMemory {
	return &InMemory{
		items: make(map[string]*Item),
		slugs: make(map[string]string),
	}
}

func (s *InMemory) Create(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.slugs[item.Slug]; taken {
		return ErrInvalidInput
	}
	cp := *item
	s.items[item.ID] = &cp
	s.slugs[item.Slug] = item.ID
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *InMemory) FindBySlug(ctx context.Context, slug string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.items[id]
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, f Filter) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var out []*Item
	for _, item := range s.items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.OwnerID != "" && item.OwnerID != f.OwnerID {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id string, expectedVersion int64, to Status, publishedAt *time.Time, now time.Time) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if item.Version != expectedVersion {
		return nil, ErrConflict
	}
	item.Status = to
	item.Version++
	item.UpdatedAt = now
	if publishedAt != nil && item.PublishedAt == nil {
		t := *publishedAt
		item.PublishedAt = &t
	}
	cp := *item
	return &cp, nil
}
