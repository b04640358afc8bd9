package content

import (
	"context"
	"time"
)

// ItemStore persists article records. UpdateStatus is the only mutation the
// lifecycle engine performs and must be a versioned compare-and-set.
type ItemStore interface {
	Create(ctx context.Context, item *Item) error
	Find(ctx context.Context, id string) (*Item, error)
	FindBySlug(ctx context.Context, slug string) (*Item, error)
	List(ctx context.Context, f Filter) ([]*Item, error)

	// UpdateStatus applies the status change if and only if the stored
	// version equals expectedVersion. It bumps the version, refreshes the
	// modification timestamp, and sets publishedAt when non-nil and not
	// already set. Returns ErrConflict when the version is stale.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, to Status, publishedAt *time.Time, now time.Time) (*Item, error)
}
