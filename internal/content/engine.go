package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/Aviat-at/mapleCMS/internal/auth"
	"github.com/Aviat-at/mapleCMS/internal/ids"
	"github.com/Aviat-at/mapleCMS/internal/stream"
)

// Engine validates and applies lifecycle transitions on articles. It owns the
// status field and the modification timestamp; nothing else.
type Engine struct {
	store  ItemStore
	now    func() time.Time
	events *stream.Stream
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.now = fn
		}
	}
}

// WithEvents publishes a stream event after every applied transition.
func WithEvents(s *stream.Stream) EngineOption {
	return func(e *Engine) {
		e.events = s
	}
}

// NewEngine constructs the lifecycle engine.
func NewEngine(store ItemStore, opts ...EngineOption) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create inserts a new draft owned by the actor. The slug is derived from the
// title, suffixed with a counter on collision.
func (e *Engine) Create(ctx context.Context, title string, actor auth.Identity) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if !Allow(actor.Role, ActionCreate, true) {
		return nil, ErrForbidden
	}
	itemSlug, err := e.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}
	now := e.now().UTC()
	item := &Item{
		ID:        ids.New(),
		Title:     title,
		Slug:      itemSlug,
		OwnerID:   actor.UserID,
		Status:    StatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get loads an article, hiding unpublished items from principals who are
// neither the owner nor editor and above.
func (e *Engine) Get(ctx context.Context, id string, actor auth.Identity) (*Item, error) {
	item, err := e.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allow(actor.Role, ActionRead, item.OwnerID == actor.UserID) {
		return nil, ErrForbidden
	}
	if item.Status != StatusPublished && item.OwnerID != actor.UserID && !actor.Role.AtLeast(auth.RoleEditor) {
		return nil, ErrNotFound
	}
	return item, nil
}

// List returns articles matching the filter. The same visibility rule as Get
// applies: principals below editor see published items and their own only.
func (e *Engine) List(ctx context.Context, f Filter, actor auth.Identity) ([]*Item, error) {
	if !Allow(actor.Role, ActionRead, false) {
		return nil, ErrForbidden
	}
	items, err := e.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if actor.Role.AtLeast(auth.RoleEditor) {
		return items, nil
	}
	visible := items[:0]
	for _, item := range items {
		if item.Status == StatusPublished || item.OwnerID == actor.UserID {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// Transition moves an article to target if the edge exists in the transition
// table, the actor is permitted to trigger it, and the caller's observed
// version is current. First publication stamps PublishedAt.
func (e *Engine) Transition(ctx context.Context, itemID string, target Status, expectedVersion int64, actor auth.Identity) (*Item, error) {
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}
	item, err := e.store.Find(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// Version first: a stale caller learns about the concurrent edit before
	// anything else, and never overwrites it.
	if item.Version != expectedVersion {
		return nil, ErrConflict
	}
	action, ok := transitionActions[edge{item.Status, target}]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, target)
	}
	if !Allow(actor.Role, action, item.OwnerID == actor.UserID) {
		return nil, ErrForbidden
	}

	now := e.now().UTC()
	var publishedAt *time.Time
	if target == StatusPublished {
		publishedAt = &now
	}
	updated, err := e.store.UpdateStatus(ctx, itemID, expectedVersion, target, publishedAt, now)
	if err != nil {
		return nil, err
	}
	if e.events != nil {
		e.events.Publish(stream.Event{
			ItemID:    updated.ID,
			Slug:      updated.Slug,
			From:      string(item.Status),
			To:        string(target),
			ActorID:   actor.UserID,
			Timestamp: now,
		})
	}
	return updated, nil
}

func (e *Engine) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", ErrInvalidInput
	}
	candidate := base
	for counter := 1; ; counter++ {
		_, err := e.store.FindBySlug(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
