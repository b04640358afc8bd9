package content

import (
	"context"
	"database/sql"
	"time"
)

var _ ItemStore = (*PGStore)(nil)

// PGStore implements ItemStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const itemColumns = `id, title, slug, owner_id, status, version, published_at, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, item *Item) error {
	_, err := s.db.ExecContext(ctx,
		`insert into articles(id, title, slug, owner_id, status, version, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.Title, item.Slug, item.OwnerID, string(item.Status), item.Version,
		item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+itemColumns+` from articles where id=$1`, id)
	return scanItem(row)
}

func (s *PGStore) FindBySlug(ctx context.Context, slug string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+itemColumns+` from articles where slug=$1`, slug)
	return scanItem(row)
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]*Item, error) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := `select ` + itemColumns + ` from articles where ($1 = '' or status = $1) and ($2 = '' or owner_id = $2)
		 order by created_at desc limit $3`
	rows, err := s.db.QueryContext(ctx, query, string(f.Status), f.OwnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatus is a versioned compare-and-set: the update applies only when
// the stored version still equals expectedVersion.
func (s *PGStore) UpdateStatus(ctx context.Context, id string, expectedVersion int64, to Status, publishedAt *time.Time, now time.Time) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`update articles
		 set status=$3, version=version+1, updated_at=$4,
		     published_at=coalesce(published_at, $5)
		 where id=$1 and version=$2
		 returning `+itemColumns,
		id, expectedVersion, string(to), now, publishedAt,
	)
	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	// No row matched: missing item or stale version.
	if _, findErr := s.Find(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item        Item
		status      string
		publishedAt sql.NullTime
	)
	err := row.Scan(&item.ID, &item.Title, &item.Slug, &item.OwnerID, &status, &item.Version,
		&publishedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item.Status = Status(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		item.PublishedAt = &t
	}
	return &item, nil
}
