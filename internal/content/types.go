package content

import "time"

// Item is an article as the lifecycle engine sees it: status, ownership and
// version, plus the minimal metadata the platform stores alongside them.
// Bodies, categories and tags live with the content-storage collaborator.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	OwnerID     string     `json:"owner_id"`
	Status      Status     `json:"status"`
	Version     int64      `json:"version"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Filter narrows List results.
type Filter struct {
	Status  Status
	OwnerID string
	Limit   int
}
