package domain

import "time"

type Announcement struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"` // sanitized HTML
	AuthorID    int64     `json:"authorID"`
	Pinned      bool      `json:"pinned"`
	PublishedAt time.Time `json:"publishedAt"`
	Version     int32     `json:"-"`
}
