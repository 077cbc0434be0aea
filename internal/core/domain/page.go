package domain

import "time"

// SortOrder controls the direction of the primary story stream.
type SortOrder string

// Available sort orders.
const (
	// SortNewest pages newest-first (default).
	SortNewest SortOrder = "newest"

	// SortOldest pages oldest-first.
	SortOldest SortOrder = "oldest"
)

// IsValid returns true if the sort order is recognised.
func (s SortOrder) IsValid() bool {
	return s == SortNewest || s == SortOldest
}

// String returns the string representation.
func (s SortOrder) String() string {
	return string(s)
}

// PageRequest asks the story source for one page of a topic's stream.
type PageRequest struct {
	// TopicID scopes the stream.
	TopicID string

	// Filters restrict the page server-side. Empty means unfiltered.
	Filters FilterState

	// Cursor is the opaque position returned by the previous page.
	// Empty requests the first page.
	Cursor string

	// Limit is the maximum number of stories to return.
	Limit int

	// Sort is the stream direction.
	Sort SortOrder
}

// StoryPage is one page of the primary story stream.
type StoryPage struct {
	// Stories in stream order. May include ghosts.
	Stories []Story

	// NextCursor is the position of the next page; empty when exhausted.
	NextCursor string
}

// HasMore reports whether another page exists.
func (p StoryPage) HasMore() bool {
	return p.NextCursor != ""
}

// NewestCreatedAt returns the latest CreatedAt among non-ghost stories,
// or the zero time if there are none.
func NewestCreatedAt(stories []Story) time.Time {
	var newest time.Time
	for i := range stories {
		if stories[i].IsGhost() {
			continue
		}
		if stories[i].CreatedAt.After(newest) {
			newest = stories[i].CreatedAt
		}
	}
	return newest
}
