// Package pagination implements the keyset cursors shared by the storage
// adapters. A cursor names the last story of the previous page as
// "<created-at unix nanos>:<story id>"; the next page starts strictly after
// it in stream order.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// Cursor is a decoded keyset position.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Encode returns the opaque cursor for the position after story.
func Encode(story domain.Story) string {
	return strconv.FormatInt(story.CreatedAt.UnixNano(), 10) + ":" + story.ID
}

// Decode parses a cursor. An empty string decodes to the zero Cursor.
func Decode(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}
	nanos, id, ok := strings.Cut(raw, ":")
	if !ok || id == "" {
		return Cursor{}, fmt.Errorf("%w: cursor %q", domain.ErrInvalidInput, raw)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: cursor %q", domain.ErrInvalidInput, raw)
	}
	return Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// IsZero reports whether the cursor points at the start of the stream.
func (c Cursor) IsZero() bool {
	return c.ID == ""
}

// Less orders two stories in stream order: newest first for SortNewest,
// oldest first for SortOldest, ties broken by ID in the same direction.
func Less(a, b domain.Story, order domain.SortOrder) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if order == domain.SortOldest {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	if order == domain.SortOldest {
		return a.ID < b.ID
	}
	return a.ID > b.ID
}

// After reports whether story comes strictly after the cursor in stream order.
func (c Cursor) After(story domain.Story, order domain.SortOrder) bool {
	if c.IsZero() {
		return true
	}
	return Less(domain.Story{ID: c.ID, CreatedAt: c.CreatedAt}, story, order)
}
