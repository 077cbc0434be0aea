package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// StorySource provides the primary story stream of a topic.
type StorySource interface {
	// FetchStoryPage returns one page of published stories matching the request.
	// An empty NextCursor signals the end of the stream.
	FetchStoryPage(ctx context.Context, req domain.PageRequest) (domain.StoryPage, error)

	// FetchStoriesNewerThan returns published stories created strictly after since,
	// newest first.
	FetchStoriesNewerThan(ctx context.Context, topicID string, since time.Time) ([]domain.Story, error)

	// GetStories returns the stories with the given IDs. Unknown IDs are skipped.
	GetStories(ctx context.Context, ids []string) ([]domain.Story, error)
}
