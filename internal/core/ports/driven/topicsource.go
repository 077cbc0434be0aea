package driven

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// TopicSource provides topic facets and side-content configuration.
type TopicSource interface {
	// FetchTopic returns the topic with the given ID or slug.
	// Returns domain.ErrNotFound if it does not exist.
	FetchTopic(ctx context.Context, id string) (*domain.Topic, error)

	// ListTopics returns all topics.
	ListTopics(ctx context.Context) ([]domain.Topic, error)
}
