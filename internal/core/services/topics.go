package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.TopicService = (*TopicService)(nil)

// TopicService resolves topics by ID or slug.
type TopicService struct {
	topics driven.TopicSource
}

// NewTopicService creates a topic service.
func NewTopicService(topics driven.TopicSource) *TopicService {
	return &TopicService{topics: topics}
}

// List returns all topics.
func (s *TopicService) List(ctx context.Context) ([]domain.Topic, error) {
	return s.topics.ListTopics(ctx)
}

// Get returns a topic by ID, falling back to a slug lookup.
func (s *TopicService) Get(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.topics.FetchTopic(ctx, id)
	if err == nil {
		return topic, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	all, listErr := s.topics.ListTopics(ctx)
	if listErr != nil {
		return nil, listErr
	}
	for i := range all {
		if strings.EqualFold(all[i].Slug, id) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("topic %s: %w", id, domain.ErrNotFound)
}
