package driven

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// InteractionSource provides the engagement log used for roundup ranking.
type InteractionSource interface {
	// FetchInteractions returns every interaction recorded for the given stories.
	FetchInteractions(ctx context.Context, storyIDs []string) ([]domain.Interaction, error)
}

// RoundupStore provides roundup definitions.
type RoundupStore interface {
	// GetRoundup returns the roundup with the given ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetRoundup(ctx context.Context, id string) (*domain.Roundup, error)

	// ListRoundups returns a topic's roundups, most recent period first.
	ListRoundups(ctx context.Context, topicID string) ([]domain.Roundup, error)
}
