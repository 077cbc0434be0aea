package driving

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// RankingService orders roundup stories by engagement.
type RankingService interface {
	// RankRoundup ranks a stored roundup's stories.
	RankRoundup(ctx context.Context, roundupID string) (*domain.RankedRoundup, error)

	// RankStories ranks an ad-hoc story set.
	RankStories(ctx context.Context, storyIDs []string) ([]domain.RankedStory, error)

	// ListRoundups returns a topic's roundups.
	ListRoundups(ctx context.Context, topicID string) ([]domain.Roundup, error)
}
