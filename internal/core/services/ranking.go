package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// Verify interface compliance.
var _ driving.RankingService = (*RankingService)(nil)

// InteractionWeights maps an engagement signal to its score contribution.
// Signals without a weight contribute nothing.
type InteractionWeights map[domain.InteractionType]float64

// DefaultInteractionWeights returns share 3, swipe 1, view 0.5.
func DefaultInteractionWeights() InteractionWeights {
	return InteractionWeights{
		domain.InteractionShare: 3,
		domain.InteractionSwipe: 1,
		domain.InteractionView:  0.5,
	}
}

// RankStories scores stories by weighted engagement and orders them by
// score descending, then by CreatedAt descending. Interactions on stories
// outside the set are ignored. The sort is stable.
func RankStories(stories []domain.Story, interactions []domain.Interaction, weights InteractionWeights) []domain.RankedStory {
	if weights == nil {
		weights = DefaultInteractionWeights()
	}

	ranked := make([]domain.RankedStory, len(stories))
	byID := make(map[string]*domain.RankedStory, len(stories))
	for i := range stories {
		ranked[i] = domain.RankedStory{Story: stories[i]}
		if _, dup := byID[stories[i].ID]; !dup {
			byID[stories[i].ID] = &ranked[i]
		}
	}

	for _, in := range interactions {
		r, ok := byID[in.StoryID]
		if !ok {
			continue
		}
		r.Score += weights[in.Type]
		switch in.Type {
		case domain.InteractionShare:
			r.Shares++
		case domain.InteractionSwipe:
			r.Swipes++
		case domain.InteractionView:
			r.Views++
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Story.CreatedAt.After(ranked[j].Story.CreatedAt)
	})
	return ranked
}

// RankingService ranks roundup stories by engagement at read time.
type RankingService struct {
	roundups     driven.RoundupStore
	stories      driven.StorySource
	interactions driven.InteractionSource
	weights      InteractionWeights
}

// NewRankingService creates a ranking service with the default weights.
func NewRankingService(
	roundups driven.RoundupStore,
	stories driven.StorySource,
	interactions driven.InteractionSource,
) *RankingService {
	return &RankingService{
		roundups:     roundups,
		stories:      stories,
		interactions: interactions,
		weights:      DefaultInteractionWeights(),
	}
}

// RankRoundup loads a roundup, its stories and their interactions and
// returns the stories ranked.
func (s *RankingService) RankRoundup(ctx context.Context, roundupID string) (*domain.RankedRoundup, error) {
	roundup, err := s.roundups.GetRoundup(ctx, roundupID)
	if err != nil {
		return nil, fmt.Errorf("get roundup %s: %w", roundupID, err)
	}

	ranked, err := s.RankStories(ctx, roundup.StoryIDs)
	if err != nil {
		return nil, fmt.Errorf("rank roundup %s: %w", roundupID, err)
	}

	if missing := len(roundup.StoryIDs) - len(ranked); missing > 0 {
		logger.Warn("roundup %s: %d stories not found", roundupID, missing)
	}
	return &domain.RankedRoundup{Roundup: *roundup, Stories: ranked}, nil
}

// RankStories ranks an ad-hoc set of stories.
func (s *RankingService) RankStories(ctx context.Context, storyIDs []string) ([]domain.RankedStory, error) {
	if len(storyIDs) == 0 {
		return nil, nil
	}

	stories, err := s.stories.GetStories(ctx, storyIDs)
	if err != nil {
		return nil, fmt.Errorf("get stories: %w", err)
	}

	interactions, err := s.interactions.FetchInteractions(ctx, storyIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}

	logger.Debug("ranking %d stories over %d interactions", len(stories), len(interactions))
	return RankStories(stories, interactions, s.weights), nil
}

// ListRoundups returns a topic's roundups.
func (s *RankingService) ListRoundups(ctx context.Context, topicID string) ([]domain.Roundup, error) {
	return s.roundups.ListRoundups(ctx, topicID)
}
