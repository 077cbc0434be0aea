package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// mockFeedService is a mock implementation of driving.FeedService.
type mockFeedService struct {
	session *mockSession
	err     error
}

func (m *mockFeedService) Open(_ context.Context, _ string) (driving.FeedSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockFeedService) Monitor(_ driving.FeedSession) (driving.FreshnessMonitor, error) {
	return nil, domain.ErrInvalidInput
}

// mockSession serves a fixed list of pages, one per LoadMore.
type mockSession struct {
	topic   domain.Topic
	pages   [][]domain.Story
	loaded  int
	filters domain.FilterState
	setCalls int
	similar driving.MoreLikeThisResult
	closed  bool
}

func newMockSession(pages ...[]domain.Story) *mockSession {
	return &mockSession{
		topic:  domain.Topic{ID: "brighton", Name: "Brighton"},
		pages:  pages,
		loaded: min(1, len(pages)),
	}
}

func (m *mockSession) ID() string          { return "session-1" }
func (m *mockSession) Topic() domain.Topic { return m.topic }

func (m *mockSession) View() driving.FeedView {
	var items []domain.ContentItem
	for _, page := range m.pages[:m.loaded] {
		for _, story := range page {
			items = append(items, domain.NewStoryItem(story, len(items)+1))
		}
	}
	hasMore := m.loaded < len(m.pages)
	marker := domain.ItemEndOfFeed
	if hasMore {
		marker = domain.ItemLoadMore
	}
	view := driving.FeedView{HasMore: hasMore, Filters: m.filters}
	if len(items) == 0 {
		view.Empty = driving.EmptyNoContent
		if !m.filters.IsEmpty() {
			view.Empty = driving.EmptyNoMatches
		}
		return view
	}
	view.Items = append(items, domain.NewMarkerItem(marker, len(items)))
	return view
}

func (m *mockSession) LoadMore(_ context.Context) error {
	if m.loaded < len(m.pages) {
		m.loaded++
	}
	return nil
}

func (m *mockSession) Retry(_ context.Context) error { return nil }

func (m *mockSession) Toggle(_ context.Context, _ domain.FacetType, _ string) error { return nil }

func (m *mockSession) SetFilters(_ context.Context, filters domain.FilterState) error {
	m.filters = filters
	m.setCalls++
	return nil
}

func (m *mockSession) Remove(_ context.Context, _ domain.FacetType, _ string) error { return nil }
func (m *mockSession) ClearAll(_ context.Context) error                             { return nil }
func (m *mockSession) Filters() domain.FilterState                                  { return m.filters }
func (m *mockSession) Available() driving.AvailableFacets                           { return driving.AvailableFacets{} }

func (m *mockSession) MoreLikeThis(_ context.Context, _ string) (driving.MoreLikeThisResult, error) {
	return m.similar, nil
}

func (m *mockSession) Prefetch(_ context.Context, _ string) {}
func (m *mockSession) NewestCreatedAt() time.Time           { return time.Time{} }

func (m *mockSession) IsRendered(storyID string) bool {
	for _, page := range m.pages[:m.loaded] {
		for _, story := range page {
			if story.ID == storyID {
				return true
			}
		}
	}
	return false
}

func (m *mockSession) MergeNewStories(_ []domain.Story) driving.MergeOutcome {
	return driving.MergeNoop
}

func (m *mockSession) Close() { m.closed = true }

// mockTopicService is a mock implementation of driving.TopicService.
type mockTopicService struct {
	topics []domain.Topic
	err    error
}

func (m *mockTopicService) List(_ context.Context) ([]domain.Topic, error) {
	return m.topics, m.err
}

func (m *mockTopicService) Get(_ context.Context, _ string) (*domain.Topic, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.topics) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.topics[0], nil
}

// mockRankingService is a mock implementation of driving.RankingService.
type mockRankingService struct {
	ranked   *domain.RankedRoundup
	roundups []domain.Roundup
	err      error
}

func (m *mockRankingService) RankRoundup(_ context.Context, _ string) (*domain.RankedRoundup, error) {
	return m.ranked, m.err
}

func (m *mockRankingService) RankStories(_ context.Context, _ []string) ([]domain.RankedStory, error) {
	return nil, m.err
}

func (m *mockRankingService) ListRoundups(_ context.Context, _ string) ([]domain.Roundup, error) {
	return m.roundups, m.err
}

// mockSlots is a mock implementation of driving.SlotDiagnostics.
type mockSlots struct {
	rules      []domain.SlotRule
	collisions []domain.SlotCollision
	lastN      int
}

func (m *mockSlots) Rules() []domain.SlotRule                     { return m.rules }
func (m *mockSlots) CollisionReport(n int) []domain.SlotCollision {
	m.lastN = n
	return m.collisions
}

func story(id, title string) domain.Story {
	return domain.Story{
		ID:     id,
		Title:  title,
		Slides: []domain.Slide{{ID: id + "-0", Content: title}},
		Source: domain.SourceRef{URL: "https://www.theargus.co.uk/" + id},
	}
}
