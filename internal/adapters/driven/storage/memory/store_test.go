package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var t0 = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func seedStories(t *testing.T, store *Store, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.SaveStory(context.Background(), domain.Story{
			ID:        fmt.Sprintf("s%02d", i),
			TopicID:   "brighton",
			Title:     fmt.Sprintf("Story %d", i),
			Slides:    []domain.Slide{{Content: "text"}},
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
			Published: true,
		}))
	}
}

func TestStore_FetchStoryPage_PagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedStories(t, store, 5)

	page, err := store.FetchStoryPage(ctx, domain.PageRequest{TopicID: "brighton", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Stories, 2)
	assert.Equal(t, "s05", page.Stories[0].ID)
	assert.Equal(t, "s04", page.Stories[1].ID)
	assert.True(t, page.HasMore())

	page, err = store.FetchStoryPage(ctx, domain.PageRequest{TopicID: "brighton", Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, "s03", page.Stories[0].ID)

	page, err = store.FetchStoryPage(ctx, domain.PageRequest{TopicID: "brighton", Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Stories, 1)
	assert.Equal(t, "s01", page.Stories[0].ID)
	assert.False(t, page.HasMore())
}

func TestStore_FetchStoryPage_Oldest(t *testing.T) {
	store := NewStore()
	seedStories(t, store, 3)

	page, err := store.FetchStoryPage(context.Background(), domain.PageRequest{
		TopicID: "brighton", Limit: 10, Sort: domain.SortOldest,
	})
	require.NoError(t, err)
	require.Len(t, page.Stories, 3)
	assert.Equal(t, "s01", page.Stories[0].ID)
}

func TestStore_FetchStoryPage_Filters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedStories(t, store, 2)
	require.NoError(t, store.SaveStory(ctx, domain.Story{
		ID: "pier", TopicID: "brighton", Title: "Pier reopens", CreatedAt: t0,
		Slides: []domain.Slide{{Content: "the palace pier"}}, Published: true,
	}))

	page, err := store.FetchStoryPage(ctx, domain.PageRequest{
		TopicID: "brighton",
		Filters: domain.FilterState{Landmarks: []string{"Pier"}},
	})
	require.NoError(t, err)
	require.Len(t, page.Stories, 1)
	assert.Equal(t, "pier", page.Stories[0].ID)
}

func TestStore_FetchStoryPage_SubstringFilter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedStories(t, store, 2)
	require.NoError(t, store.SaveStory(ctx, domain.Story{
		ID: "side", TopicID: "brighton", Title: "Harbourside market", CreatedAt: t0,
		Slides: []domain.Slide{{Content: "stalls"}}, Published: true,
	}))

	page, err := store.FetchStoryPage(ctx, domain.PageRequest{
		TopicID: "brighton",
		Filters: domain.FilterStateFromMatches([]domain.FacetMatch{
			{Facet: domain.FacetKeyword, Value: "harbour", Substring: true},
		}),
	})
	require.NoError(t, err)
	require.Len(t, page.Stories, 1)
	assert.Equal(t, "side", page.Stories[0].ID)
}

func TestStore_FetchStoryPage_SkipsUnpublished(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.SaveStory(ctx, domain.Story{ID: "draft", TopicID: "brighton"}))

	page, err := store.FetchStoryPage(ctx, domain.PageRequest{TopicID: "brighton"})
	require.NoError(t, err)
	assert.Empty(t, page.Stories)
}

func TestStore_FetchStoryPage_BadCursor(t *testing.T) {
	_, err := NewStore().FetchStoryPage(context.Background(), domain.PageRequest{Cursor: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_FetchStoriesNewerThan(t *testing.T) {
	store := NewStore()
	seedStories(t, store, 4)

	stories, err := store.FetchStoriesNewerThan(context.Background(), "brighton", t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "s04", stories[0].ID)
	assert.Equal(t, "s03", stories[1].ID)
}

func TestStore_GetStories_RequestOrder(t *testing.T) {
	store := NewStore()
	seedStories(t, store, 3)

	stories, err := store.GetStories(context.Background(), []string{"s03", "missing", "s01"})
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "s03", stories[0].ID)
	assert.Equal(t, "s01", stories[1].ID)
}

func TestStore_Topics(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.SaveTopic(ctx, domain.Topic{ID: "b", Name: "Brighton"}))
	require.NoError(t, store.SaveTopic(ctx, domain.Topic{ID: "a", Name: "Aberdeen"}))

	topic, err := store.FetchTopic(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Brighton", topic.Name)

	_, err = store.FetchTopic(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	topics, err := store.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Aberdeen", topics[0].Name)
}

func TestStore_Interactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.RecordInteraction(ctx, domain.Interaction{ID: "i1", StoryID: "s1", Type: domain.InteractionShare}))
	require.NoError(t, store.RecordInteraction(ctx, domain.Interaction{ID: "i1", StoryID: "s1", Type: domain.InteractionShare}))
	require.NoError(t, store.RecordInteraction(ctx, domain.Interaction{ID: "i2", StoryID: "s2", Type: domain.InteractionView}))

	got, err := store.FetchInteractions(ctx, []string{"s1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestStore_Roundups(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.SaveRoundup(ctx, domain.Roundup{ID: "r1", TopicID: "brighton", PeriodStart: t0}))
	require.NoError(t, store.SaveRoundup(ctx, domain.Roundup{ID: "r2", TopicID: "brighton", PeriodStart: t0.AddDate(0, 0, 1)}))

	list, err := store.ListRoundups(ctx, "brighton")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)

	_, err = store.GetRoundup(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SideContentSources(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.SaveCard(ctx, domain.SideCard{ID: "q2", TopicID: "brighton", Type: domain.CardQuiz, CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, store.SaveCard(ctx, domain.SideCard{ID: "q1", TopicID: "brighton", Type: domain.CardQuiz, CreatedAt: t0}))
	require.NoError(t, store.SaveCard(ctx, domain.SideCard{ID: "s1", TopicID: "brighton", Type: domain.CardSentiment}))

	sources := store.SideContentSources()
	require.Len(t, sources, len(domain.CardTypes()))

	for _, src := range sources {
		if src.CardType() != domain.CardQuiz {
			continue
		}
		cards, err := src.FetchCards(ctx, "brighton")
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "q1", cards[0].ID)
	}
}
