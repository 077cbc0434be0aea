package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStory_IsGhost(t *testing.T) {
	tests := []struct {
		name   string
		slides []Slide
		want   bool
	}{
		{"no slides", nil, true},
		{"only placeholder", []Slide{{Content: PlaceholderSlideContent}}, true},
		{"blank slide", []Slide{{Content: "   "}}, true},
		{"one real slide", []Slide{{Content: PlaceholderSlideContent}, {Content: "Council meets"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Story{ID: "s1", Slides: tt.slides}
			assert.Equal(t, tt.want, s.IsGhost())
		})
	}
}

func TestStory_Text(t *testing.T) {
	s := Story{
		Title: "Harbour Works",
		Slides: []Slide{
			{Content: "The PIER reopens"},
			{Content: PlaceholderSlideContent},
			{Content: "Crowds expected"},
		},
	}

	assert.Equal(t, "harbour works the pier reopens crowds expected", s.Text())
}

func TestStory_SourceDomain(t *testing.T) {
	t.Run("strips www", func(t *testing.T) {
		s := Story{ID: "s1", Source: SourceRef{URL: "https://www.Example.co.uk/news/1"}}
		d, err := s.SourceDomain()
		require.NoError(t, err)
		assert.Equal(t, "example.co.uk", d)
	})

	t.Run("missing url", func(t *testing.T) {
		s := Story{ID: "s1"}
		_, err := s.SourceDomain()
		assert.True(t, errors.Is(err, ErrMalformedSource))
	})

	t.Run("no host", func(t *testing.T) {
		s := Story{ID: "s1", Source: SourceRef{URL: "not a url"}}
		_, err := s.SourceDomain()
		assert.True(t, errors.Is(err, ErrMalformedSource))
	})

	t.Run("unparseable", func(t *testing.T) {
		s := Story{ID: "s1", Source: SourceRef{URL: "http://[::1"}}
		_, err := s.SourceDomain()
		assert.True(t, errors.Is(err, ErrMalformedSource))
	})
}

func TestNewStoryItem_Kinds(t *testing.T) {
	article := NewStoryItem(Story{ID: "a"}, 1)
	assert.Equal(t, ItemStory, article.Kind)
	assert.Equal(t, "story-a", article.Key)
	assert.True(t, article.Kind.CountsAsStory())

	mention := NewStoryItem(Story{ID: "p", Kind: StoryKindParliamentary}, 2)
	assert.Equal(t, ItemParliamentaryMention, mention.Kind)
	assert.Equal(t, "parliamentary-p", mention.Key)
	assert.True(t, mention.Kind.CountsAsStory())
}

func TestNewCardItem(t *testing.T) {
	item := NewCardItem(SideCard{ID: "c1", Type: CardSentiment}, 6, 0)

	assert.Equal(t, ItemSentiment, item.Kind)
	assert.Equal(t, "sentiment-6-c1", item.Key)
	assert.True(t, item.Kind.IsCard())
	assert.False(t, item.Kind.CountsAsStory())
	assert.Equal(t, "c1", item.ID())
}

func TestItemKind_IsMarker(t *testing.T) {
	assert.True(t, ItemLoadMore.IsMarker())
	assert.True(t, ItemEndOfFeed.IsMarker())
	assert.False(t, ItemStory.IsMarker())
	assert.False(t, ItemLoadMore.IsCard())
}
