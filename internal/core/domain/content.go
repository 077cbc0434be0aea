package domain

import "fmt"

// ItemKind tags a ContentItem variant.
type ItemKind string

// Available item kinds. Card kinds share their names with CardType.
const (
	ItemStory                ItemKind = "story"
	ItemParliamentaryMention ItemKind = "parliamentary_mention"

	ItemSentiment           ItemKind = ItemKind(CardSentiment)
	ItemQuiz                ItemKind = ItemKind(CardQuiz)
	ItemInsight             ItemKind = ItemKind(CardInsight)
	ItemEvents              ItemKind = ItemKind(CardEvents)
	ItemCommunityPulse      ItemKind = ItemKind(CardCommunityPulse)
	ItemParliamentaryDigest ItemKind = ItemKind(CardParliamentaryDigest)
	ItemFlashback           ItemKind = ItemKind(CardFlashback)

	// ItemLoadMore is the pagination sentinel; reaching it triggers the next fetch.
	ItemLoadMore ItemKind = "load_more"

	// ItemEndOfFeed terminates a feed with no further pages.
	ItemEndOfFeed ItemKind = "end_of_feed"
)

// CountsAsStory reports whether the kind advances the story index.
func (k ItemKind) CountsAsStory() bool {
	return k == ItemStory || k == ItemParliamentaryMention
}

// IsCard reports whether the kind is a side-content card.
func (k ItemKind) IsCard() bool {
	return CardType(k).IsValid()
}

// IsMarker reports whether the kind is a pagination marker.
func (k ItemKind) IsMarker() bool {
	return k == ItemLoadMore || k == ItemEndOfFeed
}

// ContentItem is one entry of the assembled render sequence.
type ContentItem struct {
	// Key is stable and unique within a session.
	Key string

	// Kind tags the variant.
	Kind ItemKind

	// StoryIndex is the number of story items up to and including this position.
	// Side content is positioned by story count, not by raw index.
	StoryIndex int

	// Story is set for story and parliamentary items.
	Story *Story

	// Card is set for side-content items.
	Card *SideCard

	// Instance is the slot occurrence ordinal for side-content items.
	Instance int
}

// NewStoryItem wraps a story at the given story index.
func NewStoryItem(story Story, storyIndex int) ContentItem {
	kind := ItemStory
	prefix := "story"
	if story.IsParliamentary() {
		kind = ItemParliamentaryMention
		prefix = "parliamentary"
	}
	s := story
	return ContentItem{
		Key:        prefix + "-" + story.ID,
		Kind:       kind,
		StoryIndex: storyIndex,
		Story:      &s,
	}
}

// NewCardItem wraps a side card placed after the given story index.
func NewCardItem(card SideCard, storyIndex, instance int) ContentItem {
	c := card
	return ContentItem{
		Key:        fmt.Sprintf("%s-%d-%s", card.Type, storyIndex, card.ID),
		Kind:       ItemKind(card.Type),
		StoryIndex: storyIndex,
		Card:       &c,
		Instance:   instance,
	}
}

// NewMarkerItem creates a pagination marker at the given story index.
func NewMarkerItem(kind ItemKind, storyIndex int) ContentItem {
	return ContentItem{
		Key:        fmt.Sprintf("%s-%d", kind, storyIndex),
		Kind:       kind,
		StoryIndex: storyIndex,
	}
}

// ID returns the story or card ID of the item, or "" for markers.
func (c *ContentItem) ID() string {
	switch {
	case c.Story != nil:
		return c.Story.ID
	case c.Card != nil:
		return c.Card.ID
	default:
		return ""
	}
}
