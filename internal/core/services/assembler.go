package services

import (
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// SideContent holds the loaded cards of each side-content type.
type SideContent map[domain.CardType][]domain.SideCard

// Count returns the number of cards loaded for a type.
func (c SideContent) Count(card domain.CardType) int {
	return len(c[card])
}

// Assembler merges story pages with side content into a Sequence.
type Assembler struct {
	slots *SlotRegistry
}

// NewAssembler creates an assembler placing cards with the given registry.
func NewAssembler(slots *SlotRegistry) *Assembler {
	if slots == nil {
		slots = DefaultSlotRegistry()
	}
	return &Assembler{slots: slots}
}

// Assemble builds a fresh sequence from scratch, starting at story index zero.
func (a *Assembler) Assemble(generation uint64, stories []domain.Story, side SideContent, hasMore bool) *Sequence {
	return a.Append(NewSequence(generation), stories, side, hasMore)
}

// Append adds a page of stories to seq and returns the extended sequence.
// Ghost stories are suppressed, stories already in the sequence are dropped
// with a warning (first occurrence wins), and side cards are interleaved
// after the story indices their slot rules claim. A slot whose card type
// has no loaded cards is skipped; later occurrences are not shifted to
// fill it. The trailing marker is replaced by load_more or end_of_feed.
func (a *Assembler) Append(seq *Sequence, stories []domain.Story, side SideContent, hasMore bool) *Sequence {
	next := seq.clone()
	next.pages++

	for _, story := range stories {
		if story.IsGhost() {
			next.ghosts[story.ID] = struct{}{}
			logger.Debug("suppressing ghost story %s", story.ID)
			continue
		}
		if _, dup := next.seen[story.ID]; dup {
			logger.Warn("duplicate story %s on page %d, keeping first occurrence", story.ID, next.pages)
			continue
		}

		next.seen[story.ID] = struct{}{}
		delete(next.ghosts, story.ID)
		next.stories = append(next.stories, story)
		next.storyIndex++
		next.items = append(next.items, domain.NewStoryItem(story, next.storyIndex))

		next.items = a.interleave(next.items, next.storyIndex, side)
	}

	kind := domain.ItemEndOfFeed
	if hasMore {
		kind = domain.ItemLoadMore
	}
	tail := domain.NewMarkerItem(kind, next.storyIndex)
	next.tail = &tail

	return next
}

func (a *Assembler) interleave(items []domain.ContentItem, storyIndex int, side SideContent) []domain.ContentItem {
	for _, card := range a.slots.CardsAt(storyIndex) {
		cards := side[card]
		if len(cards) == 0 {
			continue
		}
		instance := a.slots.CardInstanceIndex(card, storyIndex)
		items = append(items, domain.NewCardItem(cards[instance%len(cards)], storyIndex, instance))
	}
	return items
}
