package services

import (
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// Sequence is an immutable snapshot of an assembled feed. Appending a page
// returns a new Sequence; earlier snapshots stay valid and unchanged, so a
// renderer may hold one while the next page is being assembled.
type Sequence struct {
	generation uint64
	items      []domain.ContentItem
	tail       *domain.ContentItem
	storyIndex int
	pages      int
	seen       map[string]struct{}
	ghosts     map[string]struct{}
	stories    []domain.Story
}

// NewSequence returns an empty sequence for a generation.
func NewSequence(generation uint64) *Sequence {
	return &Sequence{
		generation: generation,
		seen:       map[string]struct{}{},
		ghosts:     map[string]struct{}{},
	}
}

// Generation returns the token of the pass that built the sequence.
func (s *Sequence) Generation() uint64 {
	return s.generation
}

// StoryIndex returns the number of story items in the sequence.
func (s *Sequence) StoryIndex() int {
	return s.storyIndex
}

// Pages returns the number of pages appended since the sequence was started.
func (s *Sequence) Pages() int {
	return s.pages
}

// Items returns the content items without the trailing marker.
func (s *Sequence) Items() []domain.ContentItem {
	out := make([]domain.ContentItem, len(s.items))
	copy(out, s.items)
	return out
}

// Render returns the content items followed by the trailing marker.
func (s *Sequence) Render() []domain.ContentItem {
	out := make([]domain.ContentItem, len(s.items), len(s.items)+1)
	copy(out, s.items)
	if s.tail != nil {
		out = append(out, *s.tail)
	}
	return out
}

// Tail returns the trailing marker, if any.
func (s *Sequence) Tail() (domain.ContentItem, bool) {
	if s.tail == nil {
		return domain.ContentItem{}, false
	}
	return *s.tail, true
}

// Len returns the number of items without the trailing marker.
func (s *Sequence) Len() int {
	return len(s.items)
}

// Contains reports whether a story ID has been rendered.
func (s *Sequence) Contains(storyID string) bool {
	_, ok := s.seen[storyID]
	return ok
}

// IsGhost reports whether a story ID was suppressed as a ghost and has not
// been rendered since.
func (s *Sequence) IsGhost(storyID string) bool {
	_, ok := s.ghosts[storyID]
	return ok
}

// Stories returns the rendered stories in feed order.
func (s *Sequence) Stories() []domain.Story {
	out := make([]domain.Story, len(s.stories))
	copy(out, s.stories)
	return out
}

// Story returns a rendered story by ID.
func (s *Sequence) Story(storyID string) (domain.Story, bool) {
	if !s.Contains(storyID) {
		return domain.Story{}, false
	}
	for i := range s.stories {
		if s.stories[i].ID == storyID {
			return s.stories[i], true
		}
	}
	return domain.Story{}, false
}

// NewestCreatedAt returns the creation time of the newest rendered story.
func (s *Sequence) NewestCreatedAt() time.Time {
	return domain.NewestCreatedAt(s.stories)
}

// clone copies the sequence so the copy can be extended without touching s.
func (s *Sequence) clone() *Sequence {
	next := &Sequence{
		generation: s.generation,
		items:      s.items[:len(s.items):len(s.items)],
		storyIndex: s.storyIndex,
		pages:      s.pages,
		seen:       make(map[string]struct{}, len(s.seen)),
		ghosts:     make(map[string]struct{}, len(s.ghosts)),
		stories:    s.stories[:len(s.stories):len(s.stories)],
	}
	for id := range s.seen {
		next.seen[id] = struct{}{}
	}
	for id := range s.ghosts {
		next.ghosts[id] = struct{}{}
	}
	return next
}
