package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PlaceholderSlideContent marks a slide that has not been generated yet.
// Upstream writes it while the rewrite pipeline is still running.
const PlaceholderSlideContent = "__loading__"

// StoryKind distinguishes entries of the primary story stream.
type StoryKind string

// Available story kinds.
const (
	// StoryKindArticle is a regular rewritten news story.
	StoryKindArticle StoryKind = "article"

	// StoryKindParliamentary is a parliamentary mention (vote, debate, question)
	// interleaved with stories. It counts towards the story index.
	StoryKindParliamentary StoryKind = "parliamentary"
)

// IsValid returns true if the story kind is recognised.
func (k StoryKind) IsValid() bool {
	return k == StoryKindArticle || k == StoryKindParliamentary
}

// Slide is a small unit of story text.
type Slide struct {
	// ID is the unique identifier for the slide.
	ID string

	// Position orders slides within a story (0-based).
	Position int

	// Content is the slide text.
	Content string
}

// IsPlaceholder reports whether the slide is a loading sentinel.
func (s Slide) IsPlaceholder() bool {
	c := strings.TrimSpace(s.Content)
	return c == "" || c == PlaceholderSlideContent
}

// SourceRef points at the original article a story was rewritten from.
type SourceRef struct {
	// URL is the original article URL.
	URL string

	// Region is the publisher region, if known.
	Region string

	// PublishedAt is when the original article was published.
	PublishedAt time.Time
}

// Story is a rewritten news story. Stories are produced upstream and are
// read-only to the feed engine.
type Story struct {
	// ID is the unique identifier for the story.
	ID string

	// TopicID is the topic the story belongs to.
	TopicID string

	// Kind distinguishes articles from parliamentary mentions.
	// Empty is treated as StoryKindArticle.
	Kind StoryKind

	// Title is the story headline.
	Title string

	// Slides are the ordered units of story text.
	Slides []Slide

	// CreatedAt is when the story was created upstream.
	CreatedAt time.Time

	// Source references the original article.
	Source SourceRef

	// CoverImageURL is an optional cover image.
	CoverImageURL string

	// CanonicalID points at the canonical duplicate of this story, if any.
	CanonicalID string

	// Published is true once the story may appear in feeds.
	Published bool
}

// IsGhost reports whether the story is a placeholder record with no real
// slide content yet. Ghosts must not consume a story index slot.
func (s *Story) IsGhost() bool {
	for _, slide := range s.Slides {
		if !slide.IsPlaceholder() {
			return false
		}
	}
	return true
}

// IsParliamentary reports whether the story is a parliamentary mention.
func (s *Story) IsParliamentary() bool {
	return s.Kind == StoryKindParliamentary
}

// Text returns the lower-cased title and slide text joined by spaces.
// Placeholder slides are skipped.
func (s *Story) Text() string {
	var b strings.Builder
	b.WriteString(s.Title)
	for _, slide := range s.Slides {
		if slide.IsPlaceholder() {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(slide.Content)
	}
	return strings.ToLower(b.String())
}

// SourceDomain returns the host of the source URL without a leading "www.".
// Returns ErrMalformedSource if the URL is missing or cannot be parsed.
func (s *Story) SourceDomain() (string, error) {
	raw := strings.TrimSpace(s.Source.URL)
	if raw == "" {
		return "", fmt.Errorf("story %s: %w", s.ID, ErrMalformedSource)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("story %s: %w", s.ID, ErrMalformedSource)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("story %s: %w", s.ID, ErrMalformedSource)
	}
	return strings.TrimPrefix(host, "www."), nil
}
