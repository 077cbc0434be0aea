// Package catalog decodes TOML catalog files into ingest batches.
//
// A catalog is the on-disk exchange format between the upstream content
// pipeline and storyfeed. One file may carry any mix of topics, stories,
// cards, roundups and interactions:
//
//	[[topics]]
//	id = "brighton"
//	name = "Brighton"
//	keywords = ["harbour", "rail"]
//	disabled_cards = ["quiz"]
//	cadence = { community_pulse = 10 }
//
//	[[stories]]
//	id = "s1"
//	topic = "brighton"
//	title = "Harbour wall repaired"
//	created_at = 2026-03-14T09:00:00Z
//	source_url = "https://www.argus.co.uk/news/1"
//	slides = ["The harbour wall...", "Work finished..."]
//	format = "html"
//	published = true
//
// Slide positions follow array order. Slide bodies are reduced to plain text
// according to the story's format (text, html or markdown; text when unset). Validation of record contents is the
// ingest service's job; this package only rejects malformed TOML and
// unknown keys.
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/normalisers"
)

// Extension is the file extension of catalog files.
const Extension = ".toml"

type rawCatalog struct {
	Topics       []rawTopic       `toml:"topics"`
	Stories      []rawStory       `toml:"stories"`
	Cards        []rawCard        `toml:"cards"`
	Roundups     []rawRoundup     `toml:"roundups"`
	Interactions []rawInteraction `toml:"interactions"`
}

type rawTopic struct {
	ID            string         `toml:"id"`
	Slug          string         `toml:"slug"`
	Name          string         `toml:"name"`
	Description   string         `toml:"description"`
	Keywords      []string       `toml:"keywords"`
	Landmarks     []string       `toml:"landmarks"`
	Organizations []string       `toml:"organizations"`
	DisabledCards []string       `toml:"disabled_cards"`
	Cadence       map[string]int `toml:"cadence"`
}

type rawStory struct {
	ID                string    `toml:"id"`
	Topic             string    `toml:"topic"`
	Kind              string    `toml:"kind"`
	Title             string    `toml:"title"`
	Slides            []string  `toml:"slides"`
	Format            string    `toml:"format"`
	CreatedAt         time.Time `toml:"created_at"`
	SourceURL         string    `toml:"source_url"`
	SourceRegion      string    `toml:"source_region"`
	SourcePublishedAt time.Time `toml:"source_published_at"`
	CoverImage        string    `toml:"cover_image"`
	CanonicalID       string    `toml:"canonical_id"`
	Published         bool      `toml:"published"`
}

type rawCard struct {
	ID         string            `toml:"id"`
	Topic      string            `toml:"topic"`
	Type       string            `toml:"type"`
	Title      string            `toml:"title"`
	Body       string            `toml:"body"`
	CreatedAt  time.Time         `toml:"created_at"`
	Attributes map[string]string `toml:"attributes"`
}

type rawRoundup struct {
	ID          string    `toml:"id"`
	Topic       string    `toml:"topic"`
	Kind        string    `toml:"kind"`
	PeriodStart time.Time `toml:"period_start"`
	PeriodEnd   time.Time `toml:"period_end"`
	Stories     []string  `toml:"stories"`
	Published   bool      `toml:"published"`
}

type rawInteraction struct {
	ID        string    `toml:"id"`
	Story     string    `toml:"story"`
	Type      string    `toml:"type"`
	CreatedAt time.Time `toml:"created_at"`
}

// DecodeFile reads and decodes the catalog at path.
func DecodeFile(path string) (domain.IngestBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestBatch{}, fmt.Errorf("reading catalog: %w", err)
	}
	batch, err := Decode(bytes.NewReader(data))
	if err != nil {
		return domain.IngestBatch{}, fmt.Errorf("%s: %w", path, err)
	}
	return batch, nil
}

// Decode parses a catalog. Unknown keys are rejected with domain.ErrInvalidInput.
func Decode(r io.Reader) (domain.IngestBatch, error) {
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var raw rawCatalog
	if err := decoder.Decode(&raw); err != nil {
		return domain.IngestBatch{}, fmt.Errorf("%w: decode catalog: %v", domain.ErrInvalidInput, err)
	}

	batch := domain.IngestBatch{
		Topics:       make([]domain.Topic, 0, len(raw.Topics)),
		Stories:      make([]domain.Story, 0, len(raw.Stories)),
		Cards:        make([]domain.SideCard, 0, len(raw.Cards)),
		Roundups:     make([]domain.Roundup, 0, len(raw.Roundups)),
		Interactions: make([]domain.Interaction, 0, len(raw.Interactions)),
	}
	for _, t := range raw.Topics {
		batch.Topics = append(batch.Topics, t.toDomain())
	}
	for _, s := range raw.Stories {
		story, err := s.toDomain()
		if err != nil {
			return domain.IngestBatch{}, err
		}
		batch.Stories = append(batch.Stories, story)
	}
	for _, c := range raw.Cards {
		batch.Cards = append(batch.Cards, domain.SideCard{
			ID:         c.ID,
			TopicID:    c.Topic,
			Type:       domain.CardType(c.Type),
			Title:      c.Title,
			Body:       c.Body,
			CreatedAt:  utc(c.CreatedAt),
			Attributes: c.Attributes,
		})
	}
	for _, r := range raw.Roundups {
		batch.Roundups = append(batch.Roundups, domain.Roundup{
			ID:          r.ID,
			TopicID:     r.Topic,
			Kind:        domain.RoundupKind(r.Kind),
			PeriodStart: utc(r.PeriodStart),
			PeriodEnd:   utc(r.PeriodEnd),
			StoryIDs:    r.Stories,
			Published:   r.Published,
		})
	}
	for _, in := range raw.Interactions {
		batch.Interactions = append(batch.Interactions, domain.Interaction{
			ID:        in.ID,
			StoryID:   in.Story,
			Type:      domain.InteractionType(in.Type),
			CreatedAt: utc(in.CreatedAt),
		})
	}
	return batch, nil
}

func (t rawTopic) toDomain() domain.Topic {
	topic := domain.Topic{
		ID:            t.ID,
		Slug:          t.Slug,
		Name:          t.Name,
		Description:   t.Description,
		Keywords:      t.Keywords,
		Landmarks:     t.Landmarks,
		Organizations: t.Organizations,
	}
	if len(t.DisabledCards) > 0 {
		topic.SideContent.Disabled = make(map[domain.CardType]bool, len(t.DisabledCards))
		for _, c := range t.DisabledCards {
			topic.SideContent.Disabled[domain.CardType(c)] = true
		}
	}
	if len(t.Cadence) > 0 {
		topic.SideContent.Cadence = make(map[domain.CardType]int, len(t.Cadence))
		for c, n := range t.Cadence {
			topic.SideContent.Cadence[domain.CardType(c)] = n
		}
	}
	return topic
}

func (s rawStory) toDomain() (domain.Story, error) {
	story := domain.Story{
		ID:      s.ID,
		TopicID: s.Topic,
		Kind:    domain.StoryKind(s.Kind),
		Title:   s.Title,
		Source: domain.SourceRef{
			URL:         s.SourceURL,
			Region:      s.SourceRegion,
			PublishedAt: utc(s.SourcePublishedAt),
		},
		CreatedAt:     utc(s.CreatedAt),
		CoverImageURL: s.CoverImage,
		CanonicalID:   s.CanonicalID,
		Published:     s.Published,
	}
	for i, content := range s.Slides {
		story.Slides = append(story.Slides, domain.Slide{Position: i, Content: content})
	}
	if err := normalisers.Slides(s.Format, story.Slides); err != nil {
		return domain.Story{}, fmt.Errorf("story %q: %w", s.ID, err)
	}
	return story, nil
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
