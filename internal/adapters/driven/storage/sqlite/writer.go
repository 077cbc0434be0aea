package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
)

// ==================== Writer ====================

// writer implements driven.StoryWriter.
type writer struct {
	store *Store
}

var _ driven.StoryWriter = (*writer)(nil)

// SaveTopic stores or updates a topic.
func (w *writer) SaveTopic(ctx context.Context, topic domain.Topic) error {
	keywords, err := marshalList(topic.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	landmarks, err := marshalList(topic.Landmarks)
	if err != nil {
		return fmt.Errorf("marshalling landmarks: %w", err)
	}
	orgs, err := marshalList(topic.Organizations)
	if err != nil {
		return fmt.Errorf("marshalling organizations: %w", err)
	}
	side, err := json.Marshal(sideContentJSON{
		Disabled: topic.SideContent.Disabled,
		Cadence:  topic.SideContent.Cadence,
	})
	if err != nil {
		return fmt.Errorf("marshalling side content: %w", err)
	}

	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO topics (id, slug, name, description, keywords, landmarks, organizations, side_content, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			name = excluded.name,
			description = excluded.description,
			keywords = excluded.keywords,
			landmarks = excluded.landmarks,
			organizations = excluded.organizations,
			side_content = excluded.side_content,
			updated_at = excluded.updated_at
	`, topic.ID, topic.Slug, topic.Name, topic.Description, keywords, landmarks, orgs,
		string(side), time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("saving topic: %w", err)
	}
	return nil
}

// SaveStory stores or updates a story and replaces its slides.
// Returns domain.ErrNotFound if the story's topic does not exist.
func (w *writer) SaveStory(ctx context.Context, story domain.Story) error {
	slides, err := marshalSlides(story.Slides)
	if err != nil {
		return fmt.Errorf("marshalling slides: %w", err)
	}
	kind := story.Kind
	if kind == "" {
		kind = domain.StoryKindArticle
	}

	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO stories (`+storyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic_id = excluded.topic_id,
			kind = excluded.kind,
			title = excluded.title,
			slides = excluded.slides,
			created_ns = excluded.created_ns,
			source_url = excluded.source_url,
			source_region = excluded.source_region,
			source_published_ns = excluded.source_published_ns,
			cover_image_url = excluded.cover_image_url,
			canonical_id = excluded.canonical_id,
			published = excluded.published
	`, story.ID, story.TopicID, string(kind), story.Title, slides, toNanos(story.CreatedAt),
		story.Source.URL, story.Source.Region, toNanos(story.Source.PublishedAt),
		story.CoverImageURL, story.CanonicalID, boolToInt(story.Published))
	if isConstraintError(err) {
		return fmt.Errorf("story %s: topic %s: %w", story.ID, story.TopicID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("saving story: %w", err)
	}
	return nil
}

// SaveCard stores or updates a side card.
// Returns domain.ErrNotFound if the card's topic does not exist.
func (w *writer) SaveCard(ctx context.Context, card domain.SideCard) error {
	attrs := card.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshalling attributes: %w", err)
	}

	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO cards (id, topic_id, type, title, body, attributes, created_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic_id = excluded.topic_id,
			type = excluded.type,
			title = excluded.title,
			body = excluded.body,
			attributes = excluded.attributes,
			created_ns = excluded.created_ns
	`, card.ID, card.TopicID, string(card.Type), card.Title, card.Body, string(attrsJSON),
		toNanos(card.CreatedAt))
	if isConstraintError(err) {
		return fmt.Errorf("card %s: topic %s: %w", card.ID, card.TopicID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("saving card: %w", err)
	}
	return nil
}

// SaveRoundup stores or updates a roundup and its story list.
// Returns domain.ErrNotFound if the roundup's topic does not exist.
func (w *writer) SaveRoundup(ctx context.Context, roundup domain.Roundup) error {
	storyIDs, err := marshalList(roundup.StoryIDs)
	if err != nil {
		return fmt.Errorf("marshalling story ids: %w", err)
	}

	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO roundups (`+roundupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic_id = excluded.topic_id,
			kind = excluded.kind,
			period_start_ns = excluded.period_start_ns,
			period_end_ns = excluded.period_end_ns,
			story_ids = excluded.story_ids,
			published = excluded.published
	`, roundup.ID, roundup.TopicID, string(roundup.Kind), toNanos(roundup.PeriodStart),
		toNanos(roundup.PeriodEnd), storyIDs, boolToInt(roundup.Published))
	if isConstraintError(err) {
		return fmt.Errorf("roundup %s: topic %s: %w", roundup.ID, roundup.TopicID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("saving roundup: %w", err)
	}
	return nil
}

// RecordInteraction appends an interaction. Recording the same ID twice
// is a no-op.
func (w *writer) RecordInteraction(ctx context.Context, interaction domain.Interaction) error {
	_, err := w.store.db.ExecContext(ctx, `
		INSERT INTO interactions (id, story_id, type, created_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, interaction.ID, interaction.StoryID, string(interaction.Type), toNanos(interaction.CreatedAt))
	if err != nil {
		return fmt.Errorf("recording interaction: %w", err)
	}
	return nil
}
