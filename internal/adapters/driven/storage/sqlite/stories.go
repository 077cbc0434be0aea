package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/storage/pagination"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
)

// ==================== Story Store ====================

// storyStore implements driven.StorySource.
type storyStore struct {
	store *Store
}

var _ driven.StorySource = (*storyStore)(nil)

// slideJSON is the stored form of domain.Slide.
type slideJSON struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Content  string `json:"content"`
}

const storyColumns = `id, topic_id, kind, title, slides, created_ns, source_url, source_region,
	source_published_ns, cover_image_url, canonical_id, published`

// FetchStoryPage returns one page of a topic's published stories.
// Facet filters are evaluated in Go with the same word-boundary rules the
// feed engine uses, so rows are streamed in keyset order until the page
// is full.
func (s *storyStore) FetchStoryPage(ctx context.Context, req domain.PageRequest) (domain.StoryPage, error) {
	cursor, err := pagination.Decode(req.Cursor)
	if err != nil {
		return domain.StoryPage{}, err
	}
	order := req.Sort
	if !order.IsValid() {
		order = domain.SortNewest
	}

	query := `SELECT ` + storyColumns + ` FROM stories WHERE topic_id = ? AND published = 1`
	args := []any{req.TopicID}
	if !cursor.IsZero() {
		ns := cursor.CreatedAt.UnixNano()
		if order == domain.SortOldest {
			query += ` AND (created_ns > ? OR (created_ns = ? AND id > ?))`
		} else {
			query += ` AND (created_ns < ? OR (created_ns = ? AND id < ?))`
		}
		args = append(args, ns, ns, cursor.ID)
	}
	if order == domain.SortOldest {
		query += ` ORDER BY created_ns ASC, id ASC`
	} else {
		query += ` ORDER BY created_ns DESC, id DESC`
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.StoryPage{}, fmt.Errorf("querying stories: %w", err)
	}
	defer rows.Close()

	var page domain.StoryPage
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return domain.StoryPage{}, err
		}
		if !req.Filters.Matches(story) {
			continue
		}
		if req.Limit > 0 && len(page.Stories) == req.Limit {
			page.NextCursor = pagination.Encode(page.Stories[req.Limit-1])
			break
		}
		page.Stories = append(page.Stories, *story)
	}
	if err := rows.Err(); err != nil {
		return domain.StoryPage{}, fmt.Errorf("iterating stories: %w", err)
	}
	return page, nil
}

// FetchStoriesNewerThan returns a topic's published stories created after
// since, newest first.
func (s *storyStore) FetchStoriesNewerThan(ctx context.Context, topicID string, since time.Time) ([]domain.Story, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+storyColumns+` FROM stories
		WHERE topic_id = ? AND published = 1 AND created_ns > ?
		ORDER BY created_ns DESC, id DESC
	`, topicID, toNanos(since))
	if err != nil {
		return nil, fmt.Errorf("querying newer stories: %w", err)
	}
	defer rows.Close()

	var stories []domain.Story //nolint:prealloc // size unknown from query
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating newer stories: %w", err)
	}
	return stories, nil
}

// GetStories returns the stories with the given IDs, in request order.
// Unknown IDs are skipped.
func (s *storyStore) GetStories(ctx context.Context, ids []string) ([]domain.Story, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stories by id: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Story, len(ids))
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		byID[story.ID] = *story
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stories by id: %w", err)
	}

	result := make([]domain.Story, 0, len(byID))
	for _, id := range ids {
		if story, ok := byID[id]; ok {
			result = append(result, story)
		}
	}
	return result, nil
}

func scanStory(rows *sql.Rows) (*domain.Story, error) {
	var story domain.Story
	var kind, slides string
	var createdNs, publishedNs int64
	var published int
	if err := rows.Scan(&story.ID, &story.TopicID, &kind, &story.Title, &slides, &createdNs,
		&story.Source.URL, &story.Source.Region, &publishedNs,
		&story.CoverImageURL, &story.CanonicalID, &published); err != nil {
		return nil, fmt.Errorf("scanning story: %w", err)
	}

	var stored []slideJSON
	if err := json.Unmarshal([]byte(slides), &stored); err != nil {
		return nil, fmt.Errorf("unmarshaling slides of story %s: %w", story.ID, err)
	}
	if len(stored) > 0 {
		story.Slides = make([]domain.Slide, len(stored))
		for i, sl := range stored {
			story.Slides[i] = domain.Slide{ID: sl.ID, Position: sl.Position, Content: sl.Content}
		}
	}

	story.Kind = domain.StoryKind(kind)
	story.CreatedAt = fromNanos(createdNs)
	story.Source.PublishedAt = fromNanos(publishedNs)
	story.Published = published == 1
	return &story, nil
}

func marshalSlides(slides []domain.Slide) (string, error) {
	stored := make([]slideJSON, len(slides))
	for i, sl := range slides {
		stored[i] = slideJSON{ID: sl.ID, Position: sl.Position, Content: sl.Content}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
