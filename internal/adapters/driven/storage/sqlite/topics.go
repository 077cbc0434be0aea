package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
)

// ==================== Topic Store ====================

// topicStore implements driven.TopicSource.
type topicStore struct {
	store *Store
}

var _ driven.TopicSource = (*topicStore)(nil)

// sideContentJSON is the stored form of domain.SideContentConfig.
type sideContentJSON struct {
	Disabled map[domain.CardType]bool `json:"disabled,omitempty"`
	Cadence  map[domain.CardType]int  `json:"cadence,omitempty"`
}

const topicColumns = `id, slug, name, description, keywords, landmarks, organizations, side_content`

// FetchTopic retrieves a topic by ID.
func (s *topicStore) FetchTopic(ctx context.Context, id string) (*domain.Topic, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	topic, err := scanTopic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// ListTopics returns all topics ordered by name.
func (s *topicStore) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic //nolint:prealloc // size unknown from query
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}
	return topics, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*domain.Topic, error) {
	var topic domain.Topic
	var keywords, landmarks, orgs, side string
	if err := row.Scan(&topic.ID, &topic.Slug, &topic.Name, &topic.Description,
		&keywords, &landmarks, &orgs, &side); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning topic: %w", err)
	}

	for _, field := range []struct {
		raw string
		dst *[]string
	}{
		{keywords, &topic.Keywords},
		{landmarks, &topic.Landmarks},
		{orgs, &topic.Organizations},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.dst); err != nil {
			return nil, fmt.Errorf("unmarshaling topic %s facets: %w", topic.ID, err)
		}
	}

	var cfg sideContentJSON
	if err := json.Unmarshal([]byte(side), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling topic %s side content: %w", topic.ID, err)
	}
	topic.SideContent = domain.SideContentConfig{Disabled: cfg.Disabled, Cadence: cfg.Cadence}

	return &topic, nil
}

// marshalList encodes a string list, writing "[]" for nil.
func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
