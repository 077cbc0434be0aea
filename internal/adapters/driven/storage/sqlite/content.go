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

// ==================== Card Store ====================

// cardStore implements driven.SideContentSource for one card type.
type cardStore struct {
	store *Store
	card  domain.CardType
}

var _ driven.SideContentSource = (*cardStore)(nil)

// CardType returns the type of cards this source produces.
func (s *cardStore) CardType() domain.CardType {
	return s.card
}

// FetchCards returns the topic's cards of this type, oldest first.
func (s *cardStore) FetchCards(ctx context.Context, topicID string) ([]domain.SideCard, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, topic_id, type, title, body, attributes, created_ns
		FROM cards WHERE topic_id = ? AND type = ?
		ORDER BY created_ns ASC, id ASC
	`, topicID, string(s.card))
	if err != nil {
		return nil, fmt.Errorf("querying %s cards: %w", s.card, err)
	}
	defer rows.Close()

	var cards []domain.SideCard //nolint:prealloc // size unknown from query
	for rows.Next() {
		var card domain.SideCard
		var cardType, attrs string
		var createdNs int64
		if err := rows.Scan(&card.ID, &card.TopicID, &cardType, &card.Title, &card.Body,
			&attrs, &createdNs); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &card.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshaling attributes of card %s: %w", card.ID, err)
		}
		if len(card.Attributes) == 0 {
			card.Attributes = nil
		}
		card.Type = domain.CardType(cardType)
		card.CreatedAt = fromNanos(createdNs)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}
	return cards, nil
}

// ==================== Roundup Store ====================

// roundupStore implements driven.RoundupStore.
type roundupStore struct {
	store *Store
}

var _ driven.RoundupStore = (*roundupStore)(nil)

const roundupColumns = `id, topic_id, kind, period_start_ns, period_end_ns, story_ids, published`

// GetRoundup retrieves a roundup by ID.
func (s *roundupStore) GetRoundup(ctx context.Context, id string) (*domain.Roundup, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+roundupColumns+` FROM roundups WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying roundup: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying roundup: %w", err)
		}
		return nil, domain.ErrNotFound
	}
	return scanRoundup(rows)
}

// ListRoundups returns a topic's roundups, most recent period first.
func (s *roundupStore) ListRoundups(ctx context.Context, topicID string) ([]domain.Roundup, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+roundupColumns+` FROM roundups
		WHERE topic_id = ?
		ORDER BY period_start_ns DESC, id ASC
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("querying roundups: %w", err)
	}
	defer rows.Close()

	var roundups []domain.Roundup //nolint:prealloc // size unknown from query
	for rows.Next() {
		r, err := scanRoundup(rows)
		if err != nil {
			return nil, err
		}
		roundups = append(roundups, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roundups: %w", err)
	}
	return roundups, nil
}

func scanRoundup(rows *sql.Rows) (*domain.Roundup, error) {
	var r domain.Roundup
	var kind, storyIDs string
	var startNs, endNs int64
	var published int
	if err := rows.Scan(&r.ID, &r.TopicID, &kind, &startNs, &endNs, &storyIDs, &published); err != nil {
		return nil, fmt.Errorf("scanning roundup: %w", err)
	}
	if err := json.Unmarshal([]byte(storyIDs), &r.StoryIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling story ids of roundup %s: %w", r.ID, err)
	}
	r.Kind = domain.RoundupKind(kind)
	r.PeriodStart = fromNanos(startNs)
	r.PeriodEnd = fromNanos(endNs)
	r.Published = published == 1
	return &r, nil
}

// ==================== Interaction Store ====================

// interactionStore implements driven.InteractionSource.
type interactionStore struct {
	store *Store
}

var _ driven.InteractionSource = (*interactionStore)(nil)

// FetchInteractions returns every interaction recorded for the given stories.
func (s *interactionStore) FetchInteractions(ctx context.Context, storyIDs []string) ([]domain.Interaction, error) {
	if len(storyIDs) == 0 {
		return nil, nil
	}

	args := make([]any, len(storyIDs))
	for i, id := range storyIDs {
		args[i] = id
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, story_id, type, created_ns FROM interactions
		WHERE story_id IN (`+placeholders(len(storyIDs))+`)
		ORDER BY created_ns ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var result []domain.Interaction //nolint:prealloc // size unknown from query
	for rows.Next() {
		var in domain.Interaction
		var kind string
		var createdNs int64
		if err := rows.Scan(&in.ID, &in.StoryID, &kind, &createdNs); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		in.Type = domain.InteractionType(kind)
		in.CreatedAt = fromNanos(createdNs)
		result = append(result, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}
	return result, nil
}

// isConstraintError reports whether err is a foreign key or check violation.
func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var target interface{ Code() int }
	if errors.As(err, &target) {
		// SQLITE_CONSTRAINT and its extended codes share the low byte 19.
		return target.Code()&0xff == 19
	}
	return false
}
