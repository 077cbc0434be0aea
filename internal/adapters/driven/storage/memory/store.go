package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/storage/pagination"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.StorySource       = (*Store)(nil)
	_ driven.TopicSource       = (*Store)(nil)
	_ driven.InteractionSource = (*Store)(nil)
	_ driven.RoundupStore      = (*Store)(nil)
	_ driven.StoryWriter       = (*Store)(nil)
)

// Store is an in-memory implementation of the story, topic, side-content,
// roundup and interaction ports. Used for tests and the --memory flag.
type Store struct {
	mu           sync.RWMutex
	topics       map[string]domain.Topic
	stories      map[string]domain.Story
	cards        map[string]domain.SideCard
	roundups     map[string]domain.Roundup
	interactions []domain.Interaction
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		topics:   make(map[string]domain.Topic),
		stories:  make(map[string]domain.Story),
		cards:    make(map[string]domain.SideCard),
		roundups: make(map[string]domain.Roundup),
	}
}

// SaveTopic stores or replaces a topic.
func (s *Store) SaveTopic(_ context.Context, topic domain.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic.ID] = topic
	return nil
}

// SaveStory stores or replaces a story.
func (s *Store) SaveStory(_ context.Context, story domain.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[story.ID] = story
	return nil
}

// SaveCard stores or replaces a side card.
func (s *Store) SaveCard(_ context.Context, card domain.SideCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
	return nil
}

// SaveRoundup stores or replaces a roundup.
func (s *Store) SaveRoundup(_ context.Context, roundup domain.Roundup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundups[roundup.ID] = roundup
	return nil
}

// RecordInteraction appends an interaction. Recording the same ID twice
// is a no-op.
func (s *Store) RecordInteraction(_ context.Context, interaction domain.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.interactions {
		if in.ID == interaction.ID {
			return nil
		}
	}
	s.interactions = append(s.interactions, interaction)
	return nil
}

// FetchTopic returns a topic by ID.
func (s *Store) FetchTopic(_ context.Context, id string) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &topic, nil
}

// ListTopics returns all topics ordered by name.
func (s *Store) ListTopics(_ context.Context) ([]domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Topic, 0, len(s.topics))
	for _, topic := range s.topics {
		result = append(result, topic)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// FetchStoryPage returns one page of a topic's published stories.
func (s *Store) FetchStoryPage(_ context.Context, req domain.PageRequest) (domain.StoryPage, error) {
	cursor, err := pagination.Decode(req.Cursor)
	if err != nil {
		return domain.StoryPage{}, err
	}
	order := req.Sort
	if !order.IsValid() {
		order = domain.SortNewest
	}

	s.mu.RLock()
	stream := make([]domain.Story, 0)
	for _, story := range s.stories {
		if story.TopicID != req.TopicID || !story.Published {
			continue
		}
		if !cursor.After(story, order) || !req.Filters.Matches(&story) {
			continue
		}
		stream = append(stream, story)
	}
	s.mu.RUnlock()

	sort.Slice(stream, func(i, j int) bool { return pagination.Less(stream[i], stream[j], order) })

	var page domain.StoryPage
	if req.Limit > 0 && len(stream) > req.Limit {
		page.Stories = stream[:req.Limit]
		page.NextCursor = pagination.Encode(page.Stories[req.Limit-1])
	} else {
		page.Stories = stream
	}
	return page, nil
}

// FetchStoriesNewerThan returns a topic's published stories created after
// since, newest first.
func (s *Store) FetchStoriesNewerThan(_ context.Context, topicID string, since time.Time) ([]domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Story
	for _, story := range s.stories {
		if story.TopicID == topicID && story.Published && story.CreatedAt.After(since) {
			result = append(result, story)
		}
	}
	sort.Slice(result, func(i, j int) bool { return pagination.Less(result[i], result[j], domain.SortNewest) })
	return result, nil
}

// GetStories returns the stories with the given IDs, in request order.
// Unknown IDs are skipped.
func (s *Store) GetStories(_ context.Context, ids []string) ([]domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Story, 0, len(ids))
	for _, id := range ids {
		if story, ok := s.stories[id]; ok {
			result = append(result, story)
		}
	}
	return result, nil
}

// FetchInteractions returns the interactions on the given stories.
func (s *Store) FetchInteractions(_ context.Context, storyIDs []string) ([]domain.Interaction, error) {
	want := make(map[string]bool, len(storyIDs))
	for _, id := range storyIDs {
		want[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Interaction
	for _, in := range s.interactions {
		if want[in.StoryID] {
			result = append(result, in)
		}
	}
	return result, nil
}

// GetRoundup returns a roundup by ID.
func (s *Store) GetRoundup(_ context.Context, id string) (*domain.Roundup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roundup, ok := s.roundups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &roundup, nil
}

// ListRoundups returns a topic's roundups, most recent period first.
func (s *Store) ListRoundups(_ context.Context, topicID string) ([]domain.Roundup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Roundup
	for _, r := range s.roundups {
		if r.TopicID == topicID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PeriodStart.After(result[j].PeriodStart) })
	return result, nil
}

// SideContentSources returns one source per card type.
func (s *Store) SideContentSources() []driven.SideContentSource {
	sources := make([]driven.SideContentSource, 0, len(domain.CardTypes()))
	for _, card := range domain.CardTypes() {
		sources = append(sources, &cardSource{store: s, card: card})
	}
	return sources
}

// cardSource serves one card type from the store.
type cardSource struct {
	store *Store
	card  domain.CardType
}

var _ driven.SideContentSource = (*cardSource)(nil)

func (c *cardSource) CardType() domain.CardType {
	return c.card
}

// FetchCards returns the topic's cards of this type, oldest first.
func (c *cardSource) FetchCards(_ context.Context, topicID string) ([]domain.SideCard, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var result []domain.SideCard
	for _, card := range c.store.cards {
		if card.Type == c.card && card.TopicID == topicID {
			result = append(result, card)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return strings.Compare(result[i].ID, result[j].ID) < 0
	})
	return result, nil
}
