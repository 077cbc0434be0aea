package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

var t0 = time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)

// newStory builds a published story created minutes after t0.
func newStory(id string, minutes int, text string) domain.Story {
	return domain.Story{
		ID:        id,
		TopicID:   "brighton",
		Kind:      domain.StoryKindArticle,
		Title:     "Story " + id,
		Slides:    []domain.Slide{{ID: id + "-0", Content: text}},
		CreatedAt: t0.Add(time.Duration(minutes) * time.Minute),
		Source:    domain.SourceRef{URL: "https://www.theargus.co.uk/news/" + id},
		Published: true,
	}
}

// ghostStory builds a story whose only slide is the loading placeholder.
func ghostStory(id string, minutes int) domain.Story {
	s := newStory(id, minutes, domain.PlaceholderSlideContent)
	return s
}

// storyRange builds stories prefix1..prefixN, newest first.
func storyRange(prefix string, n int) []domain.Story {
	stories := make([]domain.Story, 0, n)
	for i := n; i >= 1; i-- {
		stories = append(stories, newStory(fmt.Sprintf("%s%d", prefix, i), i, "news"))
	}
	return stories
}

func testTopic() domain.Topic {
	return domain.Topic{
		ID:            "brighton",
		Slug:          "brighton",
		Name:          "Brighton",
		Keywords:      []string{"harbour", "rail", "UK", "Brighton"},
		Landmarks:     []string{"Pier", "Royal Pavilion"},
		Organizations: []string{"City Council"},
	}
}

// captureLog redirects logger output for the duration of a test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})
	return &buf
}

// --- StorySource ---

func pageKey(filters domain.FilterState, cursor string) string {
	return filters.Signature() + "@" + cursor
}

// mockStorySource serves scripted pages keyed by filter signature and cursor.
type mockStorySource struct {
	mu       sync.Mutex
	pages    map[string]domain.StoryPage
	gates    map[string]chan struct{}
	entered  chan string
	failures int
	err      error
	calls    []domain.PageRequest
	newer    []domain.Story
	newerErr error
	newerN   int
	byID     map[string]domain.Story
}

var _ driven.StorySource = (*mockStorySource)(nil)

func newMockStorySource() *mockStorySource {
	return &mockStorySource{
		pages:   make(map[string]domain.StoryPage),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
		byID:    make(map[string]domain.Story),
		err:     fmt.Errorf("upstream unavailable"),
	}
}

func (m *mockStorySource) setPage(filters domain.FilterState, cursor string, stories []domain.Story, next string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[pageKey(filters, cursor)] = domain.StoryPage{Stories: stories, NextCursor: next}
	for _, s := range stories {
		m.byID[s.ID] = s
	}
}

// block makes fetches of the given page wait until the returned channel is closed.
func (m *mockStorySource) block(filters domain.FilterState, cursor string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates[pageKey(filters, cursor)] = gate
	return gate
}

func (m *mockStorySource) failNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *mockStorySource) callsFor(filters domain.FilterState) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Filters.Signature() == filters.Signature() {
			n++
		}
	}
	return n
}

func (m *mockStorySource) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockStorySource) FetchStoryPage(_ context.Context, req domain.PageRequest) (domain.StoryPage, error) {
	key := pageKey(req.Filters, req.Cursor)

	m.mu.Lock()
	m.calls = append(m.calls, req)
	gate := m.gates[key]
	m.mu.Unlock()

	select {
	case m.entered <- key:
	default:
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return domain.StoryPage{}, m.err
	}
	return m.pages[key], nil
}

func (m *mockStorySource) FetchStoriesNewerThan(_ context.Context, _ string, _ time.Time) ([]domain.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newerN++
	if m.newerErr != nil {
		return nil, m.newerErr
	}
	out := make([]domain.Story, len(m.newer))
	copy(out, m.newer)
	return out, nil
}

func (m *mockStorySource) GetStories(_ context.Context, ids []string) ([]domain.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Story
	for _, id := range ids {
		if s, ok := m.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- TopicSource ---

type mockTopicSource struct {
	topics map[string]domain.Topic
	err    error
}

var _ driven.TopicSource = (*mockTopicSource)(nil)

func newMockTopicSource(topics ...domain.Topic) *mockTopicSource {
	m := &mockTopicSource{topics: make(map[string]domain.Topic)}
	for _, t := range topics {
		m.topics[t.ID] = t
	}
	return m
}

func (m *mockTopicSource) FetchTopic(_ context.Context, id string) (*domain.Topic, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.topics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockTopicSource) ListTopics(_ context.Context) ([]domain.Topic, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Topic
	for _, t := range m.topics {
		out = append(out, t)
	}
	return out, nil
}

// --- SideContentSource ---

type mockSideSource struct {
	card  domain.CardType
	cards []domain.SideCard
	err   error
}

var _ driven.SideContentSource = (*mockSideSource)(nil)

func (m *mockSideSource) CardType() domain.CardType { return m.card }

func (m *mockSideSource) FetchCards(_ context.Context, _ string) ([]domain.SideCard, error) {
	return m.cards, m.err
}

func sideCards(card domain.CardType, ids ...string) []domain.SideCard {
	cards := make([]domain.SideCard, len(ids))
	for i, id := range ids {
		cards[i] = domain.SideCard{ID: id, TopicID: "brighton", Type: card, Title: string(card) + " " + id}
	}
	return cards
}

// --- PageCache ---

type mockPageCache struct {
	mu    sync.Mutex
	pages map[string]domain.StoryPage
}

var _ driven.PageCache = (*mockPageCache)(nil)

func newMockPageCache() *mockPageCache {
	return &mockPageCache{pages: make(map[string]domain.StoryPage)}
}

func (m *mockPageCache) Get(key string) (domain.StoryPage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[key]
	return p, ok
}

func (m *mockPageCache) Set(key string, page domain.StoryPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[key] = page
}

func (m *mockPageCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// --- helpers ---

func testSettings() domain.FeedSettings {
	s := domain.DefaultFeedSettings()
	s.PageSize = 10
	return s
}

// waitEntered blocks until a fetch for key starts.
func waitEntered(t *testing.T, src *mockStorySource, key string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-src.entered:
			if got == key {
				return
			}
		case <-timeout:
			t.Fatalf("fetch %q never started", key)
		}
	}
}

func storyIDs(items []domain.ContentItem) []string {
	var ids []string
	for _, it := range items {
		if it.Kind.CountsAsStory() {
			ids = append(ids, it.Story.ID)
		}
	}
	return ids
}
