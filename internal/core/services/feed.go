package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// Verify interface compliance.
var (
	_ driving.FeedService = (*FeedService)(nil)
	_ driving.FeedSession = (*FeedSession)(nil)
)

// FetchError records a failed page fetch and how often it has failed.
type FetchError struct {
	// Attempts counts consecutive failures of the same page.
	Attempts int

	// Err is the most recent failure.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("page fetch failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FeedService opens feed sessions over a story stream and side-content sources.
type FeedService struct {
	topics   driven.TopicSource
	stories  driven.StorySource
	side     []driven.SideContentSource
	cache    driven.PageCache
	slots    *SlotRegistry
	settings domain.FeedSettings
	strategy MatchStrategy
	prefetch *singleflight.Group
}

// NewFeedService creates a feed service. cache may be nil, which disables
// prefetching. slots may be nil, which selects the shipped slot table.
func NewFeedService(
	topics driven.TopicSource,
	stories driven.StorySource,
	side []driven.SideContentSource,
	cache driven.PageCache,
	slots *SlotRegistry,
	settings domain.FeedSettings,
) *FeedService {
	if slots == nil {
		slots = DefaultSlotRegistry()
	}
	return &FeedService{
		topics:   topics,
		stories:  stories,
		side:     side,
		cache:    cache,
		slots:    slots,
		settings: settings.Normalised(),
		strategy: DefaultMatchStrategy(),
		prefetch: &singleflight.Group{},
	}
}

// SetMatchStrategy replaces the facet match strategy of future sessions.
func (s *FeedService) SetMatchStrategy(strategy MatchStrategy) {
	if strategy != nil {
		s.strategy = strategy
	}
}

// Settings returns the normalised settings sessions are opened with.
func (s *FeedService) Settings() domain.FeedSettings {
	return s.settings
}

// Open implements driving.FeedService.
func (s *FeedService) Open(ctx context.Context, topicID string) (driving.FeedSession, error) {
	return s.OpenSession(ctx, topicID)
}

// Monitor creates and attaches the freshness monitor of a session opened
// by this service.
func (s *FeedService) Monitor(session driving.FeedSession) (driving.FreshnessMonitor, error) {
	fs, ok := session.(*FeedSession)
	if !ok {
		return nil, fmt.Errorf("%w: session %T was not opened by this service", domain.ErrInvalidInput, session)
	}
	return NewFreshnessMonitor(s.stories, fs, s.settings), nil
}

// OpenSession loads a topic, its side content and the first page of its feed.
// A failed first page does not fail the call; it is reported through
// View().Err and can be retried.
func (s *FeedService) OpenSession(ctx context.Context, topicID string) (*FeedSession, error) {
	topic, err := s.topics.FetchTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("fetch topic %s: %w", topicID, err)
	}

	slots, err := s.slots.ForTopic(topic.SideContent)
	if err != nil {
		return nil, fmt.Errorf("topic %s: %w", topic.ID, err)
	}
	if len(topic.SideContent.Cadence) > 0 {
		logger.Debug("topic %s: checking overridden slot table", topic.ID)
		slots.LogCollisionReport(CollisionCheckSpan)
	}

	logger.Section("Feed: " + topic.Name)

	index := NewFacetIndex(*topic, WithMatchStrategy(s.strategy))
	side := s.loadSideContent(ctx, topic.ID, slots)

	session := &FeedSession{
		id:        uuid.NewString(),
		topic:     *topic,
		source:    s.stories,
		cache:     s.cache,
		prefetch:  s.prefetch,
		settings:  s.settings,
		index:     index,
		slots:     slots,
		assembler: NewAssembler(slots),
		side:      side,
		filters:   NewFilterMachine(index),
		base:      stream{hasMore: true},
	}
	session.cur = &session.base
	session.seq = NewSequence(0)

	logger.Info("session %s opened for topic %s", session.id, topic.ID)

	if err := session.fetchNext(ctx); err != nil && !errors.Is(err, domain.ErrStaleResult) {
		logger.Warn("session %s: first page: %v", session.id, err)
	}
	return session, nil
}

// loadSideContent fetches every enabled side-content source in parallel.
// A failing source is logged and skipped; it never blocks the feed.
func (s *FeedService) loadSideContent(ctx context.Context, topicID string, slots *SlotRegistry) SideContent {
	results := make([][]domain.SideCard, len(s.side))

	var g errgroup.Group
	g.SetLimit(len(domain.CardTypes()))
	for i, src := range s.side {
		if _, ok := slots.Rule(src.CardType()); !ok {
			continue
		}
		g.Go(func() error {
			cards, err := src.FetchCards(ctx, topicID)
			if err != nil {
				logger.Warn("side content %s for %s: %v", src.CardType(), topicID, err)
				return nil
			}
			results[i] = cards
			return nil
		})
	}
	_ = g.Wait()

	side := make(SideContent)
	for i, src := range s.side {
		if len(results[i]) > 0 {
			side[src.CardType()] = append(side[src.CardType()], results[i]...)
		}
	}
	for card, cards := range side {
		logger.Debug("side content %s: %d cards", card, len(cards))
	}
	return side
}

// stream is one paginated story stream: the unfiltered topic stream or a
// server-side filtered one.
type stream struct {
	filters domain.FilterState
	stories []domain.Story
	cursor  string
	hasMore bool
}

// FeedSession is one topic view's feed. It is guarded by a single mutex;
// upstream fetches run with the mutex released.
type FeedSession struct {
	id        string
	topic     domain.Topic
	source    driven.StorySource
	cache     driven.PageCache
	prefetch  *singleflight.Group
	settings  domain.FeedSettings
	index     *FacetIndex
	slots     *SlotRegistry
	assembler *Assembler
	side      SideContent

	prefetching sync.WaitGroup

	mu         sync.Mutex
	filters    *FilterMachine
	base       stream
	filtered   stream
	cur        *stream
	seq        *Sequence
	generation uint64
	inFlight   bool
	fetchErr   *FetchError
	queued     []domain.Story
	fresh      freshnessState
	closed     bool
}

// freshnessState is the read side of a freshness monitor.
type freshnessState interface {
	HasNewStories() bool
	Count() int
}

// ID returns the session identifier.
func (s *FeedSession) ID() string {
	return s.id
}

// Topic returns the session's topic.
func (s *FeedSession) Topic() domain.Topic {
	return s.topic
}

// Index returns the session's facet index.
func (s *FeedSession) Index() *FacetIndex {
	return s.index
}

// Slots returns the session's topic slot registry.
func (s *FeedSession) Slots() *SlotRegistry {
	return s.slots
}

// Sequence returns the current immutable sequence snapshot.
func (s *FeedSession) Sequence() *Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// View returns the presentation snapshot.
func (s *FeedSession) View() driving.FeedView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := driving.FeedView{
		Items:         s.seq.Render(),
		HasMore:       s.hasMoreLocked(),
		IsLoadingMore: s.inFlight,
		Filters:       s.filters.State(),
		Generation:    s.generation,
	}
	if s.fetchErr != nil {
		view.Err = s.fetchErr
		view.Attempts = s.fetchErr.Attempts
		view.CanRetry = s.fetchErr.Attempts <= s.settings.MaxRetries
	}
	if s.fresh != nil {
		view.HasNewStories = s.fresh.HasNewStories()
		view.NewStoryCount = s.fresh.Count()
	}
	if s.seq.Len() == 0 && !s.inFlight && s.fetchErr == nil && !view.HasMore {
		if s.filters.HasActiveFilters() {
			view.Empty = driving.EmptyNoMatches
		} else {
			view.Empty = driving.EmptyNoContent
		}
	}
	return view
}

// LoadMore appends the next page. It is ignored while a fetch is in flight,
// when the stream is exhausted, and while a failed page awaits Retry.
func (s *FeedSession) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	pending := s.fetchErr != nil
	s.mu.Unlock()
	if pending {
		return nil
	}
	return s.ignoreStale(s.fetchNext(ctx))
}

// Retry re-requests the last failed page. Returns ErrNothingToRetry when no
// page failed and ErrRetryExhausted once the retry limit is used up.
func (s *FeedSession) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.fetchErr == nil {
		s.mu.Unlock()
		return domain.ErrNothingToRetry
	}
	if s.fetchErr.Attempts > s.settings.MaxRetries {
		err := fmt.Errorf("%w after %d attempts: %v", domain.ErrRetryExhausted, s.fetchErr.Attempts, s.fetchErr.Err)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	logger.Debug("session %s: retrying page", s.id)
	return s.ignoreStale(s.fetchNext(ctx))
}

// Toggle adds or removes a facet value and refilters.
func (s *FeedSession) Toggle(ctx context.Context, facet domain.FacetType, value string) error {
	return s.mutateFilters(ctx, func(m *FilterMachine) bool {
		before := m.State()
		m.Toggle(facet, value)
		return before.Signature() != m.State().Signature()
	})
}

// Remove deselects a facet value and refilters. Removing a value that is
// not selected does nothing.
func (s *FeedSession) Remove(ctx context.Context, facet domain.FacetType, value string) error {
	return s.mutateFilters(ctx, func(m *FilterMachine) bool {
		return m.Remove(facet, value)
	})
}

// ClearAll deselects every facet value and refilters.
func (s *FeedSession) ClearAll(ctx context.Context) error {
	return s.mutateFilters(ctx, func(m *FilterMachine) bool {
		return m.ClearAll()
	})
}

// SetFilters replaces the selected facet values with filters and refilters
// once. A value listed twice is selected once.
func (s *FeedSession) SetFilters(ctx context.Context, filters domain.FilterState) error {
	return s.mutateFilters(ctx, func(m *FilterMachine) bool {
		before := m.State().Signature()
		m.Replace(filters)
		return before != m.State().Signature()
	})
}

// Filters returns the selected facet values.
func (s *FeedSession) Filters() domain.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.State()
}

// Available returns the facet values observed in the loaded stories.
func (s *FeedSession) Available() driving.AvailableFacets {
	s.mu.Lock()
	stories := s.loadedLocked()
	s.mu.Unlock()

	return driving.AvailableFacets{
		Keywords:      s.filters.AvailableKeywords(stories),
		Landmarks:     s.filters.AvailableLandmarks(stories),
		Organizations: s.filters.AvailableOrganizations(stories),
		Sources:       s.filters.AvailableSources(stories),
	}
}

// MoreLikeThis replaces the filters with the facet values a story matches.
// When nothing matches the filters are left alone and OpenFilterUI is set.
func (s *FeedSession) MoreLikeThis(ctx context.Context, storyID string) (driving.MoreLikeThisResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return driving.MoreLikeThisResult{}, domain.ErrSessionClosed
	}
	story, ok := s.findLocked(storyID)
	if !ok {
		s.mu.Unlock()
		return driving.MoreLikeThisResult{}, fmt.Errorf("story %s: %w", storyID, domain.ErrNotFound)
	}

	matches := s.index.ComputeMatches(&story)
	if len(matches) == 0 {
		s.mu.Unlock()
		logger.Debug("session %s: no facet matches for %s", s.id, storyID)
		return driving.MoreLikeThisResult{OpenFilterUI: true}, nil
	}

	s.filters.Replace(domain.FilterStateFromMatches(matches))
	s.mu.Unlock()

	logger.Info("more like %s: %v", storyID, matches)
	if err := s.refilter(ctx); err != nil {
		return driving.MoreLikeThisResult{Matches: matches}, err
	}
	return driving.MoreLikeThisResult{Matches: matches, ScrollToTop: true}, nil
}

// Prefetch fetches, in the background, the first page MoreLikeThis would
// load for a story and stores it in the page cache. Concurrent prefetches
// of the same filter set share one fetch.
func (s *FeedSession) Prefetch(ctx context.Context, storyID string) {
	if s.cache == nil || !s.settings.PrefetchEnabled {
		return
	}

	s.mu.Lock()
	story, ok := s.findLocked(storyID)
	complete := !s.base.hasMore
	closed := s.closed
	s.mu.Unlock()
	if !ok || complete || closed {
		return
	}

	matches := s.index.ComputeMatches(&story)
	if len(matches) == 0 {
		return
	}
	filters := domain.FilterStateFromMatches(matches)
	key := s.cacheKey(filters)
	if _, hit := s.cache.Get(key); hit {
		return
	}

	req := domain.PageRequest{
		TopicID: s.topic.ID,
		Filters: filters,
		Limit:   s.settings.PageSize,
		Sort:    s.settings.Sort,
	}

	s.prefetching.Add(1)
	go func() {
		defer s.prefetching.Done()
		_, err, shared := s.prefetch.Do(key, func() (any, error) {
			page, err := s.source.FetchStoryPage(ctx, req)
			if err != nil {
				return nil, err
			}
			s.cache.Set(key, page)
			return page, nil
		})
		if err != nil {
			logger.Debug("prefetch %s: %v", key, err)
			return
		}
		logger.Debug("prefetched %s (shared=%t)", key, shared)
	}()
}

// NewestCreatedAt returns the creation time of the newest rendered story.
func (s *FeedSession) NewestCreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.NewestCreatedAt()
}

// IsRendered reports whether a story is already in the sequence.
func (s *FeedSession) IsRendered(storyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Contains(storyID) || s.isLoadedLocked(storyID)
}

// MergeNewStories splices fresh stories into the feed as a synthetic page
// zero and reassembles the sequence from story index zero. While a page
// fetch is in flight the merge is queued instead; a later merge replaces a
// queued one.
func (s *FeedSession) MergeNewStories(stories []domain.Story) driving.MergeOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(stories) == 0 {
		return driving.MergeNoop
	}
	if s.inFlight {
		s.queued = stories
		logger.Debug("session %s: merge of %d stories queued", s.id, len(stories))
		return driving.MergeQueued
	}
	return s.mergeLocked(stories)
}

// Close invalidates pending fetches. Later calls return ErrSessionClosed.
func (s *FeedSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.queued = nil
	s.inFlight = false
	logger.Debug("session %s closed", s.id)
}

func (s *FeedSession) attachFreshness(f freshnessState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh = f
}

// fetchNext fetches the next page of the current stream.
func (s *FeedSession) fetchNext(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.inFlight || !s.cur.hasMore {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	req := domain.PageRequest{
		TopicID: s.topic.ID,
		Filters: s.cur.filters,
		Cursor:  s.cur.cursor,
		Limit:   s.settings.PageSize,
		Sort:    s.settings.Sort,
	}
	s.inFlight = true
	s.mu.Unlock()

	if logger.Enabled(logger.LevelDebug) {
		logger.Debug("session %s: fetching page (cursor=%q, filters=%q)", s.id, req.Cursor, req.Filters.Signature())
	}
	page, err := s.source.FetchStoryPage(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if gen != s.generation {
		logger.Debug("session %s: discarding page from generation %d", s.id, gen)
		return domain.ErrStaleResult
	}
	s.inFlight = false

	if err != nil {
		attempts := 1
		if s.fetchErr != nil {
			attempts = s.fetchErr.Attempts + 1
		}
		s.fetchErr = &FetchError{Attempts: attempts, Err: err}
		s.applyQueuedLocked()
		return s.fetchErr
	}

	s.fetchErr = nil
	s.appendLocked(page)
	s.applyQueuedLocked()
	return nil
}

func (s *FeedSession) appendLocked(page domain.StoryPage) {
	s.cur.stories = append(s.cur.stories, page.Stories...)
	s.cur.cursor = page.NextCursor
	s.cur.hasMore = page.HasMore()
	s.seq = s.assembler.Append(s.seq, page.Stories, s.side, s.cur.hasMore)
	logger.Debug("session %s: page %d appended, %d stories rendered", s.id, s.seq.Pages(), s.seq.StoryIndex())
}

func (s *FeedSession) mutateFilters(ctx context.Context, mutate func(*FilterMachine) bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	changed := mutate(s.filters)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.refilter(ctx)
}

// refilter rebuilds the sequence for the current filters. Filtering runs
// locally when the unfiltered stream is fully loaded; otherwise pagination
// restarts upstream with the filters applied. Either way the generation is
// bumped so in-flight results of the previous filters are discarded.
func (s *FeedSession) refilter(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	s.generation++
	s.inFlight = false
	s.fetchErr = nil
	s.queued = nil
	state := s.filters.State()

	if state.IsEmpty() {
		s.cur = &s.base
		s.filtered = stream{}
		s.seq = s.assembler.Assemble(s.generation, s.base.stories, s.side, s.base.hasMore)
		s.mu.Unlock()
		logger.Debug("session %s: filters cleared", s.id)
		return nil
	}

	if s.filters.Classify(!s.base.hasMore) == FilterModeClient {
		s.cur = &s.base
		s.filtered = stream{}
		s.seq = s.assembler.Assemble(s.generation, s.filters.Apply(s.base.stories), s.side, false)
		s.mu.Unlock()
		logger.Debug("session %s: refiltered %d loaded stories locally", s.id, len(s.base.stories))
		return nil
	}

	s.filtered = stream{filters: state, hasMore: true}
	s.cur = &s.filtered
	s.seq = NewSequence(s.generation)

	if s.cache != nil {
		if page, ok := s.cache.Get(s.cacheKey(state)); ok {
			s.appendLocked(page)
			s.mu.Unlock()
			logger.Debug("session %s: first filtered page served from cache", s.id)
			return nil
		}
	}
	s.mu.Unlock()

	return s.ignoreStale(s.fetchNext(ctx))
}

func (s *FeedSession) mergeLocked(stories []domain.Story) driving.MergeOutcome {
	fresh := make([]domain.Story, 0, len(stories))
	seen := make(map[string]bool, len(stories))
	for _, st := range stories {
		if st.IsGhost() || seen[st.ID] || s.seq.Contains(st.ID) || s.isLoadedLocked(st.ID) {
			continue
		}
		seen[st.ID] = true
		fresh = append(fresh, st)
	}
	if len(fresh) == 0 {
		return driving.MergeNoop
	}

	if s.settings.Sort == domain.SortOldest {
		if s.base.hasMore {
			// Pagination will reach them.
			return driving.MergeNoop
		}
		s.base.stories = append(s.base.stories, fresh...)
	} else {
		s.base.stories = append(fresh, s.base.stories...)
	}

	s.generation++
	state := s.filters.State()
	var display []domain.Story
	hasMore := s.base.hasMore
	switch {
	case state.IsEmpty():
		display = s.base.stories
	case s.cur == &s.filtered:
		matching := s.filters.Apply(fresh)
		if s.settings.Sort == domain.SortOldest {
			s.filtered.stories = append(s.filtered.stories, matching...)
		} else {
			s.filtered.stories = append(matching, s.filtered.stories...)
		}
		display = s.filtered.stories
		hasMore = s.filtered.hasMore
	default:
		display = s.filters.Apply(s.base.stories)
		hasMore = false
	}

	s.seq = s.assembler.Assemble(s.generation, display, s.side, hasMore)
	logger.Info("session %s: merged %d new stories", s.id, len(fresh))
	return driving.MergeApplied
}

func (s *FeedSession) applyQueuedLocked() {
	if s.queued == nil {
		return
	}
	stories := s.queued
	s.queued = nil
	s.mergeLocked(stories)
}

func (s *FeedSession) hasMoreLocked() bool {
	if s.cur == &s.base && s.filters.HasActiveFilters() {
		return false
	}
	return s.cur.hasMore
}

// loadedLocked returns every story fetched in this session, unfiltered
// stream first.
func (s *FeedSession) loadedLocked() []domain.Story {
	out := make([]domain.Story, 0, len(s.base.stories)+len(s.filtered.stories))
	seen := make(map[string]bool, cap(out))
	for _, list := range [][]domain.Story{s.base.stories, s.filtered.stories} {
		for _, st := range list {
			if seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			out = append(out, st)
		}
	}
	return out
}

func (s *FeedSession) isLoadedLocked(storyID string) bool {
	for _, list := range [][]domain.Story{s.base.stories, s.filtered.stories} {
		for i := range list {
			if list[i].ID == storyID && !list[i].IsGhost() {
				return true
			}
		}
	}
	return false
}

func (s *FeedSession) findLocked(storyID string) (domain.Story, bool) {
	if st, ok := s.seq.Story(storyID); ok {
		return st, true
	}
	for _, list := range [][]domain.Story{s.base.stories, s.filtered.stories} {
		for i := range list {
			if list[i].ID == storyID {
				return list[i], true
			}
		}
	}
	return domain.Story{}, false
}

func (s *FeedSession) cacheKey(filters domain.FilterState) string {
	return s.topic.ID + "#" + string(s.settings.Sort) + "#" + filters.Signature()
}

func (s *FeedSession) ignoreStale(err error) error {
	if errors.Is(err, domain.ErrStaleResult) {
		return nil
	}
	return err
}
