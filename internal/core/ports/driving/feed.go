package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// FeedService opens feed sessions.
type FeedService interface {
	// Open loads a topic, its side content and the first page of its feed.
	Open(ctx context.Context, topicID string) (FeedSession, error)

	// Monitor creates the freshness monitor of a session opened by this service.
	Monitor(session FeedSession) (FreshnessMonitor, error)
}

// FeedSession is one topic view's feed. Every method is safe for concurrent
// use; fetches run without holding the session lock.
type FeedSession interface {
	// ID returns the session identifier used in logs.
	ID() string

	// Topic returns the session's topic.
	Topic() domain.Topic

	// View returns the current presentation snapshot.
	View() FeedView

	// LoadMore appends the next page. Ignored while a page fetch is in flight
	// or when the stream is exhausted.
	LoadMore(ctx context.Context) error

	// Retry re-requests the last failed page, bounded by the retry limit.
	Retry(ctx context.Context) error

	// Toggle adds or removes a facet value and refilters.
	Toggle(ctx context.Context, facet domain.FacetType, value string) error

	// Remove deselects a facet value and refilters. No-op if not selected.
	Remove(ctx context.Context, facet domain.FacetType, value string) error

	// ClearAll deselects every facet value and refilters.
	ClearAll(ctx context.Context) error

	// SetFilters replaces the selection and refilters once.
	SetFilters(ctx context.Context, filters domain.FilterState) error

	// Filters returns the currently selected facet values.
	Filters() domain.FilterState

	// Available returns the facet values observed in loaded stories.
	Available() AvailableFacets

	// MoreLikeThis replaces the filters with the facet values matched in a story.
	MoreLikeThis(ctx context.Context, storyID string) (MoreLikeThisResult, error)

	// Prefetch warms the cache for MoreLikeThis on a story. Best-effort.
	Prefetch(ctx context.Context, storyID string)

	// NewestCreatedAt returns the creation time of the newest rendered story.
	NewestCreatedAt() time.Time

	// IsRendered reports whether a story ID is already in the sequence.
	IsRendered(storyID string) bool

	// MergeNewStories splices fresh stories in as page zero, or queues the
	// merge behind an in-flight page fetch.
	MergeNewStories(stories []domain.Story) MergeOutcome

	// Close invalidates all pending fetches.
	Close()
}

// FreshnessMonitor exposes the "N new stories" affordance.
type FreshnessMonitor interface {
	// Start runs periodic checks until ctx is cancelled. It blocks.
	Start(ctx context.Context)

	// Reconnect checks immediately, subject to the check throttle.
	Reconnect(ctx context.Context) (int, error)

	// Check looks for stories newer than the newest rendered one.
	Check(ctx context.Context) (int, error)

	// HasNewStories reports whether unmerged new stories are waiting.
	HasNewStories() bool

	// Count returns the number of waiting stories.
	Count() int

	// Apply hands the waiting stories to the session.
	Apply() MergeOutcome
}

// EmptyState distinguishes why a feed has no items.
type EmptyState string

// Available empty states.
const (
	// EmptyNone means the feed has items.
	EmptyNone EmptyState = ""

	// EmptyNoContent means the topic has no stories at all.
	EmptyNoContent EmptyState = "no_content"

	// EmptyNoMatches means filters are active and nothing matches.
	EmptyNoMatches EmptyState = "no_matches"
)

// FeedView is the presentation snapshot of a session.
type FeedView struct {
	// Items is the render sequence including the trailing marker.
	Items []domain.ContentItem

	// HasMore reports whether another page can be loaded.
	HasMore bool

	// IsLoadingMore reports whether a page fetch is in flight.
	IsLoadingMore bool

	// HasNewStories and NewStoryCount back the "N new stories" affordance.
	HasNewStories bool
	NewStoryCount int

	// Err is the last page fetch failure, nil once a fetch succeeds.
	Err error

	// Attempts counts consecutive failures of the current page.
	Attempts int

	// CanRetry reports whether Retry is still allowed.
	CanRetry bool

	// Empty explains an empty feed.
	Empty EmptyState

	// Filters are the selected facet values.
	Filters domain.FilterState

	// Generation changes whenever the sequence is rebuilt from scratch.
	Generation uint64
}

// AvailableFacets lists observed facet values, most frequent first.
type AvailableFacets struct {
	Keywords      []domain.FacetCount
	Landmarks     []domain.FacetCount
	Organizations []domain.FacetCount
	Sources       []domain.FacetCount
}

// MoreLikeThisResult reports what MoreLikeThis applied.
type MoreLikeThisResult struct {
	// Matches are the facet values applied as filters.
	Matches []domain.FacetMatch

	// OpenFilterUI is true when nothing matched; the caller should open
	// the manual filter UI instead.
	OpenFilterUI bool

	// ScrollToTop is true when filters changed.
	ScrollToTop bool
}

// MergeOutcome reports what happened to a freshness merge.
type MergeOutcome string

// Available merge outcomes.
const (
	MergeApplied MergeOutcome = "applied"
	MergeQueued  MergeOutcome = "queued"
	MergeNoop    MergeOutcome = "noop"
)
