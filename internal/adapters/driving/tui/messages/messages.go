// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewTopics is the topic picker.
	ViewTopics ViewType = iota
	// ViewFeed is the assembled feed of one topic.
	ViewFeed
	// ViewFilters is the facet filter panel of the open feed.
	ViewFilters
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewTopics:
		return "topics"
	case ViewFeed:
		return "feed"
	case ViewFilters:
		return "filters"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// TopicsLoaded carries the topic list from the service.
type TopicsLoaded struct {
	Topics []domain.Topic
	Err    error
}

// TopicSelected signals the reader picked a topic.
type TopicSelected struct {
	Topic domain.Topic
}

// FeedOpened carries a freshly opened session and its freshness monitor.
type FeedOpened struct {
	Session driving.FeedSession
	Monitor driving.FreshnessMonitor
	Err     error
}

// PageLoaded signals a LoadMore or Retry finished.
type PageLoaded struct {
	Err error
}

// FiltersChanged signals a toggle, removal or clear finished refiltering.
type FiltersChanged struct {
	Err error
}

// MoreLikeThisDone carries the outcome of a "more like this" request.
type MoreLikeThisDone struct {
	StoryID string
	Result  driving.MoreLikeThisResult
	Err     error
}

// FreshnessTick asks the feed view to redraw the new-stories banner.
type FreshnessTick struct{}
