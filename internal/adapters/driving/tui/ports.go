// Package tui provides an interactive terminal feed reader for storyfeed.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Feed opens feed sessions and their freshness monitors.
	Feed driving.FeedService

	// Topics lists the topics a reader can open.
	Topics driving.TopicService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(feed driving.FeedService, topics driving.TopicService) *Ports {
	return &Ports{
		Feed:   feed,
		Topics: topics,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Feed == nil {
		return ErrMissingFeedService
	}
	if p.Topics == nil {
		return ErrMissingTopicService
	}
	return nil
}
