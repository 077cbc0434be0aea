package mcp

import (
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Feed opens feed sessions.
	Feed driving.FeedService

	// Topics lists topics.
	Topics driving.TopicService

	// Ranking ranks roundups. Optional.
	Ranking driving.RankingService

	// Slots exposes the slot table. Optional.
	Slots driving.SlotDiagnostics
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Feed == nil {
		return ErrMissingFeedService
	}
	if p.Topics == nil {
		return ErrMissingTopicService
	}
	return nil
}
