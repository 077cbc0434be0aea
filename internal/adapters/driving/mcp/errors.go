// Package mcp provides an MCP (Model Context Protocol) server adapter for storyfeed.
// It lets AI assistants read assembled feeds, rank roundups and inspect the slot table.
package mcp

import "errors"

// ErrMissingFeedService is returned when the feed service is not provided.
var ErrMissingFeedService = errors.New("mcp: feed service is required")

// ErrMissingTopicService is returned when the topic service is not provided.
var ErrMissingTopicService = errors.New("mcp: topic service is required")

// errToolUnavailable is returned by tools whose optional port is not set.
var errToolUnavailable = errors.New("mcp: tool not available in this configuration")
