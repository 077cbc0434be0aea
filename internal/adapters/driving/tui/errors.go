package tui

import "errors"

// ErrMissingFeedService is returned when the feed service is not provided.
var ErrMissingFeedService = errors.New("tui: feed service is required")

// ErrMissingTopicService is returned when the topic service is not provided.
var ErrMissingTopicService = errors.New("tui: topic service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
