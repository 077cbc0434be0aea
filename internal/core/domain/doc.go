// Package domain defines the core business entities for storyfeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Topic: A feed scope with its facet lists and side-content config
//   - Story: A rewritten news story made of slides
//   - SideCard: A unit of side content (sentiment, quiz, insight, ...)
//   - ContentItem: One entry of the assembled render sequence
//   - FilterState: The four selected facet sets
//   - Roundup: A period-bounded digest of stories
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
