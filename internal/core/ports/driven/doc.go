// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a feed session to function:
//
//   - StorySource: Paginated story stream and freshness lookups
//   - TopicSource: Topic facets and side-content configuration
//
// # Optional Interfaces
//
// These can be nil or empty - the engine degrades gracefully:
//
//   - SideContentSource: One per card type. Missing sources mean no cards of that type.
//   - PageCache: Prefetch cache. Without it, "more like this" always refetches.
//   - InteractionSource, RoundupStore: Only needed for roundup ranking.
//   - StoryWriter: Only needed for ingest.
//   - ConfigStore: Without it, default feed settings apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
