// Package sqlite provides a unified SQLite-based implementation of the
// storyfeed driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every store interface
// through a single database connection:
//
//   - StorySource: the paged primary story stream and freshness probes
//   - SideContentSource: one source per card type
//   - TopicSource: topic facets and side-content configuration
//   - RoundupStore and InteractionSource: roundup ranking inputs
//   - StoryWriter: the ingest path
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Timestamps are stored as unix nanoseconds so the story stream can be paged
// with a (created_ns, id) keyset.
//
// # Data Location
//
// By default, the database is stored at ~/.storyfeed/data/storyfeed.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
