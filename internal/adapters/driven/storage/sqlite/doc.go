// Package sqlite provides the SQLite-backed knowledge, record and scheduler stores.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds without CGO.
// All stores share one connection:
//
//   - KnowledgeStore: knowledge documents with their embeddings as little-endian float32 blobs
//   - RecordStore: JSON records written by action handlers, grouped by collection
//   - SchedulerStore: maintenance task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each applied version is recorded in schema_migrations.
// Keyword search matches against lower-cased copies of title and content
// that the store writes itself, since SQLite's lower() only folds ASCII.
//
// # Data Location
//
// By default, the database is stored at ~/.voiceos/data/voiceos.db
//
// # Errors
//
// Database failures are wrapped with domain.ErrStoreUnavailable; missing rows
// are reported as domain.ErrNotFound.
package sqlite
