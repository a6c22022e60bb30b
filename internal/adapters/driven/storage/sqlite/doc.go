// Package sqlite provides a local, single-file implementation of the
// fragment store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One Store implements both driven.FragmentStore and
// driven.FragmentWriter over the companies, analysis_reports and
// source_materials tables.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Similarity
//
// Embeddings are stored as little-endian float32 BLOBs. SQLite has no vector
// operator, so cosine distance is computed in Go over the rows that pass the
// company and chunk type filters. This suits offline use and tests; large
// corpora belong in the postgres store.
//
// # Data Location
//
// By default, the database is stored at ~/.storm/data/storm.db
package sqlite
