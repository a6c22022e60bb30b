// Package postgres implements the fragment store ports on PostgreSQL with
// the pgvector extension, using github.com/lib/pq.
//
// Similarity uses the cosine distance operator (<=>) so ranking happens in
// the database. The schema is created by embedded, numbered migrations
// tracked in schema_migrations; the vector column size comes from
// Config.Dimensions.
//
// Integration tests run against the database named by STORM_TEST_POSTGRES_DSN
// and are skipped when it is unset.
package postgres
