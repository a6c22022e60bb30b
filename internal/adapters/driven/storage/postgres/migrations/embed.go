// Package migrations embeds the SQL migrations for the PostgreSQL fragment store.
//
// Migrations may reference {{dimensions}}, which is replaced with the
// configured embedding size before execution.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
