// Package migrations embeds the PostgreSQL schema migrations applied by
// cmd/migrate and the repository tests.
package migrations

import "embed"

// FS holds the golang-migrate formatted *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
