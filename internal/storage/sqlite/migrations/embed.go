// Package migrations embeds the SQLite schema for the standalone store.
package migrations

import "embed"

// FS holds the ordered *.sql files applied by sqlite.Open.
//
//go:embed *.sql
var FS embed.FS
