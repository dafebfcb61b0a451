// Package migrations embeds the SQLite schema migrations for the bridge store.
package migrations

import "embed"

// FS contains the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
