// Package migrations embeds the audit database schema into the binary.
package migrations

import "embed"

// FS holds the SQL migration files at its root.
//
//go:embed *.sql
var FS embed.FS
