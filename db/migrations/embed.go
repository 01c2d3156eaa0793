// Package migrations embeds the schema migrations applied at startup.
package migrations

import "embed"

// Files holds the up and down SQL files, named for golang-migrate.
//
//go:embed *.sql
var Files embed.FS
