// Package migrations embeds the goose SQL migrations for the report archive.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
