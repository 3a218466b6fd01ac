// Package migrations holds the schema and stored functions applied by cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
