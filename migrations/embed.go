// Package migrations embeds the SQL migration files so the migrate
// binary can run them without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
