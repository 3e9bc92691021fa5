// Package migrations embeds the SQL schema migrations that are applied at
// startup by pkg/database.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
