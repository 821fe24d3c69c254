// Package migrations contains the embedded goose SQL migrations for both
// supported dialects. Each dialect lives in its own directory of the FS.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Directories inside Migrations, one per dialect.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
