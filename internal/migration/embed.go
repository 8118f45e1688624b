package migration

import (
	"embed"
	"io/fs"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Files exposes the embedded migration tree.
func Files() fs.FS { return embeddedMigrations }
