package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema changes applied by `trainer migrate` and on start.
var Migrations = migrate.NewMigrations()
