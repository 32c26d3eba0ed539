package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the bun migration set applied by `exam-service migrate`.
var Migrations = migrate.NewMigrations()
