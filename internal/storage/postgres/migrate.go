package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsPath is where the schema lives relative to the
// repository root.
const DefaultMigrationsPath = "internal/storage/postgres/migrations"

// MigrateUp applies every pending migration. An already current schema
// is not an error.
func MigrateUp(databaseURL, migrationsPath string) error {
	return withMigrator(databaseURL, migrationsPath, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(databaseURL, migrationsPath string, steps int) error {
	if steps <= 0 {
		return errors.New("migrate down: steps must be positive")
	}
	return withMigrator(databaseURL, migrationsPath, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

func withMigrator(databaseURL, migrationsPath string, run func(*migrate.Migrate) error) error {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations at %s: %w", migrationsPath, err)
	}
	defer func() { _, _ = m.Close() }()

	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
