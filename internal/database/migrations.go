// Package database wraps golang-migrate for schema management.
package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"
)

type MigrateOptions struct {
	// MigrationsDir is the directory containing the .sql migration files.
	MigrationsDir string
}

func DefaultOptions() MigrateOptions {
	return MigrateOptions{MigrationsDir: "./migrations"}
}

// Runner applies schema migrations against the bun connection.
type Runner struct {
	bunDB    *bun.DB
	options  MigrateOptions
	migrator *migrate.Migrate
}

func NewRunner(bunDB *bun.DB, opts MigrateOptions) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) initialize() error {
	if r.migrator != nil {
		return nil
	}
	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}
	if _, err := os.Stat(r.options.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.MigrationsDir)
	}
	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.MigrationsDir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	r.migrator = migrator
	return nil
}

// MigrateUp applies all pending migrations.
func (r *Runner) MigrateUp() error {
	if err := r.initialize(); err != nil {
		return err
	}
	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls every migration back.
func (r *Runner) MigrateDown() error {
	if err := r.initialize(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateTo moves the schema to a specific version, up or down.
func (r *Runner) MigrateTo(version uint) error {
	if err := r.initialize(); err != nil {
		return err
	}
	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// Version reports the current schema version; ok is false when no
// migration has run yet.
func (r *Runner) Version() (version uint, dirty bool, ok bool, err error) {
	if err := r.initialize(); err != nil {
		return 0, false, false, err
	}
	version, dirty, err = r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

func (r *Runner) Close() error {
	if r.migrator == nil {
		return nil
	}
	sourceErr, databaseErr := r.migrator.Close()
	if sourceErr != nil {
		return fmt.Errorf("error closing migrator source: %w", sourceErr)
	}
	if databaseErr != nil {
		return fmt.Errorf("error closing migrator database: %w", databaseErr)
	}
	return nil
}
