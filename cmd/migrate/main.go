package main

import (
	"database/sql"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventx/internal/config"
	"eventx/internal/database"
	"eventx/internal/logger"
)

func main() {
	var (
		dir     = flag.String("dir", "./migrations", "directory containing migration files")
		down    = flag.Bool("down", false, "roll all migrations back")
		version = flag.Uint("to", 0, "migrate to a specific version (0 means latest)")
	)
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := database.NewRunner(bunDB, database.MigrateOptions{MigrationsDir: *dir})
	defer runner.Close()

	switch {
	case *down:
		if err := runner.MigrateDown(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration down failed: %v", err))
		}
		log.Info("DATABASE", "All migrations rolled back")
	case *version > 0:
		if err := runner.MigrateTo(*version); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration to version %d failed: %v", *version, err))
		}
		log.Info("DATABASE", fmt.Sprintf("Schema migrated to version %d", *version))
	default:
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration up failed: %v", err))
		}
		log.Info("DATABASE", "All migrations applied")
	}

	if v, dirty, ok, err := runner.Version(); err == nil && ok {
		log.Info("DATABASE", fmt.Sprintf("Current schema version: %d (dirty: %v)", v, dirty))
	}
}
