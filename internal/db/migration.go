package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations brings the audit schema up to the latest embedded migration.
func RunMigrations(dbURL string, schema string) error {
	slog.Info("Running database migrations...")

	db, err := openMigrationDB(dbURL, schema)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return err
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// SchemaVersion reports the migration version currently applied in schema.
// It creates the schema and the goose version table when they are missing,
// in which case the version is 0.
func SchemaVersion(dbURL string, schema string) (int64, error) {
	db, err := openMigrationDB(dbURL, schema)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return goose.GetDBVersion(db)
}

// openMigrationDB opens a single-connection handle whose search_path points
// at schema, with goose configured for the embedded migrations.
func openMigrationDB(dbURL string, schema string) (*sql.DB, error) {
	// Audit tables live in their own schema unless told otherwise
	if schema == "" {
		schema = "public"
	}

	// goose needs database/sql, so go through the pgx stdlib driver
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}
	// search_path is set per session; a second pooled connection would not see it
	db.SetMaxOpenConns(1)

	// Fail fast with a clear message when the database is unreachable
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Create the schema and make it the target of every migration statement
	if err := ensureSchemaExists(db, schema); err != nil {
		db.Close()
		return nil, err
	}

	// Migrations ship inside the binary
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchemaExists(db *sql.DB, schema string) error {
	// Create schema if it doesn't exist
	query := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
	if _, err := db.Exec(query); err != nil {
		return err
	}
	slog.Info("Schema is ready", "schema", schema)

	// goose creates its version table in the first schema on the search path
	setPathQuery := "SET search_path TO " + pgx.Identifier{schema}.Sanitize()
	if _, err := db.Exec(setPathQuery); err != nil {
		return err
	}
	slog.Debug("Set search_path", "schema", schema)

	return nil
}
