package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/vintrack/vintrack-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

func gooseDialect(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("no goose dialect for driver %q", driver)
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
