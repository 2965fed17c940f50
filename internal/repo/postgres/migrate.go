package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies pending goose migrations through database/sql;
// the pgx pool is opened separately for serving traffic.
func RunMigrations(dsn, migrationsDir string) error {
	if dsn == "" || migrationsDir == "" {
		return fmt.Errorf("migrations dsn and directory are required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migrations connection: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
