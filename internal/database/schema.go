package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Day uniqueness per (user_id, day_date) is checked by the repository before
// inserting; the index only speeds up that lookup.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS days (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		day_date   VARCHAR(10) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_days_user_date (user_id, day_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		title       VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL,
		hours       DOUBLE       NOT NULL,
		day_id      CHAR(36)     NOT NULL,
		user_id     CHAR(36)     NOT NULL,
		created_at  DATETIME(6)  NOT NULL,
		updated_at  DATETIME(6)  NOT NULL,
		INDEX idx_tasks_user_day (user_id, day_id),
		INDEX idx_tasks_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT     NOT NULL PRIMARY KEY,
		email         TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS days (
		id         TEXT     NOT NULL PRIMARY KEY,
		user_id    TEXT     NOT NULL,
		day_date   TEXT     NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_days_user_date ON days (user_id, day_date)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT     NOT NULL PRIMARY KEY,
		title       TEXT     NOT NULL,
		description TEXT     NOT NULL,
		hours       REAL     NOT NULL,
		day_id      TEXT     NOT NULL,
		user_id     TEXT     NOT NULL,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_day ON tasks (user_id, day_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks (created_at)`,
}

// Migrate creates the users, days and tasks tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
