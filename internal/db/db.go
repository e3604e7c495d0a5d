package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open connects to the configured database. SQLite is limited to a single
// connection so the foreign_keys pragma stays in effect.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == DriverMySQL {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if driver == DriverSQLite {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// mysqlDSN forces DATETIME columns to scan into time.Time in UTC, whatever
// the configured DSN says.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON;`,
	`CREATE TABLE IF NOT EXISTS users(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL COLLATE NOCASE,
		email TEXT UNIQUE NOT NULL COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions(
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS blogs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_blogs_owner ON blogs(owner_id);`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users(
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(35) NOT NULL UNIQUE,
		email VARCHAR(35) NOT NULL UNIQUE,
		password_hash VARCHAR(120) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS sessions(
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS blogs(
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		name VARCHAR(120) NOT NULL,
		body VARCHAR(300) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_blogs_owner (owner_id),
		FOREIGN KEY (owner_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == DriverMySQL {
		stmts = mysqlSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
