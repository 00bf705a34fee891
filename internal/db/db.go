// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/phigen/phivault/internal/db"

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// FileMode is the permission set used when a vault file is created.
const FileMode os.FileMode = 0o600

var (
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// Exists reports whether a vault file is present at path. It never creates
// the file.
func Exists(p string) (bool, error) {
	info, err := os.Stat(p)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("vault path %s is a directory", p)
		}
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Open opens (creating when missing) the vault file at p, runs migrations and
// returns a Store backed by a long-lived *bun.DB.
func Open(p string) (*Store, error) {
	if p == "" {
		return nil, errors.New("empty vault path")
	}
	if dir := filepath.Dir(p); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create vault directory %s: %w", dir, err)
		}
	}
	// Create the file ourselves so it gets 0600 instead of the driver's umask default.
	f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE, FileMode)
	if err != nil {
		return nil, fmt.Errorf("open vault file: %w", err)
	}
	_ = f.Close()

	start := time.Now()
	sqlDB, err := sqlOpenFunc("sqlite", dsnFor(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One owner per vault; a single connection also keeps every statement on
	// the same sqlite handle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open database: %w", MapDBError(err))
	}
	dbLogf("db: opened %s in %s", p, time.Since(start))

	migStart := time.Now()
	if err := RunMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", MapDBError(err))
	}
	dbLogf("db: migrations completed in %s", time.Since(migStart))

	return &Store{bun: createBunDB(sqlDB), path: p}, nil
}

const dsnPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)&_pragma=secure_delete(ON)"

// dsnFor builds a sqlite URI for p. The path is percent-escaped so '%', '?'
// and '#' in file names stay part of the name.
func dsnFor(p string) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(p), RawQuery: dsnPragmas}
	return u.String()
}

// createBunDB constructs a *bun.DB for the provided *sql.DB.
func createBunDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, sqlitedialect.New())
}

// RunMigrations applies the embedded sqlite migrations that have not been
// recorded in schema_migrations yet.
func RunMigrations(db *sql.DB) error {
	const migrationsPath = "migrations/sqlite"

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRow("SELECT 1 FROM schema_migrations WHERE version = ?", version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		data, err := embeddedMigrations.ReadFile(path.Join(migrationsPath, fname))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fname, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)", version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		dbLogf("db: applied migration %s", version)
	}
	return nil
}
