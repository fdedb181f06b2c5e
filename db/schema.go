package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO)
)

// Migrations holds the schema shipped with the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Open opens (or creates) the run history database. Call this once per
// process and share the *sql.DB.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// foreign_keys makes PruneRuns drop run_items through the cascade. WAL and
	// busy_timeout let `serve` read /history while a CLI run in another
	// process records; losing the last run on power loss is acceptable.
	dsn := path +
		"?_pragma=foreign_keys(ON)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer per process; runs are recorded one at a time.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	// Fail at startup, not on the first recorded run.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// ApplyMigrations runs every *.sql file under migrations/ in fsys in
// lexicographic order, one transaction per file. Files use IF NOT EXISTS, so
// running them again is a no-op.
func ApplyMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .sql files found in migrations")
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, readErr := fs.ReadFile(fsys, f)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", f, readErr)
		}

		tx, beginErr := db.BeginTx(ctx, &sql.TxOptions{})
		if beginErr != nil {
			return fmt.Errorf("begin tx for %s: %w", f, beginErr)
		}
		if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec %s: %w", f, execErr)
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("commit %s: %w", f, commitErr)
		}
	}
	return nil
}

// OpenRepo opens path, applies the embedded migrations and returns a Repo
// along with the underlying handle so the caller can close it.
func OpenRepo(ctx context.Context, path string) (Repo, *sql.DB, error) {
	sqlDB, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := ApplyMigrations(ctx, sqlDB, Migrations); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return NewRepo(sqlDB), sqlDB, nil
}
