// Package store implements the two SQLite-backed logical databases —
// objects and progress — their connection pools, pragma tuning, and
// embedded schema migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
)

// Config tunes a Store's connection pool and pragma behavior.
type Config struct {
	// PoolSize is the configured connection-pool size. New does not apply
	// it: every Store holds a single connection (see New).
	PoolSize int
	// ConnectionTimeoutSecs bounds both connection acquisition and the
	// SQLite busy-timeout pragma (converted to milliseconds).
	ConnectionTimeoutSecs int
	// EnableWAL toggles `journal_mode=WAL` + `synchronous=NORMAL`.
	EnableWAL bool
}

// DefaultConfig matches the documented defaults: pool size 20, 30s
// connection timeout, WAL off.
func DefaultConfig() Config {
	return Config{
		PoolSize:              20,
		ConnectionTimeoutSecs: 30,
		EnableWAL:             false,
	}
}

// Store wraps one *sql.DB bound to exactly one migration set (Kind). The
// two logical databases — objects and progress — are always separate
// Store instances over separate files.
type Store struct {
	db    *sql.DB
	which Kind
	path  string
	cfg   Config
}

// New opens url (a SQLite file path, or ":memory:") under cfg and binds it
// to which's migration set. It fails with apierr.StoreInit if the URL
// cannot be opened or the migration set is unknown.
func New(url string, cfg Config, which Kind) (*Store, error) {
	if _, err := migrationsFor(which); err != nil {
		return nil, apierr.Wrap(apierr.StoreInit, fmt.Sprintf("unknown migration set %q", which), err)
	}

	db, err := sql.Open("sqlite", url)
	if err != nil {
		return nil, apierr.Wrap(apierr.StoreInit, fmt.Sprintf("open %s store at %q", which, url), err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under the pool and matches the writer-serializes
	// model the worker's per-object transactions assume.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, apierr.Wrap(apierr.StoreInit, "enable foreign keys", err)
	}

	busyTimeoutMs := cfg.ConnectionTimeoutSecs * 1000
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs)); err != nil {
		_ = db.Close()
		return nil, apierr.Wrap(apierr.StoreInit, "set busy timeout", err)
	}

	if cfg.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, apierr.Wrap(apierr.StoreInit, "enable WAL mode", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL"); err != nil {
			_ = db.Close()
			return nil, apierr.Wrap(apierr.StoreInit, "set synchronous=NORMAL", err)
		}
	}

	s := &Store{db: db, which: which, path: url, cfg: cfg}

	if err := s.ensureBookkeeping(ctx); err != nil {
		_ = db.Close()
		return nil, apierr.Wrap(apierr.StoreInit, "create schema_migrations table", err)
	}

	log.Debug().Str("kind", string(which)).Str("path", url).Msg("store opened")
	return s, nil
}

func (s *Store) ensureBookkeeping(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// RunMigrations applies every migration in this Store's bundle that has
// not yet been recorded in schema_migrations, in ascending version order.
func (s *Store) RunMigrations(ctx context.Context) error {
	migrations, err := migrationsFor(s.which)
	if err != nil {
		return apierr.Wrap(apierr.StoreInit, "load migrations", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return apierr.Wrap(apierr.StoreInit, "read applied migrations", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := s.applyOne(ctx, m.version, m.up); err != nil {
			return apierr.Wrap(apierr.StoreInit, fmt.Sprintf("apply migration %04d", m.version), err)
		}
		log.Info().Str("kind", string(s.which)).Int("version", m.version).Msg("migration applied")
	}
	return nil
}

// RevertAllMigrations rolls back every applied migration in descending
// version order. Reverting followed by RunMigrations is the defined
// "reset" flow for --reset-db.
func (s *Store) RevertAllMigrations(ctx context.Context) error {
	migrations, err := migrationsFor(s.which)
	if err != nil {
		return apierr.Wrap(apierr.StoreInit, "load migrations", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return apierr.Wrap(apierr.StoreInit, "read applied migrations", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !applied[m.version] {
			continue
		}
		if err := s.revertOne(ctx, m.version, m.down); err != nil {
			return apierr.Wrap(apierr.StoreInit, fmt.Sprintf("revert migration %04d", m.version), err)
		}
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (s *Store) applyOne(ctx context.Context, version int, sqlText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sqlText); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) revertOne(ctx context.Context, version int, sqlText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sqlText); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", version); err != nil {
		return err
	}
	return tx.Commit()
}

// GetConnection acquires a pooled connection bounded by the configured
// connection timeout. Failure to acquire within the timeout surfaces as
// apierr.Unavailable.
func (s *Store) GetConnection(ctx context.Context) (*sql.Conn, error) {
	timeout := time.Duration(s.cfg.ConnectionTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, apierr.Wrap(apierr.Unavailable, "acquire connection", err)
	}
	return conn, nil
}

// DB returns the underlying *sql.DB for components (worker, query engine)
// that issue statements directly rather than through GetConnection.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path, for logging and diagnostics.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
