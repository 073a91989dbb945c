package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/progression"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db     *sql.DB
	seq    *sequenceCounter
	engine *progression.Engine
	log    *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMasteryCap sets the upper bound applied to mastery updates.
func WithMasteryCap(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.engine = progression.NewEngine(limit)
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open connects to the SQLite database at dsn, applies pragmas and runs
// pending migrations.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers anyway; a single connection also keeps
	// in-memory databases alive for the life of the Store.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		seq:    &sequenceCounter{},
		engine: progression.NewEngine(progression.DefaultMasteryCap),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would close db as well, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Students() *StudentRepo {
	return &StudentRepo{db: s.db}
}

func (s *Store) Progress() *ProgressRepo {
	return &ProgressRepo{db: s.db}
}

func (s *Store) LLMEvents() *LLMEventRepo {
	return &LLMEventRepo{db: s.db, seq: s.seq}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &UnavailableError{Op: "ping", Err: err}
	}
	return nil
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TUTOR_DB environment variable
// 2. $XDG_DATA_HOME/tutor/tutor.db
// 3. ~/.local/share/tutor/tutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TUTOR_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "tutor", "tutor.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
