package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withConnPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps pragmas and in-memory databases consistent
	// and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	m, err := schema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, drv)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Questions returns the question repository.
func (s *Store) Questions() *QuestionRepo {
	return &QuestionRepo{ex: s.drv}
}

// Reviews returns the review item repository.
func (s *Store) Reviews() *ReviewRepo {
	return &ReviewRepo{ex: s.drv}
}

// Answers returns the answer event repository.
func (s *Store) Answers() *AnswerRepo {
	return &AnswerRepo{ex: s.drv, seq: s.seq}
}

// Profiles returns the learner profile snapshot repository.
func (s *Store) Profiles() *ProfileRepo {
	return &ProfileRepo{ex: s.drv, seq: s.seq}
}

// Tx exposes the repositories bound to one transaction.
type Tx struct {
	tx  dialect.Tx
	seq *sequenceCounter
}

func (t *Tx) Questions() *QuestionRepo { return &QuestionRepo{ex: t.tx} }
func (t *Tx) Reviews() *ReviewRepo     { return &ReviewRepo{ex: t.tx} }
func (t *Tx) Answers() *AnswerRepo     { return &AnswerRepo{ex: t.tx, seq: t.seq} }
func (t *Tx) Profiles() *ProfileRepo   { return &ProfileRepo{ex: t.tx, seq: t.seq} }

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on error or panic. fn must only use the repositories of tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	dtx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			dtx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: dtx, seq: s.seq}); err != nil {
		if rerr := dtx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := dtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// withConnPragmas asks the driver to enable foreign keys and a busy timeout
// on every connection it opens.
func withConnPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// applyPragmas configures SQLite for optimal single-user performance.
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
// 1. BOKI_DB environment variable
// 2. $XDG_DATA_HOME/boki/boki.db
// 3. ~/.local/share/boki/boki.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("BOKI_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "boki", "boki.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
