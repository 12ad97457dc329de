// Package cache is the client-local resume cache: a handful of named
// single-value slots in a SQLite database. It is a best-effort convenience,
// never authoritative — the remote API owns all real state.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Slot names. Each is a single shared slot, last-writer-wins, read once at
// session start and cleared on completion or abort.
const (
	SlotActiveQuiz = "active_quiz"
	SlotQuizConfig = "quiz_config"
)

// slotRow is one named cache slot.
type slotRow struct {
	bun.BaseModel `bun:"table:resume_slots"`

	Name      string    `bun:"name,pk"`
	Payload   []byte    `bun:"payload"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store holds the bun client over the local SQLite database.
type Store struct {
	sqldb *sql.DB
	db    *bun.DB
}

// Open connects to the SQLite database at dsn, applies pragmas, and ensures
// the slot table exists.
func Open(dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applyPragmas(sqldb); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*slotRow)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("create slot table: %w", err)
	}
	return &Store{sqldb: sqldb, db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes a slot, replacing any previous value.
func (s *Store) Put(ctx context.Context, name string, payload []byte) error {
	row := &slotRow{Name: name, Payload: payload, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("put slot %s: %w", name, err)
	}
	return nil
}

// Get reads a slot. Returns nil with no error when the slot is absent.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	row := new(slotRow)
	err := s.db.NewSelect().Model(row).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", name, err)
	}
	return row.Payload, nil
}

// Clear removes a slot. Clearing an absent slot is a no-op.
func (s *Store) Clear(ctx context.Context, name string) error {
	_, err := s.db.NewDelete().Model((*slotRow)(nil)).Where("name = ?", name).Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear slot %s: %w", name, err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user client use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the cache database path in priority order:
// 1. BELLRING_DB environment variable
// 2. $XDG_DATA_HOME/bellring/bellring.db
// 3. ~/.local/share/bellring/bellring.db
func DefaultPath() (string, error) {
	if p := os.Getenv("BELLRING_DB"); p != "" {
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

	p := filepath.Join(dataHome, "bellring", "bellring.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
