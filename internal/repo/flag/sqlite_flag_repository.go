package flag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/mkrupp/filedrop-checker/internal/infra/logging"
)

// SQLiteFlagRepositoryConfig holds configuration for the SQLite flag repository.
type SQLiteFlagRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/checker.db"`
}

// SQLiteFlagRepository implements Repository using SQLite as the storage
// backend, so placement and redemption runs on the same host share state.
type SQLiteFlagRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteFlagRepository)(nil)

// SQLiteFlagRepositoryFactory creates a factory function that returns a new
// SQLiteFlagRepository. The factory function implements the RepositoryFactory type.
func SQLiteFlagRepositoryFactory(cfg SQLiteFlagRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteFlagRepository(cfg)
	}
}

// NewSQLiteFlagRepository creates a new SQLiteFlagRepository with the given
// configuration. It initializes the database connection and creates the
// schema if needed. Returns an error if database initialization fails.
func NewSQLiteFlagRepository(cfg SQLiteFlagRepositoryConfig) (*SQLiteFlagRepository, error) {
	log := logging.GetLogger("repo.flag.sqlite_flag_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteFlagRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS flags (
			key        TEXT    PRIMARY KEY,
			value      BLOB    NOT NULL,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Put implements Repository.Put using SQLite. Keys are write-once in the
// protocol; a replaced value would indicate a scheduler reusing a tick.
func (r *SQLiteFlagRepository) Put(ctx context.Context, field string, tick int, value []byte) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO flags (key, value, created_at) VALUES (?, ?, ?)",
		Key(field, tick),
		value,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert flag field: %w", err)
	}

	return nil
}

// Get implements Repository.Get using SQLite.
func (r *SQLiteFlagRepository) Get(ctx context.Context, field string, tick int) ([]byte, bool, error) {
	var value []byte

	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM flags WHERE key = ?",
		Key(field, tick),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query flag field: %w", err)
	}

	return value, true, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteFlagRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
