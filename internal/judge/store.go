package judge

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dealdesk/internal/logging"
)

// Store is the persistent judgment cache backed by SQLite. It lets
// repeated evaluations of the same submission skip already-paid LLM
// calls across process restarts.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates or opens the judgment store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open judgment store: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize judgment store schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS judgments (
		definition_id TEXT NOT NULL,
		submission_id TEXT NOT NULL,
		raw           TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL,
		PRIMARY KEY (definition_id, submission_id)
	);
	`)
	return err
}

// Get implements types.JudgmentCache. Store errors are logged and
// reported as misses so a broken cache degrades to fresh LLM calls.
func (s *Store) Get(definitionID, submissionID string) (string, bool) {
	var raw string
	err := s.db.QueryRow(`
		SELECT raw FROM judgments
		WHERE definition_id = ? AND submission_id = ?
	`, definitionID, submissionID).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.Cache("store read failed for (%s, %s): %v", definitionID, submissionID, err)
		}
		return "", false
	}
	return raw, true
}

// Put implements types.JudgmentCache.
func (s *Store) Put(definitionID, submissionID, raw string) error {
	_, err := s.db.Exec(`
		INSERT INTO judgments (definition_id, submission_id, raw, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (definition_id, submission_id) DO UPDATE SET
			raw = excluded.raw,
			created_at = excluded.created_at
	`, definitionID, submissionID, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist judgment for (%s, %s): %w", definitionID, submissionID, err)
	}
	return nil
}

// Prune deletes entries older than the retention window and returns the
// number removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.Exec(`DELETE FROM judgments WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune judgment store: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}
