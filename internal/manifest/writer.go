// Package manifest records a built combination tree in a SQLite database
// so it can be queried or replayed without walking the directories.
package manifest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/nestly/internal/nest"
)

const schema = `
CREATE TABLE IF NOT EXISTS combinations (
	seq INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	control JSON NOT NULL
);
`

// Writer appends combinations to a manifest inside a single transaction.
// It implements build.Recorder.
type Writer struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
}

// Create opens (or creates) the manifest at dbPath. Rows from a previous
// build are replaced when the Writer is closed, and kept when it is
// aborted.
func Create(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{db: db}
	if w.tx, err = db.Begin(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := w.tx.Exec("DELETE FROM combinations"); err != nil {
		_ = w.tx.Rollback()
		_ = db.Close()
		return nil, fmt.Errorf("clear manifest: %w", err)
	}
	w.stmt, err = w.tx.Prepare(`INSERT INTO combinations (seq, path, control) VALUES (?, ?, ?)`)
	if err != nil {
		_ = w.tx.Rollback()
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// Record implements build.Recorder.
func (w *Writer) Record(seq int, c nest.Combination) error {
	control, err := json.Marshal(c.Namespace)
	if err != nil {
		return fmt.Errorf("encode control: %w", err)
	}
	if _, err := w.stmt.Exec(seq, c.Path, string(control)); err != nil {
		return fmt.Errorf("insert %s: %w", c.Path, err)
	}
	return nil
}

// Close commits the recorded rows and closes the database.
func (w *Writer) Close() error {
	_ = w.stmt.Close()
	commitErr := w.tx.Commit()
	return errors.Join(commitErr, w.db.Close())
}

// Abort discards everything recorded since Create and closes the database,
// leaving the previous manifest in place.
func (w *Writer) Abort() error {
	_ = w.stmt.Close()
	rollbackErr := w.tx.Rollback()
	return errors.Join(rollbackErr, w.db.Close())
}
