package manifest

import (
	"database/sql"
	"fmt"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

// Stream replays a manifest in build order, calling fn for each row with
// the decoded control record. Only one record is alive at a time.
func Stream(dbPath string, fn func(seq int, path string, control any) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT seq, path, control FROM combinations ORDER BY seq")
	if err != nil {
		return fmt.Errorf("query combinations: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var (
			seq       int
			path, raw string
		)
		if err := rows.Scan(&seq, &path, &raw); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		control, err := oj.ParseString(raw)
		if err != nil {
			return fmt.Errorf("parse control for %s: %w", path, err)
		}
		if err := fn(seq, path, control); err != nil {
			return err
		}
	}
	return rows.Err()
}
