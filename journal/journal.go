// Package journal provides a SQLite-backed log of executed commands.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Entry is one executed command.
type Entry struct {
	ID   int64     `json:"id"`
	Path []string  `json:"path"`
	Args []string  `json:"args"`
	At   time.Time `json:"at"`
}

// Command returns the entry as it would be typed at the root prompt.
func (e Entry) Command() string {
	words := make([]string, 0, len(e.Path)+len(e.Args))
	for i, p := range e.Path {
		if i == 0 && len(e.Path) > 1 {
			continue // root
		}
		words = append(words, strings.ToLower(p))
	}
	return strings.Join(append(words, e.Args...), " ")
}

// Journal records and lists executed commands.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal database at dir/journal.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, "journal.db"))
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	path        TEXT NOT NULL,
	args        TEXT NOT NULL,
	executed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS executions_path ON executions (path);
`

func (j *Journal) migrate() error {
	_, err := j.db.Exec(schema)
	return err
}

// Record appends one execution.
func (j *Journal) Record(path, args []string) error {
	if args == nil {
		args = []string{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(
		`INSERT INTO executions (path, args, executed_at) VALUES (?,?,?)`,
		strings.Join(path, "/"), string(data), j.now().UnixNano(),
	)
	return err
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(
		`SELECT id, path, args, executed_at FROM executions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			path, args string
			at         int64
		)
		if err := rows.Scan(&e.ID, &path, &args, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(args), &e.Args); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		e.Path = strings.Split(path, "/")
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns how often each command path was executed, keyed by the
// path joined with spaces.
func (j *Journal) Counts() (map[string]int, error) {
	rows, err := j.db.Query(`SELECT path, COUNT(*) FROM executions GROUP BY path ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var (
			path string
			n    int
		)
		if err := rows.Scan(&path, &n); err != nil {
			return nil, err
		}
		counts[strings.ReplaceAll(path, "/", " ")] = n
	}
	return counts, rows.Err()
}

// Clear removes all entries.
func (j *Journal) Clear() error {
	_, err := j.db.Exec(`DELETE FROM executions`)
	return err
}
