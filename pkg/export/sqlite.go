package export

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smantzavinos/tally/pkg/model"
)

// SnapshotSchemaVersion is bumped whenever the snapshot tables change.
const SnapshotSchemaVersion = 1

const snapshotSchema = `
CREATE TABLE counters (
    position INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    value INTEGER NOT NULL,
    style TEXT NOT NULL
);
CREATE TABLE meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// WriteSQLite writes a queryable snapshot of the counters to a fresh
// database at path, replacing any existing file.
func WriteSQLite(counters []model.Counter, path string) error {
	// Remove existing database if present
	_ = os.Remove(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertCounters(db, counters); err != nil {
		return fmt.Errorf("insert counters: %w", err)
	}
	if err := insertMeta(db, counters); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	return db.Close()
}

func insertCounters(db *sql.DB, counters []model.Counter) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO counters (position, id, title, value, style) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range counters {
		if _, err := stmt.Exec(i, c.ID, c.Title, c.Value, string(c.Style)); err != nil {
			return fmt.Errorf("counter %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func insertMeta(db *sql.DB, counters []model.Counter) error {
	sum := model.Summarize(counters)
	meta := map[string]string{
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"schema_version": strconv.Itoa(SnapshotSchemaVersion),
		"counter_count":  strconv.Itoa(sum.Count),
		"total":          strconv.Itoa(sum.Total),
		"mean":           strconv.FormatFloat(sum.Mean, 'f', 2, 64),
		"max":            strconv.Itoa(sum.Max),
	}
	for key, value := range meta {
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
