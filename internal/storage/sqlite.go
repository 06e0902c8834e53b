package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aanlab/aang/internal/gender"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

var _ Store = (*DB)(nil)

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS authors (
			name TEXT PRIMARY KEY,
			gender INTEGER NOT NULL,
			source TEXT NOT NULL,
			detail TEXT,
			classified_at INTEGER NOT NULL -- unix nanoseconds
		);

		CREATE INDEX IF NOT EXISTS idx_authors_gender ON authors(gender);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			authors INTEGER NOT NULL,
			classified INTEGER NOT NULL,
			unknown INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the record for name, or ErrNotFound.
func (d *DB) Get(ctx context.Context, name string) (Record, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT name, gender, source, detail, classified_at FROM authors WHERE name = ?`, name)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying author: %w", err)
	}
	return rec, nil
}

// Put inserts or replaces the record for rec.Name.
func (d *DB) Put(ctx context.Context, rec Record) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO authors (name, gender, source, detail, classified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			gender = excluded.gender,
			source = excluded.source,
			detail = excluded.detail,
			classified_at = excluded.classified_at
	`, rec.Name, int(rec.Gender), string(rec.Source), rec.Detail, rec.ClassifiedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("storing author %q: %w", rec.Name, err)
	}
	return nil
}

// List returns stored records ordered by name.
func (d *DB) List(ctx context.Context, filter *gender.Gender) ([]Record, error) {
	query := `SELECT name, gender, source, detail, classified_at FROM authors`
	var args []any
	if filter != nil {
		query += ` WHERE gender = ?`
		args = append(args, int(*filter))
	}
	query += ` ORDER BY name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Counts returns the number of stored authors per gender.
func (d *DB) Counts(ctx context.Context) (Counts, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT gender, COUNT(*) FROM authors GROUP BY gender`)
	if err != nil {
		return Counts{}, fmt.Errorf("counting authors: %w", err)
	}
	defer rows.Close()

	var c Counts
	for rows.Next() {
		var g, n int
		if err := rows.Scan(&g, &n); err != nil {
			return Counts{}, fmt.Errorf("scanning count: %w", err)
		}
		c.add(gender.Gender(g), n)
	}
	return c, rows.Err()
}

// SaveRun records a finished pipeline run.
func (d *DB) SaveRun(ctx context.Context, run Run) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, authors, classified, unknown)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Authors, run.Classified, run.Unknown)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Runs returns recorded runs, most recent first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, authors, classified, unknown
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id              string
			started, finish int64
			run             Run
		)
		if err := rows.Scan(&id, &started, &finish, &run.Authors, &run.Classified, &run.Unknown); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", id, err)
		}
		run.StartedAt = time.Unix(started, 0).UTC()
		run.FinishedAt = time.Unix(finish, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RebuildFromJSONL clears the authors table and reloads it from a JSONL file.
// A missing file is an error and leaves the table untouched.
func (d *DB) RebuildFromJSONL(ctx context.Context, jsonlPath string) (int, error) {
	if _, err := os.Stat(jsonlPath); err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM authors"); err != nil {
		return 0, fmt.Errorf("clearing authors table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO authors (name, gender, source, detail, classified_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.Name, int(rec.Gender), string(rec.Source), rec.Detail, rec.ClassifiedAt.UnixNano()); err != nil {
			return 0, fmt.Errorf("inserting author %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(recs), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec    Record
		g      int
		source string
		detail sql.NullString
		at     int64
	)
	if err := row.Scan(&rec.Name, &g, &source, &detail, &at); err != nil {
		return Record{}, err
	}
	rec.Gender = gender.Gender(g)
	rec.Source = gender.Source(source)
	rec.Detail = detail.String
	rec.ClassifiedAt = time.Unix(0, at).UTC()
	return rec, nil
}
