package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanlab/aang/internal/gender"
)

// PGStore keeps records in a Postgres database.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

const pgSchema = `
	CREATE TABLE IF NOT EXISTS authors (
		name TEXT PRIMARY KEY,
		gender SMALLINT NOT NULL,
		source TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		classified_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_authors_gender ON authors(gender);
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		authors INTEGER NOT NULL,
		classified INTEGER NOT NULL,
		unknown INTEGER NOT NULL
	);
`

// OpenPostgres connects to url and creates the schema if needed.
func OpenPostgres(ctx context.Context, url string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the pool.
func (p *PGStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PGStore) Get(ctx context.Context, name string) (Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT name, gender, source, detail, classified_at FROM authors WHERE name = $1`, name)
	if err != nil {
		return Record{}, fmt.Errorf("querying author: %w", err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanPGRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying author: %w", err)
	}
	return rec, nil
}

func (p *PGStore) Put(ctx context.Context, rec Record) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO authors (name, gender, source, detail, classified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			gender = EXCLUDED.gender,
			source = EXCLUDED.source,
			detail = EXCLUDED.detail,
			classified_at = EXCLUDED.classified_at
	`, rec.Name, int16(rec.Gender), string(rec.Source), rec.Detail, rec.ClassifiedAt)
	if err != nil {
		return fmt.Errorf("storing author %q: %w", rec.Name, err)
	}
	return nil
}

func (p *PGStore) List(ctx context.Context, filter *gender.Gender) ([]Record, error) {
	query := `SELECT name, gender, source, detail, classified_at FROM authors`
	var args []any
	if filter != nil {
		query += ` WHERE gender = $1`
		args = append(args, int16(*filter))
	}
	query += ` ORDER BY name`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	recs, err := pgx.CollectRows(rows, scanPGRecord)
	if err != nil {
		return nil, fmt.Errorf("scanning authors: %w", err)
	}
	return recs, nil
}

func (p *PGStore) Counts(ctx context.Context) (Counts, error) {
	rows, err := p.pool.Query(ctx, `SELECT gender, COUNT(*) FROM authors GROUP BY gender`)
	if err != nil {
		return Counts{}, fmt.Errorf("counting authors: %w", err)
	}
	var c Counts
	var g int16
	var n int64
	_, err = pgx.ForEachRow(rows, []any{&g, &n}, func() error {
		c.add(gender.Gender(g), int(n))
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("scanning counts: %w", err)
	}
	return c, nil
}

func (p *PGStore) SaveRun(ctx context.Context, run Run) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO runs (id, started_at, finished_at, authors, classified, unknown)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.StartedAt, run.FinishedAt, run.Authors, run.Classified, run.Unknown)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

func (p *PGStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, started_at, finished_at, authors, classified, unknown
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Run, error) {
		var r Run
		err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Authors, &r.Classified, &r.Unknown)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}
	return runs, nil
}

func scanPGRecord(row pgx.CollectableRow) (Record, error) {
	var (
		rec    Record
		g      int16
		source string
	)
	if err := row.Scan(&rec.Name, &g, &source, &rec.Detail, &rec.ClassifiedAt); err != nil {
		return Record{}, err
	}
	rec.Gender = gender.Gender(g)
	rec.Source = gender.Source(source)
	rec.ClassifiedAt = rec.ClassifiedAt.UTC()
	return rec, nil
}
