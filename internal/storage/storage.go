// Package storage persists classified authors in SQLite or Postgres and
// exchanges them as JSONL.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aanlab/aang/internal/gender"
)

// ErrNotFound is returned by Get when no record exists for a name.
var ErrNotFound = errors.New("author not found")

// Record is the stored classification of one author.
type Record struct {
	Name         string        `json:"name"`
	Gender       gender.Gender `json:"gender"`
	Source       gender.Source `json:"source"`
	Detail       string        `json:"detail,omitempty"`
	ClassifiedAt time.Time     `json:"classified_at"`
}

// FromResult converts a cascade result into a record stamped with now.
func FromResult(r gender.Result, now time.Time) Record {
	return Record{
		Name:         r.Name,
		Gender:       r.Gender,
		Source:       r.Source,
		Detail:       r.Detail,
		ClassifiedAt: now.UTC(),
	}
}

// Result converts the record back into a cascade result.
func (r Record) Result() gender.Result {
	return gender.Result{Name: r.Name, Gender: r.Gender, Source: r.Source, Detail: r.Detail}
}

// Counts holds the number of stored authors per gender.
type Counts struct {
	Female  int `json:"female"`
	Male    int `json:"male"`
	Unknown int `json:"unknown"`
}

// Total returns the number of stored authors.
func (c Counts) Total() int {
	return c.Female + c.Male + c.Unknown
}

func (c *Counts) add(g gender.Gender, n int) {
	switch g {
	case gender.Female:
		c.Female += n
	case gender.Male:
		c.Male += n
	default:
		c.Unknown += n
	}
}

// Run records one pass of the corpus pipeline.
type Run struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Authors    int       `json:"authors"`
	Classified int       `json:"classified"`
	Unknown    int       `json:"unknown"`
}

// NewRun starts a run with a fresh id.
func NewRun(now time.Time) Run {
	return Run{ID: uuid.New(), StartedAt: now.UTC()}
}

// Store is implemented by every storage backend.
type Store interface {
	Get(ctx context.Context, name string) (Record, error)
	Put(ctx context.Context, rec Record) error
	// List returns records ordered by name. A nil filter returns every record.
	List(ctx context.Context, filter *gender.Gender) ([]Record, error)
	Counts(ctx context.Context) (Counts, error)
	SaveRun(ctx context.Context, run Run) error
	Runs(ctx context.Context) ([]Run, error)
	Close() error
}

// Open selects a backend from dsn: postgres:// or postgresql:// URLs open a
// Postgres pool, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenDB(dsn)
}

// Known returns the stored records with a male or female label, keyed by name.
func Known(ctx context.Context, s Store) (map[string]gender.Gender, error) {
	recs, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]gender.Gender, len(recs))
	for _, r := range recs {
		if r.Gender.Known() {
			out[r.Name] = r.Gender
		}
	}
	return out, nil
}
