package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aanlab/aang/internal/gender"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testRecords() []Record {
	return []Record{
		{Name: "Smith, John", Gender: gender.Male, Source: gender.SourceManual, ClassifiedAt: testTime},
		{Name: "Doe, Jane", Gender: gender.Female, Source: gender.SourceStatistical, ClassifiedAt: testTime},
		{Name: "Li, X.", Gender: gender.Unknown, Source: gender.SourceNone, Detail: "can't classify", ClassifiedAt: testTime},
	}
}

// setupTestDB creates a database holding testRecords.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, rec := range testRecords() {
		if err := db.Put(ctx, rec); err != nil {
			t.Fatalf("Put(%q) error = %v", rec.Name, err)
		}
	}
	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
}

func TestDB_GetPut(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.Get(ctx, "Doe, Jane")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(testRecords()[1], got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	// Upsert replaces the earlier answer
	updated := Record{Name: "Doe, Jane", Gender: gender.Male, Source: gender.SourceNamsor, ClassifiedAt: testTime.Add(time.Hour)}
	if err := db.Put(ctx, updated); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err = db.Get(ctx, "Doe, Jane")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Errorf("Get() after upsert mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_GetNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Get(context.Background(), "Nobody, Here")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDB_List(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	all, err := db.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, r := range all {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"Doe, Jane", "Li, X.", "Smith, John"}, names); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	female := gender.Female
	fs, err := db.List(ctx, &female)
	if err != nil {
		t.Fatalf("List(female) error = %v", err)
	}
	if len(fs) != 1 || fs[0].Name != "Doe, Jane" {
		t.Errorf("List(female) = %v, want only Doe, Jane", fs)
	}
}

func TestDB_Counts(t *testing.T) {
	db := setupTestDB(t)

	c, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	want := Counts{Female: 1, Male: 1, Unknown: 1}
	if c != want {
		t.Errorf("Counts() = %+v, want %+v", c, want)
	}
	if c.Total() != 3 {
		t.Errorf("Total() = %d, want 3", c.Total())
	}
}

func TestDB_Runs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := NewRun(testTime)
	first.FinishedAt = testTime.Add(time.Minute)
	first.Authors, first.Classified, first.Unknown = 10, 8, 2

	second := NewRun(testTime.Add(time.Hour))
	second.FinishedAt = testTime.Add(2 * time.Hour)

	for _, r := range []Run{first, second} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if diff := cmp.Diff([]Run{second, first}, runs); diff != "" {
		t.Errorf("Runs() mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_RebuildFromJSONL(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "authors.jsonl")
	fresh := []Record{
		{Name: "Ivanova, Elena", Gender: gender.Female, Source: gender.SourceSuffix, ClassifiedAt: testTime},
	}
	if err := WriteAll(path, fresh); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	n, err := db.RebuildFromJSONL(ctx, path)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if n != 1 {
		t.Errorf("RebuildFromJSONL() = %d, want 1", n)
	}

	all, err := db.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff(fresh, all); diff != "" {
		t.Errorf("List() after rebuild mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_RebuildFromJSONL_MissingFile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	before, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	n, err := db.RebuildFromJSONL(ctx, filepath.Join(t.TempDir(), "typo.jsonl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("RebuildFromJSONL() = %d, %v; want os.ErrNotExist", n, err)
	}

	after, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Counts() changed after failed rebuild (-before +after):\n%s", diff)
	}
}

func TestDB_KeepsSubSecondTimestamps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	rec := Record{Name: "Ivanova, Elena", Gender: gender.Female, Source: gender.SourceSuffix, ClassifiedAt: at}
	if err := db.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := db.Get(ctx, rec.Name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.ClassifiedAt.Equal(at) {
		t.Errorf("ClassifiedAt = %v, want %v", got.ClassifiedAt, at)
	}

	// Export and rebuild keep the same instant
	path := filepath.Join(t.TempDir(), "authors.jsonl")
	if err := WriteAll(path, []Record{got}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if _, err := db.RebuildFromJSONL(ctx, path); err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	got, err = db.Get(ctx, rec.Name)
	if err != nil {
		t.Fatalf("Get() after rebuild error = %v", err)
	}
	if !got.ClassifiedAt.Equal(at) {
		t.Errorf("ClassifiedAt after rebuild = %v, want %v", got.ClassifiedAt, at)
	}
}

func TestOpen_SelectsSQLite(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "genders.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.(*DB); !ok {
		t.Errorf("Open() returned %T, want *DB", s)
	}
}

func TestKnown(t *testing.T) {
	db := setupTestDB(t)

	got, err := Known(context.Background(), db)
	if err != nil {
		t.Fatalf("Known() error = %v", err)
	}
	want := map[string]gender.Gender{"Smith, John": gender.Male, "Doe, Jane": gender.Female}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Known() mismatch (-want +got):\n%s", diff)
	}
}
