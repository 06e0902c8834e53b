package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/aanlab/aang/internal/aan"
	"github.com/aanlab/aang/internal/cascade"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/initials"
	"github.com/aanlab/aang/internal/namelist"
	"github.com/aanlab/aang/internal/storage"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type memStore struct {
	mu   sync.Mutex
	recs map[string]storage.Record
	runs []storage.Run
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]storage.Record)}
}

func (m *memStore) Get(_ context.Context, name string) (storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[name]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memStore) Put(_ context.Context, rec storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.Name] = rec
	return nil
}

func (m *memStore) List(_ context.Context, filter *gender.Gender) ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Record
	for _, r := range m.recs {
		if filter == nil || r.Gender == *filter {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Counts(ctx context.Context) (storage.Counts, error) {
	var c storage.Counts
	recs, _ := m.List(ctx, nil)
	for _, r := range recs {
		switch r.Gender {
		case gender.Female:
			c.Female++
		case gender.Male:
			c.Male++
		default:
			c.Unknown++
		}
	}
	return c, nil
}

func (m *memStore) SaveRun(_ context.Context, run storage.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) Runs(context.Context) ([]storage.Run, error) { return m.runs, nil }
func (m *memStore) Close() error                                 { return nil }

// tableClassifier answers from a fixed table.
type tableClassifier struct {
	answers map[string]gender.Gender
	calls   atomic.Int32
	face    atomic.Bool
}

func (c *tableClassifier) Classify(_ context.Context, author string, opts cascade.Options) (gender.Result, error) {
	c.calls.Add(1)
	if opts.Face {
		c.face.Store(true)
	}
	g, ok := c.answers[author]
	if !ok {
		return gender.Unclassified(author, "can't classify"), nil
	}
	return gender.Result{Name: author, Gender: g, Source: gender.SourceManual}, nil
}

func corpus() []aan.Paper {
	return []aan.Paper{
		{ID: "old", Year: 2005, Authors: []string{"Old, Author"}},
		{ID: "a", Year: 2010, Authors: []string{"Smith, John", "Doe, Jane", "Known, Female"}},
		{ID: "b", Year: 2012, Authors: []string{"Zed, Q.", "Doe, Jane", "Abc, X."}},
	}
}

func TestPipeline_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	cls := &tableClassifier{answers: map[string]gender.Gender{
		"Smith, John": gender.Male,
		"Doe, Jane":   gender.Female,
	}}
	known := namelist.Gendered{Female: namelist.NewSet("Known, Female"), Male: namelist.NewSet()}

	p := New(cls, store, Config{Workers: 2, Face: true}, WithKnown(known), WithClock(func() time.Time { return fixedNow }))
	sum, err := p.Run(context.Background(), corpus())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Abc, X.", "Zed, Q."}, sum.Unknown); diff != "" {
		t.Errorf("Unknown mismatch (-want +got):\n%s", diff)
	}
	if sum.Known != 1 || sum.Cascade != 2 || sum.Skipped != 0 {
		t.Errorf("Summary = %+v, want 1 known, 2 cascade", sum)
	}
	if got := cls.calls.Load(); got != 4 {
		t.Errorf("classifier calls = %d, want 4", got)
	}
	if !cls.face.Load() {
		t.Error("Face option not passed to the classifier")
	}

	rec, err := store.Get(context.Background(), "Known, Female")
	if err != nil {
		t.Fatalf("Get(Known, Female) error = %v", err)
	}
	if rec.Source != gender.SourceKnownList || rec.Gender != gender.Female {
		t.Errorf("known record = %+v", rec)
	}
	if _, err := store.Get(context.Background(), "Old, Author"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("authors of papers before the cutoff should be ignored")
	}
	if _, err := store.Get(context.Background(), "Zed, Q."); !errors.Is(err, storage.ErrNotFound) {
		t.Error("unknown authors should not be stored")
	}

	if len(store.runs) != 1 {
		t.Fatalf("saved %d runs, want 1", len(store.runs))
	}
	run := store.runs[0]
	if run.Authors != 5 || run.Classified != 3 || run.Unknown != 2 {
		t.Errorf("run = %+v", run)
	}
}

func TestPipeline_SkipsStored(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := newMemStore()
	_ = store.Put(ctx, storage.Record{Name: "Smith, John", Gender: gender.Male, Source: gender.SourceNamsor})
	cls := &tableClassifier{answers: map[string]gender.Gender{"Smith, John": gender.Female}}

	sum, err := New(cls, store, Config{}).Run(ctx, corpus())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", sum.Skipped)
	}
	rec, _ := store.Get(ctx, "Smith, John")
	if rec.Gender != gender.Male {
		t.Error("stored answer was overwritten without Force")
	}

	sum, err = New(cls, store, Config{Force: true}).Run(ctx, corpus())
	if err != nil {
		t.Fatalf("Run(force) error = %v", err)
	}
	if sum.Skipped != 0 {
		t.Errorf("Skipped with Force = %d, want 0", sum.Skipped)
	}
	rec, _ = store.Get(ctx, "Smith, John")
	if rec.Gender != gender.Female {
		t.Error("Force did not reclassify the stored author")
	}
}

func TestPipeline_Fallbacks(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	known := namelist.Gendered{
		Female: namelist.NewSet("Zed, Quinn"),
		Male:   namelist.NewSet(),
	}
	p := New(&tableClassifier{}, store, Config{},
		WithFallbacks(InitialsFallback{Index: initials.NewIndex(known)}))

	sum, err := p.Run(context.Background(), []aan.Paper{{ID: "x", Year: 2014, Authors: []string{"Zed, Q.", "Abc, X."}}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Fallback != 1 {
		t.Errorf("Fallback = %d, want 1", sum.Fallback)
	}
	rec, err := store.Get(context.Background(), "Zed, Q.")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Gender != gender.Female || rec.Source != gender.SourceInitials {
		t.Errorf("fallback record = %+v", rec)
	}
	if diff := cmp.Diff([]string{"Abc, X."}, sum.Unknown); diff != "" {
		t.Errorf("Unknown mismatch (-want +got):\n%s", diff)
	}
}

// cancellingClassifier cancels the run on its first call.
type cancellingClassifier struct {
	cancel context.CancelFunc
}

func (c *cancellingClassifier) Classify(ctx context.Context, author string, _ cascade.Options) (gender.Result, error) {
	c.cancel()
	<-ctx.Done()
	return gender.Result{}, ctx.Err()
}

func TestPipeline_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := newMemStore()

	_, err := New(&cancellingClassifier{cancel: cancel}, store, Config{Workers: 1}).Run(ctx, corpus())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(store.runs) != 0 {
		t.Error("cancelled run should not be recorded")
	}
}

func TestWriteUnknowns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.txt")
	if err := WriteUnknowns(path, []string{"A, B", "C, D"}); err != nil {
		t.Fatalf("WriteUnknowns() error = %v", err)
	}
	set, err := namelist.ReadSet(path)
	if err != nil {
		t.Fatalf("ReadSet() error = %v", err)
	}
	if !set.Has("A, B") || !set.Has("C, D") {
		t.Errorf("ReadSet() = %v", set)
	}
}
