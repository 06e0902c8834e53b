package face

import (
	"context"
	"errors"
	"testing"

	"github.com/aanlab/aang/internal/bing"
	"github.com/aanlab/aang/internal/gender"
)

type fakeSearch struct {
	results map[string][]bing.Image
	errs    map[string]error
	queries []string
}

func (f *fakeSearch) Images(_ context.Context, q string) ([]bing.Image, error) {
	f.queries = append(f.queries, q)
	if err := f.errs[q]; err != nil {
		return nil, err
	}
	return f.results[q], nil
}

type fakeDetect map[string]string

func (f fakeDetect) DetectGender(_ context.Context, u string) (string, error) {
	if g, ok := f[u]; ok {
		if g == "error" {
			return "", errors.New("boom")
		}
		return g, nil
	}
	return "", nil
}

type fakeAff map[string]string

func (f fakeAff) Find(a string) (string, bool) {
	v, ok := f[a]
	return v, ok
}

func imgs(urls ...string) []bing.Image {
	out := make([]bing.Image, len(urls))
	for i, u := range urls {
		out[i] = bing.Image{ContentURL: u}
	}
	return out
}

func TestClassify_ResearchQueryWins(t *testing.T) {
	s := &fakeSearch{results: map[string][]bing.Image{
		"Smith, Jane research":   imgs("r1"),
		"Smith, Jane university": imgs("u1"),
	}}
	d := fakeDetect{"r1": "female", "u1": "male"}

	m, err := NewClassifier(s, d).Classify(context.Background(), "Smith, Jane")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if m.Gender != gender.Female || m.URL != "r1" {
		t.Errorf("Classify() = %+v, want female from r1", m)
	}
	if len(s.queries) != 1 {
		t.Errorf("queries = %v, want only the research query", s.queries)
	}
}

func TestClassify_FallsBackThroughSuffixes(t *testing.T) {
	s := &fakeSearch{
		results: map[string][]bing.Image{
			"Lee, Kim edu": imgs("e1"),
		},
		errs: map[string]error{
			"Lee, Kim research": errors.New("quota"),
		},
	}
	d := fakeDetect{"e1": "male"}

	m, err := NewClassifier(s, d).Classify(context.Background(), "Lee, Kim")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if m.Gender != gender.Male {
		t.Errorf("Classify() = %+v, want male", m)
	}
}

func TestClassify_PlainSearchExaminesThree(t *testing.T) {
	s := &fakeSearch{results: map[string][]bing.Image{
		"Doe, Alex": imgs("p1", "p2", "p3", "p4"),
	}}
	d := fakeDetect{"p1": "error", "p4": "female"}

	m, err := NewClassifier(s, d).Classify(context.Background(), "Doe, Alex")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if m.Gender != gender.Unknown {
		t.Errorf("Classify() = %+v, fourth hit must be ignored", m)
	}
}

func TestClassify_PlainSearchError(t *testing.T) {
	s := &fakeSearch{errs: map[string]error{"Doe, Alex": errors.New("down")}}
	_, err := NewClassifier(s, fakeDetect{}).Classify(context.Background(), "Doe, Alex")
	if err == nil {
		t.Fatal("Classify() expected error from plain search")
	}
}

func TestClassify_Affiliation(t *testing.T) {
	s := &fakeSearch{results: map[string][]bing.Image{
		"Doe, Alex Stanford University": imgs("a1"),
	}}
	d := fakeDetect{"a1": "male"}
	c := NewClassifier(s, d, WithAffiliations(fakeAff{"Doe, Alex": "Stanford University"}))

	m, err := c.Classify(context.Background(), "Doe, Alex")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if m.Gender != gender.Male {
		t.Errorf("Classify() = %+v, want male via affiliation query", m)
	}
}

func TestClassify_NoFaceIsUnknown(t *testing.T) {
	s := &fakeSearch{results: map[string][]bing.Image{
		"Doe, Alex": imgs("p1"),
	}}

	m, err := NewClassifier(s, fakeDetect{}).Classify(context.Background(), "Doe, Alex")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if m.Gender != gender.Unknown || m.URL != "" {
		t.Errorf("Classify() = %+v, want Unknown with no URL", m)
	}
}
