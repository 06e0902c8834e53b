package cascade

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aanlab/aang/internal/face"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/gpeters"
	"github.com/aanlab/aang/internal/namelist"
)

type mapDetector map[string]gender.Gender

func (m mapDetector) Detect(first string) gender.Gender {
	if g, ok := m[first]; ok {
		return g
	}
	return gender.Unknown
}

type fakeRatios struct {
	mu      sync.Mutex
	results map[string]gpeters.Result
	calls   []string
	err     error
}

func (f *fakeRatios) Lookup(_ context.Context, first string) (gpeters.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, first)
	if f.err != nil {
		return gpeters.Result{}, f.err
	}
	return f.results[first], nil
}

type mapAuthors map[string]gender.Gender

func (m mapAuthors) Lookup(author string) gender.Gender {
	if g, ok := m[author]; ok {
		return g
	}
	return gender.Unknown
}

type fakeFace struct {
	match face.Match
	err   error
	calls int
}

func (f *fakeFace) Classify(_ context.Context, author string) (face.Match, error) {
	f.calls++
	return f.match, f.err
}

func TestClassify_Stages(t *testing.T) {
	ratios := &fakeRatios{results: map[string]gpeters.Result{
		"Jonas": {Gender: gender.Male, Ratio: 27},
		"Andre": {Gender: gender.Male, Ratio: 2},
	}}
	c := New(
		WithDetector(mapDetector{"Laura": gender.Female}),
		WithIndian(namelist.Gendered{Male: namelist.NewSet("Rahul"), Female: namelist.NewSet("Priya")}),
		WithCensus(namelist.Gendered{Male: namelist.NewSet("Elmer"), Female: namelist.NewSet()}),
		WithRatios(ratios),
		WithNamsor(mapAuthors{"Zhang, Wei": gender.Male}),
	)

	tests := []struct {
		name       string
		author     string
		wantG      gender.Gender
		wantSource gender.Source
	}{
		{"too short", "Smith, J.", gender.Unknown, gender.SourceNone},
		{"no comma", "Madonna", gender.Unknown, gender.SourceNone},
		{"manual female", "Dupont, Stéphane", gender.Female, gender.SourceManual},
		{"manual male after title case", "garcia, josé", gender.Male, gender.SourceManual},
		{"statistical", "Rossi, Laura M.", gender.Female, gender.SourceStatistical},
		{"indian", "Sharma, Rahul", gender.Male, gender.SourceIndian},
		{"indian female", "Gupta, Priya", gender.Female, gender.SourceIndian},
		{"census", "Fudd, Elmer", gender.Male, gender.SourceCensus},
		{"gpeters folded", "Berg, Jonas", gender.Male, gender.SourceGPeters},
		{"suffix male", "Petrov, Zdravko", gender.Male, gender.SourceSuffix},
		{"suffix female", "Ivanova, Zdravka", gender.Female, gender.SourceSuffix},
		{"namsor", "Zhang, Wei", gender.Male, gender.SourceNamsor},
		{"weak gpeters rejected", "Silva, Andre", gender.Unknown, gender.SourceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.author, Options{})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Gender != tt.wantG || got.Source != tt.wantSource {
				t.Errorf("Classify(%q) = %v/%s (%s), want %v/%s",
					tt.author, got.Gender, got.Source, got.Detail, tt.wantG, tt.wantSource)
			}
			if got.Name != tt.author {
				t.Errorf("Name = %q, want %q", got.Name, tt.author)
			}
		})
	}
}

func TestClassify_Memo(t *testing.T) {
	c := New(WithDetector(mapDetector{"Laura": gender.Female}))

	first, _ := c.Classify(context.Background(), "Rossi, Laura", Options{})
	if first.Source != gender.SourceStatistical {
		t.Fatalf("first call source = %s", first.Source)
	}
	second, _ := c.Classify(context.Background(), "Bianchi, Laura", Options{})
	if second.Gender != gender.Female || second.Source != gender.SourceMemo {
		t.Errorf("second call = %v/%s, want female/memo", second.Gender, second.Source)
	}
	if c.Remembered() != 1 {
		t.Errorf("Remembered() = %d, want 1", c.Remembered())
	}
}

func TestClassify_UnknownNotMemoised(t *testing.T) {
	c := New()
	c.Classify(context.Background(), "Petrov, Zdravko", Options{})
	if c.Remembered() != 0 {
		t.Errorf("suffix results must not be memoised by first name")
	}
}

func TestClassify_SuffixBeforeNamsor(t *testing.T) {
	c := New(WithNamsor(mapAuthors{"Petrova, Zdravka": gender.Male}))
	got, _ := c.Classify(context.Background(), "Petrova, Zdravka", Options{})
	if got.Source != gender.SourceSuffix || got.Gender != gender.Female {
		t.Errorf("Classify() = %v/%s, want female/suffix", got.Gender, got.Source)
	}
}

func TestClassify_FaceStage(t *testing.T) {
	tests := []struct {
		name    string
		ratio   gpeters.Result
		match   face.Match
		faceErr error
		wantG   gender.Gender
		wantSrc gender.Source
	}{
		{
			name:    "face male, no gpeters signal",
			match:   face.Match{URL: "u", Gender: gender.Male},
			wantG:   gender.Male,
			wantSrc: gender.SourceFace,
		},
		{
			name:    "face female, gpeters weakly female",
			ratio:   gpeters.Result{Gender: gender.Female, Ratio: 1.5},
			match:   face.Match{URL: "u", Gender: gender.Female},
			wantG:   gender.Female,
			wantSrc: gender.SourceFace,
		},
		{
			name:    "gpeters vetoes face",
			ratio:   gpeters.Result{Gender: gender.Male, Ratio: 1.3},
			match:   face.Match{URL: "u", Gender: gender.Female},
			wantG:   gender.Unknown,
			wantSrc: gender.SourceNone,
		},
		{
			name:    "ratio below veto threshold is ignored",
			ratio:   gpeters.Result{Gender: gender.Male, Ratio: 1.1},
			match:   face.Match{URL: "u", Gender: gender.Female},
			wantG:   gender.Female,
			wantSrc: gender.SourceFace,
		},
		{
			name:    "no face found",
			match:   face.Match{Gender: gender.Unknown},
			wantG:   gender.Unknown,
			wantSrc: gender.SourceNone,
		},
		{
			name:    "face error falls through",
			faceErr: errors.New("quota"),
			wantG:   gender.Unknown,
			wantSrc: gender.SourceNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratios := &fakeRatios{results: map[string]gpeters.Result{"Kim": tt.ratio}}
			f := &fakeFace{match: tt.match, err: tt.faceErr}
			c := New(WithRatios(ratios), WithFace(f))

			got, err := c.Classify(context.Background(), "Lee, Kim", Options{Face: true})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Gender != tt.wantG || got.Source != tt.wantSrc {
				t.Errorf("Classify() = %v/%s (%s), want %v/%s", got.Gender, got.Source, got.Detail, tt.wantG, tt.wantSrc)
			}
			if f.calls != 1 {
				t.Errorf("face calls = %d, want 1", f.calls)
			}
		})
	}
}

func TestClassify_FaceDisabled(t *testing.T) {
	f := &fakeFace{match: face.Match{Gender: gender.Male}}
	c := New(WithFace(f))
	got, _ := c.Classify(context.Background(), "Lee, Kim", Options{})
	if got.Known() || f.calls != 0 {
		t.Errorf("face stage ran without Options.Face: %+v, calls=%d", got, f.calls)
	}
}

func TestClassify_GPetersErrorIsUnknown(t *testing.T) {
	c := New(WithRatios(&fakeRatios{err: errors.New("timeout")}))
	got, err := c.Classify(context.Background(), "Lee, Kim", Options{})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Known() {
		t.Errorf("Classify() = %+v, want unknown", got)
	}
}

func TestClassify_RatioLookupsCached(t *testing.T) {
	ratios := &fakeRatios{results: map[string]gpeters.Result{}}
	c := New(WithRatios(ratios))
	c.Classify(context.Background(), "Lee, Kim", Options{})
	c.Classify(context.Background(), "Park, Kim", Options{})
	if len(ratios.calls) != 1 {
		t.Errorf("gpeters calls = %v, want one", ratios.calls)
	}
}

func TestClassify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ratios := &fakeRatios{err: context.Canceled}
	c := New(WithRatios(ratios))
	if _, err := c.Classify(ctx, "Lee, Kim", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Classify() error = %v, want context.Canceled", err)
	}
}

func TestSuffixGender(t *testing.T) {
	tests := []struct {
		last string
		want gender.Gender
	}{
		{"Petrov", gender.Male},
		{"Petrova", gender.Female},
		{"Ivanov", gender.Male},
		{"Nova", gender.Unknown},
		{"O", gender.Unknown},
		{"", gender.Unknown},
	}
	for _, tt := range tests {
		if got := suffixGender(tt.last); got != tt.want {
			t.Errorf("suffixGender(%q) = %v, want %v", tt.last, got, tt.want)
		}
	}
}

func TestClassify_Concurrent(t *testing.T) {
	c := New(WithDetector(mapDetector{"Laura": gender.Female}))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Classify(context.Background(), "Rossi, Laura", Options{})
		}()
	}
	wg.Wait()
	if c.Remembered() != 1 {
		t.Errorf("Remembered() = %d, want 1", c.Remembered())
	}
}
