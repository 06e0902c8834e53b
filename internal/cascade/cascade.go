// Package cascade implements the author-gender cascade: a fixed sequence of
// name lists, statistical detectors and remote lookups where the first
// confident answer wins.
//
// Order of precedence for an author "Last, First":
//
//  1. first names of two characters or fewer are rejected
//  2. first names decided earlier in this process are reused
//  3. manual lists, statistical detector, Indian lists, census lists, gpeters
//  4. Slavic surname suffix (-ov / -ova)
//  5. cached Namsor answers
//  6. image search + face attributes, vetoed by a weak gpeters signal
package cascade

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/face"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/gpeters"
	"github.com/aanlab/aang/internal/name"
	"github.com/aanlab/aang/internal/namelist"
)

// minFirstNameLen is the shortest first name worth classifying.
const minFirstNameLen = 3

// FirstNameDetector classifies a bare first name.
type FirstNameDetector interface {
	Detect(first string) gender.Gender
}

// RatioLookup fetches a gpeters-style verdict for a first name.
type RatioLookup interface {
	Lookup(ctx context.Context, first string) (gpeters.Result, error)
}

// AuthorLookup returns a cached answer for a full author name.
type AuthorLookup interface {
	Lookup(author string) gender.Gender
}

// FaceClassifier guesses gender from photos of an author.
type FaceClassifier interface {
	Classify(ctx context.Context, author string) (face.Match, error)
}

// Options control a single classification.
type Options struct {
	Face bool // allow the image search + face attribute stage
}

// Classifier runs the cascade. It is safe for concurrent use.
type Classifier struct {
	manual       namelist.Gendered
	indian       namelist.Gendered
	census       *namelist.Gendered
	detector     FirstNameDetector
	ratios       RatioLookup
	namsor       AuthorLookup
	faces        FaceClassifier
	minRatio     float64
	faceMinRatio float64

	mu       sync.RWMutex
	memo     map[string]gender.Gender
	ratioMu  sync.Mutex
	ratioHit map[string]gpeters.Result
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithManual replaces the built-in manual lists.
func WithManual(g namelist.Gendered) Option {
	return func(c *Classifier) { c.manual = g }
}

// WithIndian sets the Indian first-name lists.
func WithIndian(g namelist.Gendered) Option {
	return func(c *Classifier) { c.indian = g }
}

// WithCensus enables the census first-name stage.
func WithCensus(g namelist.Gendered) Option {
	return func(c *Classifier) { c.census = &g }
}

// WithDetector sets the statistical first-name detector.
func WithDetector(d FirstNameDetector) Option {
	return func(c *Classifier) { c.detector = d }
}

// WithRatios sets the gpeters lookup.
func WithRatios(r RatioLookup) Option {
	return func(c *Classifier) { c.ratios = r }
}

// WithNamsor sets the Namsor answer cache.
func WithNamsor(l AuthorLookup) Option {
	return func(c *Classifier) { c.namsor = l }
}

// WithFace sets the face classifier used when Options.Face is set.
func WithFace(f FaceClassifier) Option {
	return func(c *Classifier) { c.faces = f }
}

// WithRatioThresholds overrides the gpeters ratios required on their own and
// when vetoing a face answer.
func WithRatioThresholds(alone, veto float64) Option {
	return func(c *Classifier) {
		c.minRatio = alone
		c.faceMinRatio = veto
	}
}

// New creates a Classifier. Stages without a configured source are skipped.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		manual:       namelist.Manual(),
		indian:       namelist.Gendered{Female: namelist.NewSet(), Male: namelist.NewSet()},
		minRatio:     gpeters.DefaultMinRatio,
		faceMinRatio: gpeters.FaceMinRatio,
		memo:         make(map[string]gender.Gender),
		ratioHit:     make(map[string]gpeters.Result),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs the cascade for one author name. The returned error is
// non-nil only when ctx is done.
func (c *Classifier) Classify(ctx context.Context, author string, opts Options) (gender.Result, error) {
	escaped := name.Title(name.Unescape(author))
	first := name.FirstName(escaped)

	if name.Len(first) < minFirstNameLen {
		return gender.Unclassified(author, escaped+" too short"), nil
	}

	if g, ok := c.remembered(first); ok {
		return gender.Result{Name: author, Gender: g, Source: gender.SourceMemo, Detail: first + " known already"}, nil
	}

	r, err := c.firstNameMethods(ctx, first)
	if err != nil {
		return gender.Result{}, err
	}
	if r.Known() {
		c.remember(first, r.Gender)
		r.Name = author
		return r, nil
	}

	if g := suffixGender(name.LastName(escaped)); g.Known() {
		return gender.Result{Name: author, Gender: g, Source: gender.SourceSuffix, Detail: escaped + " found as Bulgarian"}, nil
	}

	if c.namsor != nil {
		if g := c.namsor.Lookup(author); g.Known() {
			return gender.Result{Name: author, Gender: g, Source: gender.SourceNamsor, Detail: author + " found with Namsor"}, nil
		}
	}

	if opts.Face && c.faces != nil {
		r, err := c.faceStage(ctx, author, escaped, first)
		if err != nil {
			if ctx.Err() != nil {
				return gender.Result{}, ctx.Err()
			}
			zap.L().Warn("cascade: face stage failed", zap.String("author", author), zap.Error(err))
		} else {
			return r, nil
		}
	}

	return gender.Unclassified(author, author+" can't classify"), nil
}

func (c *Classifier) firstNameMethods(ctx context.Context, first string) (gender.Result, error) {
	if c.manual.Female.Has(first) {
		return gender.Result{Gender: gender.Female, Source: gender.SourceManual, Detail: first + " manual"}, nil
	}
	if c.manual.Male.Has(first) {
		return gender.Result{Gender: gender.Male, Source: gender.SourceManual, Detail: first + " manual"}, nil
	}

	if c.detector != nil {
		if g := c.detector.Detect(first); g.Known() {
			return gender.Result{Gender: g, Source: gender.SourceStatistical, Detail: first + " found with name statistics"}, nil
		}
	}

	if g := listGender(c.indian, first); g.Known() {
		return gender.Result{Gender: g, Source: gender.SourceIndian, Detail: first + " found as indian"}, nil
	}

	if c.census != nil {
		if g := listGender(*c.census, first); g.Known() {
			return gender.Result{Gender: g, Source: gender.SourceCensus, Detail: first + " found in census"}, nil
		}
	}

	if c.ratios != nil {
		res, err := c.ratio(ctx, name.Fold(first))
		if err != nil && ctx.Err() != nil {
			return gender.Result{}, ctx.Err()
		}
		if g := res.Decide(c.minRatio); g.Known() {
			return gender.Result{Gender: g, Source: gender.SourceGPeters, Detail: first + " found with gPeters"}, nil
		}
	}

	return gender.Result{Gender: gender.Unknown, Source: gender.SourceNone}, nil
}

// faceStage accepts a face answer unless gpeters leans the other way.
func (c *Classifier) faceStage(ctx context.Context, author, escaped, first string) (gender.Result, error) {
	gp := gender.Unknown
	if c.ratios != nil {
		res, _ := c.ratio(ctx, first)
		gp = res.Decide(c.faceMinRatio)
	}

	m, err := c.faces.Classify(ctx, escaped)
	if err != nil {
		return gender.Result{}, err
	}

	switch {
	case m.Gender == gender.Male && gp != gender.Female:
		return gender.Result{Name: author, Gender: gender.Male, Source: gender.SourceFace, Detail: fmt.Sprintf("%s %s face", m.URL, escaped)}, nil
	case m.Gender == gender.Female && gp != gender.Male:
		return gender.Result{Name: author, Gender: gender.Female, Source: gender.SourceFace, Detail: fmt.Sprintf("%s %s face", m.URL, escaped)}, nil
	}
	return gender.Unclassified(author, escaped+" gp and face disagree"), nil
}

// ratio looks up a first name once per process. Failed lookups are logged
// and not cached.
func (c *Classifier) ratio(ctx context.Context, first string) (gpeters.Result, error) {
	c.ratioMu.Lock()
	res, ok := c.ratioHit[first]
	c.ratioMu.Unlock()
	if ok {
		return res, nil
	}

	res, err := c.ratios.Lookup(ctx, first)
	if err != nil {
		zap.L().Debug("cascade: gpeters lookup failed", zap.String("first", first), zap.Error(err))
		return gpeters.Result{Gender: gender.Unknown}, err
	}

	c.ratioMu.Lock()
	c.ratioHit[first] = res
	c.ratioMu.Unlock()
	return res, nil
}

func (c *Classifier) remembered(first string) (gender.Gender, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.memo[first]
	return g, ok
}

func (c *Classifier) remember(first string, g gender.Gender) {
	c.mu.Lock()
	c.memo[first] = g
	c.mu.Unlock()
}

// Remembered returns the number of memoised first names.
func (c *Classifier) Remembered() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memo)
}

func listGender(g namelist.Gendered, first string) gender.Gender {
	switch {
	case g.Male != nil && g.Male.Has(first):
		return gender.Male
	case g.Female != nil && g.Female.Has(first):
		return gender.Female
	}
	return gender.Unknown
}

// suffixGender recognises Slavic surnames: -ov is male, -ova female.
func suffixGender(last string) gender.Gender {
	r := []rune(last)
	n := len(r)
	if n >= 2 && string(r[n-2:]) == "ov" {
		return gender.Male
	}
	if n >= 3 && string(r[n-3:]) == "ova" {
		return gender.Female
	}
	return gender.Unknown
}
