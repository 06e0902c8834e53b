// Package pipeline classifies every author of the AAN corpus and stores the
// answers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aanlab/aang/internal/aan"
	"github.com/aanlab/aang/internal/cascade"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/namelist"
	"github.com/aanlab/aang/internal/storage"
)

const (
	// DefaultAfter skips papers published in or before this year.
	DefaultAfter = 2008
	// DefaultWorkers bounds concurrent cascade calls.
	DefaultWorkers = 4
)

// Classifier runs the cascade for a single author.
type Classifier interface {
	Classify(ctx context.Context, author string, opts cascade.Options) (gender.Result, error)
}

// Fallback gets a second look at authors the cascade left unknown.
type Fallback interface {
	Resolve(author string) (gender.Result, bool)
}

// Config controls a corpus run.
type Config struct {
	After   int
	Face    bool
	Workers int
	Force   bool // reclassify authors already in the store
}

// Summary describes a finished run.
type Summary struct {
	Run      storage.Run `json:"run"`
	Skipped  int         `json:"skipped"`
	Known    int         `json:"known_list"`
	Cascade  int         `json:"cascade"`
	Fallback int         `json:"fallback"`
	Unknown  []string    `json:"unknown"`
}

// Pipeline ties the cascade to a store.
type Pipeline struct {
	classifier Classifier
	store      storage.Store
	known      namelist.Gendered
	fallbacks  []Fallback
	cfg        Config
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithKnown sets the lists of authors whose gender is already known.
func WithKnown(g namelist.Gendered) Option {
	return func(p *Pipeline) { p.known = g }
}

// WithFallbacks adds resolvers tried, in order, on cascade misses.
func WithFallbacks(fb ...Fallback) Option {
	return func(p *Pipeline) { p.fallbacks = append(p.fallbacks, fb...) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a pipeline. Zero config fields take their defaults.
func New(c Classifier, s storage.Store, cfg Config, opts ...Option) *Pipeline {
	if cfg.After == 0 {
		cfg.After = DefaultAfter
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	p := &Pipeline{
		classifier: c,
		store:      s,
		known:      namelist.Gendered{Female: namelist.NewSet(), Male: namelist.NewSet()},
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run classifies the authors of papers published after cfg.After.
func (p *Pipeline) Run(ctx context.Context, papers []aan.Paper) (Summary, error) {
	log := zap.L().Named("pipeline")
	authors := aan.Authors(papers, p.cfg.After)
	sum := Summary{Run: storage.NewRun(p.now())}
	sum.Run.Authors = len(authors)
	log.Info("starting run",
		zap.String("run", sum.Run.ID.String()),
		zap.Int("papers", len(papers)),
		zap.Int("authors", len(authors)),
		zap.Int("after", p.cfg.After))

	var pending []string
	for _, a := range authors {
		if !p.cfg.Force {
			_, err := p.store.Get(ctx, a)
			if err == nil {
				sum.Skipped++
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return sum, err
			}
		}
		if g, ok := p.knownGender(a); ok {
			rec := storage.Record{Name: a, Gender: g, Source: gender.SourceKnownList, ClassifiedAt: p.now().UTC()}
			if err := p.store.Put(ctx, rec); err != nil {
				return sum, err
			}
			sum.Known++
			continue
		}
		pending = append(pending, a)
	}

	var (
		mu      sync.Mutex
		unknown []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, a := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.classifier.Classify(gctx, a, cascade.Options{Face: p.cfg.Face})
			if err != nil {
				return err
			}
			fromFallback := false
			if !res.Known() {
				res, fromFallback = p.fallback(a, res)
			}
			if !res.Known() {
				log.Debug("unclassified", zap.String("author", a), zap.String("detail", res.Detail))
				mu.Lock()
				unknown = append(unknown, a)
				mu.Unlock()
				return nil
			}
			if err := p.store.Put(gctx, storage.FromResult(res, p.now())); err != nil {
				return err
			}
			mu.Lock()
			if fromFallback {
				sum.Fallback++
			} else {
				sum.Cascade++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("classifying authors: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	sort.Strings(unknown)
	sum.Unknown = unknown
	sum.Run.Classified = sum.Known + sum.Cascade + sum.Fallback
	sum.Run.Unknown = len(unknown)
	sum.Run.FinishedAt = p.now().UTC()
	if err := p.store.SaveRun(ctx, sum.Run); err != nil {
		return sum, err
	}

	log.Info("finished run",
		zap.String("run", sum.Run.ID.String()),
		zap.Int("skipped", sum.Skipped),
		zap.Int("known_list", sum.Known),
		zap.Int("cascade", sum.Cascade),
		zap.Int("fallback", sum.Fallback),
		zap.Int("unknown", len(unknown)))
	return sum, nil
}

func (p *Pipeline) knownGender(author string) (gender.Gender, bool) {
	switch {
	case p.known.Female.Has(author):
		return gender.Female, true
	case p.known.Male.Has(author):
		return gender.Male, true
	}
	return gender.Unknown, false
}

func (p *Pipeline) fallback(author string, miss gender.Result) (gender.Result, bool) {
	for _, fb := range p.fallbacks {
		if res, ok := fb.Resolve(author); ok && res.Known() {
			return res, true
		}
	}
	return miss, false
}

// WriteUnknowns writes the unclassified authors one per line.
func WriteUnknowns(path string, names []string) error {
	return namelist.WriteLines(path, names)
}
