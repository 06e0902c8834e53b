// Package face guesses an author's gender from photos: it searches for
// images of the author and asks a face-attribute service about them.
package face

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/bing"
	"github.com/aanlab/aang/internal/gender"
)

// academicSuffixes narrow the image search to profile photos. They are tried
// in order before the bare name.
var academicSuffixes = []string{"research", "university", "edu"}

// maxPlainResults bounds how many hits of the bare-name search are examined.
const maxPlainResults = 3

// Searcher finds images for a query.
type Searcher interface {
	Images(ctx context.Context, query string) ([]bing.Image, error)
}

// Detector reports the gender attribute ("male", "female" or "") of the face
// in an image.
type Detector interface {
	DetectGender(ctx context.Context, imageURL string) (string, error)
}

// AffiliationFinder returns an author's affiliation.
type AffiliationFinder interface {
	Find(author string) (string, bool)
}

// Match is the outcome of a face lookup.
type Match struct {
	URL    string        `json:"url,omitempty"`
	Gender gender.Gender `json:"gender"`
}

// Classifier combines image search and face detection.
type Classifier struct {
	search       Searcher
	detect       Detector
	affiliations AffiliationFinder
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAffiliations appends the author's affiliation to the bare-name search.
func WithAffiliations(af AffiliationFinder) Option {
	return func(c *Classifier) {
		c.affiliations = af
	}
}

// NewClassifier creates a face classifier.
func NewClassifier(s Searcher, d Detector, opts ...Option) *Classifier {
	c := &Classifier{search: s, detect: d}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify looks for a photo of author. Searches qualified with an academic
// suffix are tried first and their failures are ignored; the bare-name search
// then examines up to three hits. When no face is found the Match has
// Gender Unknown and an empty URL.
func (c *Classifier) Classify(ctx context.Context, author string) (Match, error) {
	log := zap.L().With(zap.String("author", author))

	for _, suffix := range academicSuffixes {
		if err := ctx.Err(); err != nil {
			return Match{Gender: gender.Unknown}, err
		}
		images, err := c.search.Images(ctx, author+" "+suffix)
		if err != nil || len(images) == 0 {
			log.Debug("face: qualified search failed", zap.String("suffix", suffix), zap.Error(err))
			continue
		}
		if m, ok := c.detectOne(ctx, images[0].ContentURL); ok {
			return m, nil
		}
	}

	query := author
	if c.affiliations != nil {
		if aff, ok := c.affiliations.Find(author); ok {
			query += " " + aff
		}
	}

	images, err := c.search.Images(ctx, query)
	if err != nil {
		return Match{Gender: gender.Unknown}, fmt.Errorf("searching images for %q: %w", query, err)
	}
	for i := 0; i < len(images) && i < maxPlainResults; i++ {
		if m, ok := c.detectOne(ctx, images[i].ContentURL); ok {
			return m, nil
		}
	}
	return Match{Gender: gender.Unknown}, nil
}

func (c *Classifier) detectOne(ctx context.Context, imageURL string) (Match, bool) {
	if imageURL == "" {
		return Match{}, false
	}
	g, err := c.detect.DetectGender(ctx, imageURL)
	if err != nil {
		zap.L().Debug("face: detection failed", zap.String("url", imageURL), zap.Error(err))
		return Match{}, false
	}
	parsed, err := gender.Parse(g)
	if err != nil || !parsed.Known() {
		return Match{}, false
	}
	return Match{URL: imageURL, Gender: parsed}, true
}
