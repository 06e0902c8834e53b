// Package gpeters scrapes the gpeters.com baby-name gender predictor.
package gpeters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/aanlab/aang/internal/gender"
)

const (
	// BaseURL is the gpeters.com name lookup page.
	BaseURL = "http://www.gpeters.com/names/baby-names.php"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 20 * time.Second

	// RateLimit keeps the scraper polite.
	RateLimit = 1.0

	// DefaultMinRatio is the ratio required when gpeters is the only signal.
	DefaultMinRatio = 4.0

	// FaceMinRatio is the weaker ratio used to veto a face-detection answer.
	FaceMinRatio = 1.2
)

// ErrUnexpectedPage indicates the page lacked the expected verdict markup.
var ErrUnexpectedPage = errors.New("unexpected gpeters page")

// ratioPattern extracts N from "Based on popular usage, it is N times more
// common for ..." once markup is stripped.
var ratioPattern = regexp.MustCompile(`(?i)it is\s*([0-9]+(?:\.[0-9]+)?)\s*times more common`)

// Result is a parsed gpeters verdict.
type Result struct {
	Gender gender.Gender
	Ratio  float64 // how many times more common the name is for Gender
}

// Decide returns the verdict when its ratio reaches minRatio.
func (r Result) Decide(minRatio float64) gender.Gender {
	if r.Gender == gender.Unknown || r.Ratio < minRatio {
		return gender.Unknown
	}
	return r.Gender
}

// Client fetches gpeters pages.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom page URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit overrides the request rate.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a new gpeters scraper.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches and parses the verdict for a first name.
func (c *Client) Lookup(ctx context.Context, first string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "?name=" + url.QueryEscape(first)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetching gpeters page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetching gpeters page: HTTP %d", resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, 1<<20))
}

// Parse reads a gpeters result page. A page without a verdict yields an
// Unknown result; a verdict without a readable ratio is an error.
func Parse(r io.Reader) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parsing HTML: %w", err)
	}

	verdict := ""
	doc.Find("b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.HasPrefix(text, "It's a") || strings.HasPrefix(text, "It’s a") {
			verdict = text
			return false
		}
		return true
	})
	if verdict == "" {
		return Result{Gender: gender.Unknown}, nil
	}

	g := gender.Female
	if strings.Contains(verdict, "boy") {
		g = gender.Male
	}

	m := ratioPattern.FindStringSubmatch(doc.Text())
	if m == nil {
		return Result{}, fmt.Errorf("%w: no usage ratio", ErrUnexpectedPage)
	}
	ratio, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: ratio %q", ErrUnexpectedPage, m[1])
	}

	return Result{Gender: g, Ratio: ratio}, nil
}
