package namsor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aanlab/aang/internal/name"
)

const (
	// BaseURL is the Namsor v2 API base URL.
	BaseURL = "https://v2.namsor.com/NamSorAPIv2"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps well inside the free-tier quota.
	RateLimit = 2.0
)

// GenderResponse is the Namsor answer for one first/last name pair.
type GenderResponse struct {
	ID           string  `json:"id,omitempty"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	LikelyGender string  `json:"likelyGender"`
	GenderScale  float64 `json:"genderScale"`
	Score        float64 `json:"score"`
	Probability  float64 `json:"probabilityCalibrated"`
}

// Client is a rate-limited HTTP client for the Namsor gender API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
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

// NewClient creates a new Namsor client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	if key := os.Getenv("NAMSOR_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SplitAuthor prepares an author name for the API: the name is unescaped and
// folded to Latin, the first name is its first token without initials and the
// last name is the part before the comma.
func SplitAuthor(author string) (first, last string, ok bool) {
	folded := name.Fold(name.Unescape(author))
	if !strings.Contains(folded, ",") {
		return "", "", false
	}
	first = name.FirstToken(folded)
	last = name.LastName(folded)
	return first, last, first != "" && last != ""
}

// Gender asks Namsor for the likely gender of a first/last name pair.
func (c *Client) Gender(ctx context.Context, first, last string) (*GenderResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api2/json/gender/%s/%s",
		c.baseURL, url.PathEscape(first), url.PathEscape(last))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return nil, fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == 429:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == 404:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			Name:       last + ", " + first,
		}
	}

	var gr GenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &gr, nil
}

// Classify looks up an author name and returns a cache entry for it.
func (c *Client) Classify(ctx context.Context, author string) (Entry, error) {
	first, last, ok := SplitAuthor(author)
	if !ok {
		return Entry{}, fmt.Errorf("cannot split author name %q", author)
	}
	gr, err := c.Gender(ctx, first, last)
	if err != nil {
		return Entry{}, err
	}
	g := gr.LikelyGender
	if g == "" {
		g = "unknown"
	}
	return Entry{Name: strings.TrimSpace(author), Gender: g, Scale: gr.GenderScale}, nil
}
