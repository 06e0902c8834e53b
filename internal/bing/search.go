package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Image is one image search hit.
type Image struct {
	Name       string `json:"name,omitempty"`
	ContentURL string `json:"contentUrl"`
	HostPage   string `json:"hostPageUrl,omitempty"`
}

type searchResponse struct {
	Value []Image `json:"value"`
}

// SearchClient is a rate-limited Bing image search client.
type SearchClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	key        string
	endpoint   string
}

// SearchOption configures a SearchClient.
type SearchOption func(*SearchClient)

// WithSearchKey sets the subscription key.
func WithSearchKey(key string) SearchOption {
	return func(c *SearchClient) {
		c.key = key
	}
}

// WithSearchEndpoint sets a custom endpoint (for testing).
func WithSearchEndpoint(u string) SearchOption {
	return func(c *SearchClient) {
		c.endpoint = u
	}
}

// WithSearchRateLimit overrides the request rate.
func WithSearchRateLimit(perSecond float64) SearchOption {
	return func(c *SearchClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewSearchClient creates a new image search client.
func NewSearchClient(opts ...SearchOption) *SearchClient {
	c := &SearchClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		endpoint:   SearchEndpoint,
	}
	if key := os.Getenv("BING_SEARCH_KEY"); key != "" {
		c.key = key
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Images searches for images matching query.
func (c *SearchClient) Images(ctx context.Context, query string) ([]Image, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.endpoint + "/v7.0/images/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(keyHeader, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "image search"); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return sr.Value, nil
}
