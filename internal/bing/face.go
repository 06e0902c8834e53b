package bing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

type detectedFace struct {
	FaceID         string `json:"faceId,omitempty"`
	FaceAttributes struct {
		Gender string `json:"gender"`
	} `json:"faceAttributes"`
}

// FaceClient is a rate-limited Azure Face detection client.
type FaceClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	key        string
	endpoint   string
}

// FaceOption configures a FaceClient.
type FaceOption func(*FaceClient)

// WithFaceKey sets the subscription key.
func WithFaceKey(key string) FaceOption {
	return func(c *FaceClient) {
		c.key = key
	}
}

// WithFaceEndpoint sets the regional endpoint.
func WithFaceEndpoint(u string) FaceOption {
	return func(c *FaceClient) {
		c.endpoint = u
	}
}

// WithFaceRateLimit overrides the request rate.
func WithFaceRateLimit(perSecond float64) FaceOption {
	return func(c *FaceClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewFaceClient creates a new face detection client.
func NewFaceClient(opts ...FaceOption) *FaceClient {
	c := &FaceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		endpoint:   FaceEndpoint,
	}
	if key := os.Getenv("FACE_API_KEY"); key != "" {
		c.key = key
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectGender returns the gender attribute of the first face found in the
// image at imageURL, or "" when the image contains no face.
func (c *FaceClient) DetectGender(ctx context.Context, imageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(map[string]string{"url": imageURL})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	u := c.endpoint + "/face/v1.0/detect?returnFaceId=true&returnFaceLandmarks=false&returnFaceAttributes=gender"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(keyHeader, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "face"); err != nil {
		return "", err
	}

	var faces []detectedFace
	if err := json.NewDecoder(resp.Body).Decode(&faces); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(faces) == 0 {
		return "", nil
	}
	return faces[0].FaceAttributes.Gender, nil
}
