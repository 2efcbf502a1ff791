package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Scryfall API endpoint.
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "PreconAnalyzer/1.0"
	requestTimeout   = 30 * time.Second
	maxErrorBody     = 4 << 10
	maxCardBody      = 1 << 20
)

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin Scryfall API client. It performs exactly one HTTP request
// per call; pacing and retry policy belong to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new Scryfall API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = requestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(id))

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	return &card, nil
}

// GetCardByName retrieves a card by exact name, optionally restricted to a set.
func (c *Client) GetCardByName(ctx context.Context, name, setCode string) (*Card, error) {
	q := url.Values{}
	q.Set("exact", name)
	if setCode != "" {
		q.Set("set", strings.ToLower(setCode))
	}
	endpoint := fmt.Sprintf("%s/cards/named?%s", c.baseURL, q.Encode())

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	return &card, nil
}

// doRequest performs a single GET request and decodes a 200 response into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// A body cut off at the limit fails to decode.
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxCardBody)).Decode(result); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return nil

	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: resp.Header.Get("Retry-After")}

	case http.StatusNotFound:
		return &NotFoundError{URL: endpoint}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			if apiErr.Status == 0 {
				apiErr.Status = resp.StatusCode
			}
			return &apiErr
		}

		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
