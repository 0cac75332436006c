package provider

import (
	"log/slog"
	"net/http"
	"time"
)

// Client provides access to the market-data provider REST APIs.
type Client struct {
	baseURL     string
	listingURL  string
	fallbackURL string
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new provider client. baseURL serves quotes and news;
// the listing endpoints default to baseURL unless overridden.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		listingURL: baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithListingURL sets the primary full-listing host.
func WithListingURL(url string) ClientOption {
	return func(c *Client) {
		c.listingURL = url
	}
}

// WithFallbackURL sets the secondary full-listing host.
func WithFallbackURL(url string) ClientOption {
	return func(c *Client) {
		c.fallbackURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
