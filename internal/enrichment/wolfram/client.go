// Package wolfram implements the enrichment provider against the
// Wolfram|Alpha Short Answers API.
package wolfram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/enrichment"
	"github.com/nutriadvisor/nutriadvisor/internal/provider/resilience"
)

const (
	// ProviderName identifies this enrichment provider.
	ProviderName = "wolframalpha"

	// DefaultBaseURL is the Short Answers API endpoint.
	DefaultBaseURL = "https://api.wolframalpha.com/v1/result"

	// maxAnswerBytes bounds the response body read. Short answers are a
	// sentence at most; anything larger is not a short answer.
	maxAnswerBytes = 4096
)

// ClientConfig holds configuration for the Wolfram|Alpha client.
type ClientConfig struct {
	// AppID is the Wolfram|Alpha application ID (required).
	AppID string

	// BaseURL is the API endpoint (optional, defaults to the Short
	// Answers API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Wolfram|Alpha Short Answers API client.
type Client struct {
	appID      string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Wolfram|Alpha client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		appID:      cfg.AppID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Query sends a single natural-language question and returns the plain-text
// short answer. The API answers with 501 when it understood the request but
// has no short answer; that surfaces as enrichment.ErrNoAnswer.
func (c *Client) Query(ctx context.Context, question string) (string, error) {
	params := url.Values{}
	params.Set("appid", c.appID)
	params.Set("i", question)
	params.Set("units", "metric")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("question", question).Msg("enrichment query failed")
		return "", fmt.Errorf("%w: %w", enrichment.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotImplemented:
		// 501: input understood, no short answer available
		return "", enrichment.ErrNoAnswer
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: unexpected status code %d", enrichment.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAnswerBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", enrichment.ErrUnavailable, err)
	}

	answer := strings.TrimSpace(string(body))
	if answer == "" {
		return "", enrichment.ErrEmptyAnswer
	}

	c.logger.Debug().
		Str("question", question).
		Int("answer_len", len(answer)).
		Msg("enrichment query answered")

	return answer, nil
}
