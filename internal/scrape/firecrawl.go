package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.firecrawl.dev/v2/scrape"

// ErrTimeout marks a scrape aborted by the configured deadline.
var ErrTimeout = errors.New("firecrawl request timeout")

// ErrEmptyResult is returned when Firecrawl answers without markdown content.
var ErrEmptyResult = errors.New("firecrawl returned no markdown")

// Client fetches job postings through the Firecrawl scrape API and returns
// the page as markdown.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs a Firecrawl client bounded by timeout.
func NewClient(apiKey string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("FIRECRAWL_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Markdown scrapes url and returns its markdown rendition.
func (c *Client) Markdown(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("firecrawl response parse: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Error
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("firecrawl error: %s", msg)
	}
	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = "scrape unsuccessful"
		}
		return "", fmt.Errorf("firecrawl error: %s", msg)
	}

	markdown := strings.TrimSpace(parsed.Data.Markdown)
	if markdown == "" {
		return "", ErrEmptyResult
	}
	return markdown, nil
}
