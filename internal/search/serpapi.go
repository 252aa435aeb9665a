// ABOUTME: Privacy policy URL discovery through the SerpAPI Google search endpoint.
// ABOUTME: Returns the first organic result whose link mentions privacy or policy.
package search

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

var (
	// ErrNotConfigured means no API key is available.
	ErrNotConfigured = errors.New("search not configured: missing API key")
	// ErrNoResult means no result link looked like a policy page.
	ErrNoResult = errors.New("no policy url found")
)

// DefaultEndpoint is the SerpAPI search URL.
const DefaultEndpoint = "https://serpapi.com/search"

const resultCount = 5

// Client queries SerpAPI.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient creates a search client. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

type organicResult struct {
	Link string `json:"link"`
}

// FindPolicyURL searches for "<name> privacy policy" and picks the first policy-looking link.
func (c *Client) FindPolicyURL(ctx context.Context, name string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("search name must not be empty")
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", name+" privacy policy")
	params.Set("api_key", c.apiKey)
	params.Set("num", fmt.Sprint(resultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("search API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse search response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("search API error: %s", result.Error)
	}

	for _, r := range result.OrganicResults {
		link := strings.ToLower(r.Link)
		if strings.Contains(link, "privacy") || strings.Contains(link, "policy") {
			return r.Link, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNoResult, name)
}
