package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the tool server's JSON endpoints. Pass the host application's
// instrumented HTTP client so tool calls carry trace context downstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a tool client for the given base URL
// (e.g. "http://localhost:8001").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Weather fetches the weather report for a city.
func (c *Client) Weather(ctx context.Context, city string) (Weather, error) {
	var report Weather
	err := c.get(ctx, "/tools/weather", url.Values{"city": {city}}, &report)
	return report, err
}

// Attractions fetches the attraction list for a city.
func (c *Client) Attractions(ctx context.Context, city string) ([]Attraction, error) {
	var result struct {
		Attractions []Attraction `json:"attractions"`
	}
	if err := c.get(ctx, "/tools/attractions", url.Values{"city": {city}}, &result); err != nil {
		return nil, err
	}
	return result.Attractions, nil
}

// Convert converts an amount between two currencies.
func (c *Client) Convert(ctx context.Context, from, to string, amount float64) (Conversion, error) {
	var result Conversion
	err := c.get(ctx, "/tools/currency", url.Values{
		"from":   {from},
		"to":     {to},
		"amount": {strconv.FormatFloat(amount, 'f', -1, 64)},
	}, &result)
	return result, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tools: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tools: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tools: %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tools: decode response: %w", err)
	}
	return nil
}
