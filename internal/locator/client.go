package locator

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

// Client queries a Nominatim-compatible geocoding endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a geocoder client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a free-text place name to its best match. The raw
// response body is returned alongside for caching.
func (c *Client) Search(ctx context.Context, query string) (Fix, []byte, error) {
	u := fmt.Sprintf("%s/search?format=jsonv2&limit=1&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Fix{}, nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Fix{}, nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fix{}, nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fix{}, nil, fmt.Errorf("reading search response: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Fix{}, nil, fmt.Errorf("decoding search response: %w", err)
	}
	if len(results) == 0 {
		return Fix{}, nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Fix{}, nil, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Fix{}, nil, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}

	return Fix{
		Query:       query,
		DisplayName: results[0].DisplayName,
		Lat:         lat,
		Lon:         lon,
	}, body, nil
}
