// Package catalog looks up application display names in the Steam store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the store answers but has no data for the id.
var ErrNotFound = errors.New("app not found in store catalog")

// Looker resolves an id to its display name.
type Looker interface {
	AppName(ctx context.Context, id string) (string, error)
}

// Client queries the store appdetails endpoint.
type Client struct {
	baseURL    string
	country    string
	language   string
	userAgent  string
	httpClient *http.Client
}

var _ Looker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a store catalog client.
func New(baseURL, country, language, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	client := &Client{
		baseURL:    baseURL,
		country:    strings.TrimSpace(country),
		language:   strings.TrimSpace(language),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type appDetails struct {
	Success bool `json:"success"`
	Data    struct {
		Name string `json:"name"`
	} `json:"data"`
}

// AppName fetches the display name for id. A successful response without a
// usable name returns ErrNotFound.
func (c *Client) AppName(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("app id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}
	params := endpoint.Query()
	params.Set("appids", id)
	if c.country != "" {
		params.Set("cc", c.country)
	}
	if c.language != "" {
		params.Set("l", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload map[string]appDetails
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode catalog response: %w", err)
	}
	details, ok := payload[id]
	if !ok || !details.Success {
		return "", fmt.Errorf("app %s: %w", id, ErrNotFound)
	}
	name := strings.TrimSpace(details.Data.Name)
	if name == "" {
		return "", fmt.Errorf("app %s has no name: %w", id, ErrNotFound)
	}
	return name, nil
}
