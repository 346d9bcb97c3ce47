// Package feedapi talks to an Adafruit-IO-compatible feed ingestion API.
package feedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"lapsecam/internal/config"
	"lapsecam/internal/network"
)

var ErrFeedNotFound = errors.New("feed not found")

const requestTimeout = 30 * time.Second

// Feed is the subset of the feed resource the agent cares about.
type Feed struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

type Client interface {
	// GetFeed fetches a feed by key. Returns ErrFeedNotFound on 404.
	GetFeed(ctx context.Context, key string) (Feed, error)
	// CreateFeed creates a new feed with the given name.
	CreateFeed(ctx context.Context, name string) (Feed, error)
	// EnsureFeed fetches the feed, creating it when it does not exist yet.
	EnsureFeed(ctx context.Context, key string) (Feed, error)
	// SendData appends a datum to the feed.
	SendData(ctx context.Context, feedKey, value string) error
}

type client struct {
	baseURL       string
	username      string
	apiKey        string
	clientFactory *network.ClientFactory
}

func New(baseURL, username, apiKey string, clientFactory *network.ClientFactory) Client {
	return &client{
		baseURL:       baseURL,
		username:      username,
		apiKey:        apiKey,
		clientFactory: clientFactory,
	}
}

func (c *client) GetFeed(ctx context.Context, key string) (Feed, error) {
	var feed Feed
	url := fmt.Sprintf("%s/api/v2/%s/feeds/%s", c.baseURL, c.username, key)
	if err := c.do(ctx, http.MethodGet, url, nil, &feed); err != nil {
		return Feed{}, err
	}
	return feed, nil
}

func (c *client) CreateFeed(ctx context.Context, name string) (Feed, error) {
	var feed Feed
	url := fmt.Sprintf("%s/api/v2/%s/feeds", c.baseURL, c.username)
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, url, body, &feed); err != nil {
		return Feed{}, err
	}
	return feed, nil
}

func (c *client) EnsureFeed(ctx context.Context, key string) (Feed, error) {
	feed, err := c.GetFeed(ctx, key)
	if err == nil {
		return feed, nil
	}
	if !errors.Is(err, ErrFeedNotFound) {
		return Feed{}, err
	}
	return c.CreateFeed(ctx, key)
}

func (c *client) SendData(ctx context.Context, feedKey, value string) error {
	url := fmt.Sprintf("%s/api/v2/%s/feeds/%s/data", c.baseURL, c.username, feedKey)
	body := map[string]string{"value": value}
	return c.do(ctx, http.MethodPost, url, body, nil)
}

func (c *client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("X-AIO-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.clientFactory.NewHTTPClient(requestTimeout)
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrFeedNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("feed api: HTTP %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
