// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Cache for track tags, keyed by artist and track name
	tagCache map[string][]Tag
	cacheMu  sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, defaults to the public endpoint
}

// Tag represents a Last.fm tag.
type Tag struct {
	Name  string
	Count int // Tag weight, 0-100 relative to the most used tag
}

// getTopTagsResponse represents the response from track.getTopTags API.
type getTopTagsResponse struct {
	TopTags struct {
		Tag []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tag"`
	} `json:"toptags"`
}

// apiError represents an error response from Last.fm API.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ws.audioscrobbler.com/2.0/"
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tagCache:   make(map[string][]Tag),
	}, nil
}

// GetTopTags retrieves top tags for a track from Last.fm. Results are cached per track.
// Reference: https://www.last.fm/api/show/track.getTopTags
func (c *Client) GetTopTags(ctx context.Context, trackName, artistName string, limit int) ([]Tag, error) {
	if trackName == "" || artistName == "" {
		return nil, errors.New("track name and artist name are required")
	}

	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	cacheKey := strings.ToLower(artistName + "\x00" + trackName)
	c.cacheMu.RLock()
	tags, ok := c.tagCache[cacheKey]
	c.cacheMu.RUnlock()
	if ok {
		zlog.Debug().Msgf("using cached tags for track: %s - %s", artistName, trackName)
		return truncate(tags, limit), nil
	}

	params := url.Values{}
	params.Set("method", "track.getTopTags")
	params.Set("artist", artistName)
	params.Set("track", trackName)
	params.Set("autocorrect", "1")

	var response getTopTagsResponse
	if err := c.get(ctx, params, &response); err != nil {
		return nil, err
	}

	tags = make([]Tag, 0, len(response.TopTags.Tag))
	for _, t := range response.TopTags.Tag {
		tags = append(tags, Tag{Name: t.Name, Count: t.Count})
	}

	c.cacheMu.Lock()
	c.tagCache[cacheKey] = tags
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("cached tags for track: %s - %s (count: %d)", artistName, trackName, len(tags))

	return truncate(tags, limit), nil
}

// get performs a signed GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiErr.Error, apiErr.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("last.fm API returned HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to parse %s response", params.Get("method")))
	}
	return nil
}

func truncate(tags []Tag, limit int) []Tag {
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return append([]Tag(nil), tags...)
}
