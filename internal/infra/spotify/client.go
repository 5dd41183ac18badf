// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/osa030/tunetied/internal/domain/playlist"
	"github.com/osa030/tunetied/internal/domain/track"
)

const (
	playlistPageSize = 100 // Spotify API max per playlist items page
	userPageSize     = 50  // Spotify API max per user playlists page
	artistBatchSize  = 50  // Spotify API max IDs per artists request
)

var (
	// ErrInvalidPlaylist is returned when a playlist reference cannot be parsed.
	ErrInvalidPlaylist = errors.New("invalid playlist reference")
	// ErrNotFound marks 404 responses from Spotify.
	ErrNotFound = errors.New("spotify resource not found")
)

// Client is a Spotify API client.
type Client struct {
	api        *spotify.Client
	market     string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	Market            string
	RequestsPerSecond int
	MaxRetries        int
}

// Scopes are the OAuth scopes the recommender needs.
var Scopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserReadPrivate,
}

// New creates a new Spotify client authenticated by a refresh token.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(Scopes...),
	)

	// HTTP client refreshes the access token on demand
	httpClient := auth.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return newClient(spotify.New(httpClient), cfg), nil
}

// NewWithHTTPClient creates a client on an already authorized HTTP client.
// baseURL may be empty to use the public API.
func NewWithHTTPClient(httpClient *http.Client, baseURL string, cfg Config) *Client {
	var opts []spotify.ClientOption
	if baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(baseURL))
	}
	return newClient(spotify.New(httpClient, opts...), cfg)
}

func newClient(api *spotify.Client, cfg Config) *Client {
	market := cfg.Market
	if market == "" {
		market = "US"
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		api:        api,
		market:     market,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

// GetPlaylist retrieves playlist metadata without its tracks.
func (c *Client) GetPlaylist(ctx context.Context, ref string) (*playlist.Summary, error) {
	id, err := ParsePlaylistID(ref)
	if err != nil {
		return nil, err
	}

	var p *spotify.FullPlaylist
	err = c.call(ctx, func() error {
		var err error
		p, err = c.api.GetPlaylist(ctx, spotify.ID(id), spotify.Market(c.market))
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get playlist %s", id)
	}

	return &playlist.Summary{
		ID:         string(p.ID),
		Name:       p.Name,
		Owner:      p.Owner.DisplayName,
		TrackCount: int(p.Tracks.Total),
		URL:        PlaylistURL(string(p.ID)),
	}, nil
}

// GetPlaylistTracks retrieves all tracks of a playlist with their artist genres.
// Episodes and local files without an ID are skipped.
func (c *Client) GetPlaylistTracks(ctx context.Context, ref string) ([]track.Track, error) {
	id, err := ParsePlaylistID(ref)
	if err != nil {
		return nil, err
	}

	var tracks []track.Track
	offset := 0
	for {
		var page *spotify.PlaylistItemPage
		err := c.call(ctx, func() error {
			var err error
			page, err = c.api.GetPlaylistItems(ctx, spotify.ID(id),
				spotify.Limit(playlistPageSize),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			return err
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			t := c.convertTrack(item.Track.Track)
			t.AddedAt = item.AddedAt
			tracks = append(tracks, *t)
		}

		if len(page.Items) < playlistPageSize {
			break
		}
		offset += playlistPageSize
	}

	if err := c.attachGenres(ctx, tracks); err != nil {
		return nil, err
	}

	zlog.Debug().Msgf("fetched playlist tracks: playlist=%s count=%d", id, len(tracks))
	return tracks, nil
}

// ListPlaylists retrieves the current user's playlists.
func (c *Client) ListPlaylists(ctx context.Context) ([]playlist.Summary, error) {
	var result []playlist.Summary
	offset := 0
	for {
		var page *spotify.SimplePlaylistPage
		err := c.call(ctx, func() error {
			var err error
			page, err = c.api.CurrentUsersPlaylists(ctx,
				spotify.Limit(userPageSize),
				spotify.Offset(offset),
			)
			return err
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list playlists")
		}

		for _, p := range page.Playlists {
			if p.ID == "" || p.Name == "" {
				continue
			}
			result = append(result, playlist.Summary{
				ID:         string(p.ID),
				Name:       p.Name,
				Owner:      p.Owner.DisplayName,
				TrackCount: int(p.Tracks.Total),
				URL:        PlaylistURL(string(p.ID)),
			})
		}

		if len(page.Playlists) < userPageSize {
			break
		}
		offset += userPageSize
	}

	return result, nil
}

// attachGenres looks up every distinct artist once and joins their genres per
// track, in artist order.
func (c *Client) attachGenres(ctx context.Context, tracks []track.Track) error {
	var ids []string
	seen := make(map[string]bool)
	for i := range tracks {
		for _, id := range tracks[i].ArtistIDs {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	genres := make(map[string][]string, len(ids))
	for _, batch := range chunk(ids, artistBatchSize) {
		artistIDs := make([]spotify.ID, len(batch))
		for i, id := range batch {
			artistIDs[i] = spotify.ID(id)
		}

		var artists []*spotify.FullArtist
		err := c.call(ctx, func() error {
			var err error
			artists, err = c.api.GetArtists(ctx, artistIDs...)
			return err
		})
		if err != nil {
			return errors.Wrap(err, "failed to get artists")
		}

		for _, a := range artists {
			if a != nil {
				genres[string(a.ID)] = a.Genres
			}
		}
	}

	for i := range tracks {
		var g []string
		for _, id := range tracks[i].ArtistIDs {
			g = append(g, genres[id]...)
		}
		tracks[i].Genres = g
	}
	return nil
}

// call waits for the rate limiter and retries transient failures.
func (c *Client) call(ctx context.Context, fn func() error) error {
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			zlog.Warn().Msgf("spotify request failed, retrying: attempt=%d error=%v", n+1, err)
		}),
	)
	if isNotFound(err) {
		return errors.Mark(err, ErrNotFound)
	}
	return err
}

// convertTrack converts a Spotify FullTrack to domain Track. Genres are filled later.
func (c *Client) convertTrack(t *spotify.FullTrack) *track.Track {
	artists := make([]string, len(t.Artists))
	artistIDs := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
		artistIDs[i] = string(a.ID)
	}

	markets := make([]string, len(t.AvailableMarkets))
	for i, m := range t.AvailableMarkets {
		markets[i] = string(m)
	}
	// Requests carry the market parameter, so Spotify omits the market list.
	if len(markets) == 0 && c.market != "" {
		markets = append(markets, c.market)
	}

	return &track.Track{
		ID:          string(t.ID),
		Name:        t.Name,
		Artists:     artists,
		ArtistIDs:   artistIDs,
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
		Duration:    time.Duration(t.Duration) * time.Millisecond,
		URL:         TrackURL(string(t.ID)),
		Popularity:  int(t.Popularity),
		Explicit:    t.Explicit,
		Markets:     markets,
		IsPlayable:  t.IsPlayable,
	}
}

// isRetryable checks if an error is retryable.
// API errors retry on 429 and 5xx; errors without an API status retry only on
// transport timeouts and dropped connections.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET)
}

func isNotFound(err error) bool {
	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[i:end])
	}
	return batches
}

// PlaylistURL returns the Spotify URL for a playlist.
func PlaylistURL(playlistID string) string {
	return fmt.Sprintf("https://open.spotify.com/playlist/%s", playlistID)
}

// TrackURL returns the Spotify URL for a track.
func TrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// ParsePlaylistID extracts the playlist ID from a Spotify playlist URL, URI or bare ID.
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)

	// spotify:playlist:PLAYLIST_ID
	if strings.HasPrefix(input, "spotify:playlist:") {
		input = strings.TrimPrefix(input, "spotify:playlist:")
	} else if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		// https://open.spotify.com/playlist/PLAYLIST_ID or https://open.spotify.com/intl-XX/playlist/PLAYLIST_ID
		parts := strings.Split(input, "/playlist/")
		input = strings.Split(parts[len(parts)-1], "?")[0]
		input = strings.TrimRight(input, "/")
	}

	if input == "" || strings.ContainsAny(input, "/:?&# ") {
		return "", errors.Wrapf(ErrInvalidPlaylist, "%q", input)
	}
	return input, nil
}
