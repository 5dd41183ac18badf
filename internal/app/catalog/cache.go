// Package catalog caches playlist track lists fetched from the music catalog.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/osa030/tunetied/internal/domain/playlist"
	"github.com/osa030/tunetied/internal/domain/track"
)

// Source is the upstream catalog.
type Source interface {
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]track.Track, error)
	ListPlaylists(ctx context.Context) ([]playlist.Summary, error)
}

// Enricher fills in missing track genres in place.
type Enricher interface {
	Enrich(ctx context.Context, tracks []track.Track) int
}

type entry struct {
	tracks    []track.Track
	expiresAt time.Time
}

// Cache is a TTL cache of track lists per playlist.
// Concurrent misses for the same playlist share one upstream load.
type Cache struct {
	source   Source
	enricher Enricher
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithEnricher runs e on every freshly loaded track list before it is cached.
func WithEnricher(e Enricher) Option {
	return func(c *Cache) {
		c.enricher = e
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache in front of source. A non-positive ttl disables caching.
func New(source Source, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracks returns a copy of the playlist's tracks, loading them on a miss.
func (c *Cache) Tracks(ctx context.Context, playlistID string) ([]track.Track, error) {
	if tracks, ok := c.lookup(playlistID); ok {
		zerolog.Ctx(ctx).Debug().Msgf("catalog cache hit: playlist=%s tracks=%d", playlistID, len(tracks))
		return track.CloneAll(tracks), nil
	}

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(playlistID, func() (any, error) {
		if tracks, ok := c.lookup(playlistID); ok {
			return tracks, nil
		}
		return c.load(loadCtx, playlistID)
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for playlist load")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			zerolog.Ctx(ctx).Debug().Msgf("joined in-flight load: playlist=%s", playlistID)
		}
		return track.CloneAll(res.Val.([]track.Track)), nil
	}
}

func (c *Cache) lookup(playlistID string) ([]track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[playlistID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.tracks, true
}

func (c *Cache) load(ctx context.Context, playlistID string) ([]track.Track, error) {
	log := zerolog.Ctx(ctx)
	start := c.now()

	tracks, err := c.source.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load playlist %s", playlistID)
	}

	p := playlist.Playlist{Summary: playlist.Summary{ID: playlistID, TrackCount: len(tracks)}, Tracks: tracks}
	if untagged := p.UntaggedCount(); untagged > 0 && c.enricher != nil {
		n := c.enricher.Enrich(ctx, p.Tracks)
		log.Info().Msgf("enriched %d of %d untagged tracks: playlist=%s", n, untagged, playlistID)
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[playlistID] = entry{tracks: tracks, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}

	log.Info().Msgf("loaded playlist: playlist=%s tracks=%d elapsed=%s", playlistID, len(tracks), c.now().Sub(start))
	return tracks, nil
}

// Playlists lists the user's playlists. Listings are not cached.
func (c *Cache) Playlists(ctx context.Context) ([]playlist.Summary, error) {
	summaries, err := c.source.ListPlaylists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}
	return summaries, nil
}

// Warm preloads the given playlists. It returns the first error after trying all of them.
func (c *Cache) Warm(ctx context.Context, playlistIDs []string) error {
	var firstErr error
	for _, id := range playlistIDs {
		if _, err := c.Tracks(ctx, id); err != nil {
			zerolog.Ctx(ctx).Warn().Msgf("failed to warm playlist %s: %v", id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Len returns the number of cached playlists, including expired ones not yet replaced.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
