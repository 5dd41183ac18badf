// Package recommend assembles mini-playlists from a playlist's genre graph.
package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/osa030/tunetied/internal/app/traversal"
	"github.com/osa030/tunetied/internal/domain/graph"
	"github.com/osa030/tunetied/internal/domain/playlist"
	"github.com/osa030/tunetied/internal/domain/track"
	"github.com/osa030/tunetied/internal/infra/logger"
	"github.com/osa030/tunetied/internal/infra/spotify"
)

var (
	// ErrCatalogUnavailable is returned when the catalog cannot be reached.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrPlaylistNotFound is returned when the playlist does not exist or is not visible.
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// Catalog supplies playlist tracks.
type Catalog interface {
	Tracks(ctx context.Context, playlistID string) ([]track.Track, error)
	Playlists(ctx context.Context) ([]playlist.Summary, error)
}

// TrackFilter drops tracks before the graph is built.
type TrackFilter interface {
	Apply(ctx context.Context, tracks []track.Track) ([]track.Track, map[string]int)
}

// Config holds recommendation defaults.
type Config struct {
	DefaultAlgorithm traversal.Algorithm
	MaxLimit         int
	TopGenres        int
}

// Request describes one recommendation.
type Request struct {
	PlaylistID string
	Algorithm  string // empty uses the configured default
	StartGenre string // empty uses the top genre
	Limit      int    // non-positive uses the default
}

// Result is the outcome of a recommendation.
type Result struct {
	TraversalResults []string
	AvailableGenres  []string
	TopGenre         string
	Algorithm        traversal.Algorithm
	StartGenre       string
}

// Service builds a fresh graph per request and traverses it.
type Service struct {
	catalog Catalog
	filter  TrackFilter
	cfg     Config
}

// NewService creates a new recommendation service. filter may be nil.
func NewService(catalog Catalog, filter TrackFilter, cfg Config) *Service {
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = traversal.DFS
	}
	if cfg.TopGenres <= 0 {
		cfg.TopGenres = graph.DefaultTopGenres
	}
	return &Service{
		catalog: catalog,
		filter:  filter,
		cfg:     cfg,
	}
}

// Recommend traverses the playlist's genre graph from the requested genre.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	alg := s.cfg.DefaultAlgorithm
	if strings.TrimSpace(req.Algorithm) != "" {
		parsed, err := traversal.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return nil, err
		}
		alg = parsed
	}

	ctx = logger.ForRequest(ctx, uuid.NewString())
	log := zerolog.Ctx(ctx)
	start := time.Now()

	g, err := s.graph(ctx, req.PlaylistID)
	if err != nil {
		return nil, err
	}

	ranking := graph.Rank(g, s.cfg.TopGenres)
	startGenre := strings.TrimSpace(req.StartGenre)
	if startGenre == "" {
		startGenre = ranking.TopGenre
	}
	limit := traversal.ClampLimit(req.Limit, s.cfg.MaxLimit)

	songs := traversal.Traverse(g, alg, startGenre, limit)
	if !g.Has(startGenre) {
		log.Info().Msgf("start genre not in graph: genre=%q", startGenre)
	}

	log.Info().Msgf("recommendation built: playlist=%s algorithm=%s start=%q limit=%d songs=%d genres=%d elapsed=%s",
		req.PlaylistID, alg, startGenre, limit, len(songs), g.Len(), time.Since(start))

	return &Result{
		TraversalResults: songs,
		AvailableGenres:  ranking.Genres,
		TopGenre:         ranking.TopGenre,
		Algorithm:        alg,
		StartGenre:       startGenre,
	}, nil
}

// Genres returns only the genre ranking for a playlist.
func (s *Service) Genres(ctx context.Context, playlistID string) (graph.Ranking, error) {
	ctx = logger.ForRequest(ctx, uuid.NewString())

	g, err := s.graph(ctx, playlistID)
	if err != nil {
		return graph.Ranking{}, err
	}
	return graph.Rank(g, s.cfg.TopGenres), nil
}

// Playlists lists the playlists the catalog can see.
func (s *Service) Playlists(ctx context.Context) ([]playlist.Summary, error) {
	summaries, err := s.catalog.Playlists(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return summaries, nil
}

func (s *Service) graph(ctx context.Context, ref string) (*graph.Graph, error) {
	log := zerolog.Ctx(ctx)

	playlistID, err := spotify.ParsePlaylistID(ref)
	if err != nil {
		return nil, err
	}

	tracks, err := s.catalog.Tracks(ctx, playlistID)
	if err != nil {
		return nil, classify(err)
	}

	if s.filter != nil {
		var rejected map[string]int
		tracks, rejected = s.filter.Apply(ctx, tracks)
		for code, n := range rejected {
			log.Debug().Msgf("tracks filtered: code=%s count=%d", code, n)
		}
	}

	g := graph.Build(tracks)
	log.Debug().Msgf("graph built: playlist=%s tracks=%d genres=%d songs=%d", playlistID, len(tracks), g.Len(), g.Songs())
	return g, nil
}

// classify marks catalog errors with the service's sentinel kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, spotify.ErrNotFound):
		return errors.Mark(err, ErrPlaylistNotFound)
	case errors.Is(err, spotify.ErrInvalidPlaylist):
		return err
	default:
		return errors.Mark(err, ErrCatalogUnavailable)
	}
}
