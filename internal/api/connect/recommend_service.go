// Package connect provides the Connect RPC service implementation.
package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/tunetied/internal/app/recommend"
	"github.com/osa030/tunetied/internal/app/traversal"
	"github.com/osa030/tunetied/internal/domain/graph"
	"github.com/osa030/tunetied/internal/domain/playlist"
	"github.com/osa030/tunetied/internal/infra/spotify"
)

const (
	// RecommendServiceName is the fully-qualified name of the service.
	RecommendServiceName = "tunetied.v1.RecommendService"

	RecommendProcedure     = "/" + RecommendServiceName + "/Recommend"
	ListGenresProcedure    = "/" + RecommendServiceName + "/ListGenres"
	ListPlaylistsProcedure = "/" + RecommendServiceName + "/ListPlaylists"
)

// Recommender is the application service behind the RPC surface.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
	Genres(ctx context.Context, playlistID string) (graph.Ranking, error)
	Playlists(ctx context.Context) ([]playlist.Summary, error)
}

// RecommendService implements the RecommendService RPC.
type RecommendService struct {
	svc Recommender
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(svc Recommender) *RecommendService {
	return &RecommendService{svc: svc}
}

// NewHandler mounts the service's procedures and returns the path prefix and
// handler to register on a mux.
func NewHandler(s *RecommendService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RecommendProcedure, connect.NewUnaryHandler(RecommendProcedure, s.Recommend, opts...))
	mux.Handle(ListGenresProcedure, connect.NewUnaryHandler(ListGenresProcedure, s.ListGenres, opts...))
	mux.Handle(ListPlaylistsProcedure, connect.NewUnaryHandler(ListPlaylistsProcedure, s.ListPlaylists, opts...))

	return "/" + RecommendServiceName + "/", mux
}

// Recommend handles mini-playlist requests.
func (s *RecommendService) Recommend(
	ctx context.Context,
	req *connect.Request[RecommendRequest],
) (*connect.Response[RecommendResponse], error) {
	if req.Msg.PlaylistID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("playlistId is required"))
	}
	// Reject bad algorithms before touching the catalog.
	if req.Msg.Algorithm != "" {
		if _, err := traversal.ParseAlgorithm(req.Msg.Algorithm); err != nil {
			return nil, toConnectError(ctx, err)
		}
	}

	res, err := s.svc.Recommend(ctx, recommend.Request{
		PlaylistID: req.Msg.PlaylistID,
		Algorithm:  req.Msg.Algorithm,
		StartGenre: req.Msg.StartGenre,
		Limit:      traversal.ClampLimit(int(req.Msg.Limit), 0),
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	return connect.NewResponse(&RecommendResponse{
		TraversalResults: res.TraversalResults,
		AvailableGenres:  res.AvailableGenres,
		TopGenre:         res.TopGenre,
		Algorithm:        string(res.Algorithm),
		StartGenre:       res.StartGenre,
	}), nil
}

// ListGenres returns the ranked genres of a playlist.
func (s *RecommendService) ListGenres(
	ctx context.Context,
	req *connect.Request[ListGenresRequest],
) (*connect.Response[ListGenresResponse], error) {
	if req.Msg.PlaylistID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("playlistId is required"))
	}

	ranking, err := s.svc.Genres(ctx, req.Msg.PlaylistID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	return connect.NewResponse(&ListGenresResponse{
		AvailableGenres: ranking.Genres,
		TopGenre:        ranking.TopGenre,
	}), nil
}

// ListPlaylists returns the playlists visible to the configured account.
func (s *RecommendService) ListPlaylists(
	ctx context.Context,
	req *connect.Request[ListPlaylistsRequest],
) (*connect.Response[ListPlaylistsResponse], error) {
	summaries, err := s.svc.Playlists(ctx)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	playlists := make([]PlaylistInfo, 0, len(summaries))
	for _, p := range summaries {
		playlists = append(playlists, PlaylistInfo{
			ID:         p.ID,
			Name:       p.Name,
			Owner:      p.Owner,
			TrackCount: p.TrackCount,
			URL:        p.URL,
		})
	}
	return connect.NewResponse(&ListPlaylistsResponse{Playlists: playlists}), nil
}

// toConnectError maps service errors to Connect codes.
func toConnectError(ctx context.Context, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, traversal.ErrUnknownAlgorithm), errors.Is(err, spotify.ErrInvalidPlaylist):
		code = connect.CodeInvalidArgument
	case errors.Is(err, recommend.ErrPlaylistNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, recommend.ErrCatalogUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	default:
		code = connect.CodeInternal
	}

	zerolog.Ctx(ctx).Warn().Msgf("request failed: code=%s error=%v", code, err)
	return connect.NewError(code, err)
}
