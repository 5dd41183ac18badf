package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Client calls RecommendService over Connect with the JSON codec.
type Client struct {
	recommend     *connect.Client[RecommendRequest, RecommendResponse]
	listGenres    *connect.Client[ListGenresRequest, ListGenresResponse]
	listPlaylists *connect.Client[ListPlaylistsRequest, ListPlaylistsResponse]
}

// NewClient creates a client for the server at baseURL. token may be empty.
func NewClient(httpClient connect.HTTPClient, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opts := []connect.ClientOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(NewTokenInterceptor(token)),
	}

	return &Client{
		recommend:     connect.NewClient[RecommendRequest, RecommendResponse](httpClient, baseURL+RecommendProcedure, opts...),
		listGenres:    connect.NewClient[ListGenresRequest, ListGenresResponse](httpClient, baseURL+ListGenresProcedure, opts...),
		listPlaylists: connect.NewClient[ListPlaylistsRequest, ListPlaylistsResponse](httpClient, baseURL+ListPlaylistsProcedure, opts...),
	}
}

func (c *Client) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResponse, error) {
	res, err := c.recommend.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ListGenres(ctx context.Context, playlistID string) (*ListGenresResponse, error) {
	res, err := c.listGenres.CallUnary(ctx, connect.NewRequest(&ListGenresRequest{PlaylistID: playlistID}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ListPlaylists(ctx context.Context) (*ListPlaylistsResponse, error) {
	res, err := c.listPlaylists.CallUnary(ctx, connect.NewRequest(&ListPlaylistsRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
