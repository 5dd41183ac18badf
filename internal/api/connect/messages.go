package connect

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/osa030/tunetied/internal/app/traversal"
)

// RecommendRequest is the input of RecommendService.Recommend.
type RecommendRequest struct {
	PlaylistID string `json:"playlistId"`
	Algorithm  string `json:"algorithm,omitempty"`
	StartGenre string `json:"startGenre,omitempty"`
	Limit      Limit  `json:"limit,omitempty"`
}

// RecommendResponse is the output of RecommendService.Recommend.
type RecommendResponse struct {
	TraversalResults []string `json:"traversalResults"`
	AvailableGenres  []string `json:"availableGenres"`
	TopGenre         string   `json:"topGenre"`
	Algorithm        string   `json:"algorithm"`
	StartGenre       string   `json:"startGenre"`
}

type ListGenresRequest struct {
	PlaylistID string `json:"playlistId"`
}

type ListGenresResponse struct {
	AvailableGenres []string `json:"availableGenres"`
	TopGenre        string   `json:"topGenre"`
}

type ListPlaylistsRequest struct{}

type ListPlaylistsResponse struct {
	Playlists []PlaylistInfo `json:"playlists"`
}

// PlaylistInfo describes one playlist in a listing.
type PlaylistInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"trackCount"`
	URL        string `json:"url"`
}

// Limit is a song count that decodes from a JSON number or string.
// Values that are not whole numbers decode as the default limit; a zero or
// negative count is kept and normalized by the handler.
type Limit int

func (l *Limit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = traversal.DefaultLimit
			return nil
		}
		raw = s
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*l = Limit(n)
		return nil
	}
	*l = Limit(traversal.NormalizeLimit(raw, 0))
	return nil
}
