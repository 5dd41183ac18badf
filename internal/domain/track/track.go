// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"
)

// Track represents a playlist track as seen by the recommender.
// Only Name and Genres take part in graph building; the rest is passthrough metadata.
type Track struct {
	ID          string        // Spotify Track ID
	Name        string        // Track name (not unique)
	Artists     []string      // Artist names
	ArtistIDs   []string      // Spotify artist IDs, same order as Artists
	Album       string        // Album name
	ReleaseDate string        // Album release date as reported by Spotify
	Duration    time.Duration // Track duration
	URL         string        // Spotify URL
	Genres      []string      // Genres (from artist info); elements may be comma separated
	Popularity  int           // Popularity score (0-100)
	Explicit    bool          // Explicit content flag
	Markets     []string      // Available markets
	IsPlayable  *bool         // Playable in the specified market (nil if market not specified)
	AddedAt     string        // Time the track was added to the playlist
}

// GenreTokens returns the normalized genre tokens of the track in order.
// Each Genres element is split on commas and trimmed; empty tokens are dropped.
func (t *Track) GenreTokens() []string {
	var tokens []string
	for _, g := range t.Genres {
		tokens = append(tokens, ParseGenres(g)...)
	}
	return tokens
}

// HasGenres reports whether the track carries at least one non-empty genre token.
func (t *Track) HasGenres() bool {
	for _, g := range t.Genres {
		if len(ParseGenres(g)) > 0 {
			return true
		}
	}
	return false
}

// ArtistLine joins artist names the way they are displayed.
func (t *Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// IsAvailableInMarket checks if the track is available in the specified market.
func (t *Track) IsAvailableInMarket(market string) bool {
	// IsPlayable takes precedence (Track Relinking support)
	if t.IsPlayable != nil {
		return *t.IsPlayable
	}

	for _, m := range t.Markets {
		if m == market {
			return true
		}
	}
	return false
}

// ParseGenres splits a comma separated genre field into trimmed tokens.
func ParseGenres(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Clone returns a deep copy of the track.
func (t Track) Clone() Track {
	c := t
	c.Artists = append([]string(nil), t.Artists...)
	c.ArtistIDs = append([]string(nil), t.ArtistIDs...)
	c.Genres = append([]string(nil), t.Genres...)
	c.Markets = append([]string(nil), t.Markets...)
	if t.IsPlayable != nil {
		v := *t.IsPlayable
		c.IsPlayable = &v
	}
	return c
}

// CloneAll deep copies a track list.
func CloneAll(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = t.Clone()
	}
	return out
}
