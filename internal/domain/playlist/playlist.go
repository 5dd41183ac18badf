// Package playlist provides the Playlist domain entity.
package playlist

import "github.com/osa030/tunetied/internal/domain/track"

// Summary describes a playlist owned or followed by the current user.
type Summary struct {
	ID         string // Spotify Playlist ID
	Name       string // Playlist name
	Owner      string // Owner display name
	TrackCount int    // Total number of items reported by Spotify
	URL        string // Spotify URL
}

// Playlist represents a Spotify playlist with its tracks loaded.
type Playlist struct {
	Summary
	Tracks []track.Track
}

// UntaggedCount returns how many tracks carry no genre at all.
func (p *Playlist) UntaggedCount() int {
	n := 0
	for i := range p.Tracks {
		if !p.Tracks[i].HasGenres() {
			n++
		}
	}
	return n
}
