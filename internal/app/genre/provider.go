// Package genre fills in genres for tracks whose artists carry none.
package genre

import (
	"context"

	"github.com/osa030/tunetied/internal/domain/track"
)

// Provider is the interface for genre sources.
type Provider interface {
	// Genres returns genre tokens for the track. An empty result is not an error.
	Genres(ctx context.Context, t track.Track) ([]string, error)

	// Name returns the provider name (used in config).
	Name() string
}
