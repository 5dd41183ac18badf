package genre

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/osa030/tunetied/internal/domain/track"
)

// Chain tries providers in order for every untagged track.
type Chain struct {
	providers []Provider
}

// NewChain creates a new provider chain.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Len returns the number of providers in the chain.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Enrich sets Genres on tracks that have none, in place. The first provider
// returning a non-empty result wins; provider errors are logged and skipped.
// It returns the number of tracks that gained genres.
func (c *Chain) Enrich(ctx context.Context, tracks []track.Track) int {
	if len(c.providers) == 0 {
		return 0
	}
	log := zerolog.Ctx(ctx)

	enriched := 0
	for i := range tracks {
		if tracks[i].HasGenres() {
			continue
		}
		if ctx.Err() != nil {
			log.Warn().Msgf("genre enrichment interrupted: %v", ctx.Err())
			return enriched
		}

		for _, p := range c.providers {
			genres, err := p.Genres(ctx, tracks[i])
			if err != nil {
				log.Warn().Msgf("genre provider failed, trying next: provider=%s track=%q artists=%q error=%v",
					p.Name(), tracks[i].Name, tracks[i].ArtistLine(), err)
				continue
			}
			if len(genres) == 0 {
				continue
			}

			tracks[i].Genres = genres
			enriched++
			log.Debug().Msgf("genres from provider: provider=%s track=%q artists=%q genres=%v",
				p.Name(), tracks[i].Name, tracks[i].ArtistLine(), genres)
			break
		}
	}

	return enriched
}
