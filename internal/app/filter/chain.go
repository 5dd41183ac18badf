package filter

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunetied/internal/domain/track"
	"github.com/osa030/tunetied/internal/infra/config"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// NewChainFromConfig builds a chain with every enabled filter, in name order.
// market_filter falls back to the Spotify market when its settings omit one.
func NewChainFromConfig(cfg *config.Config) (*Chain, error) {
	names := make([]string, 0, len(cfg.Filters))
	for name, fc := range cfg.Filters {
		if fc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	chain := NewChain()
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}

		settings := make(map[string]any, len(cfg.Filters[name].Settings)+1)
		for k, v := range cfg.Filters[name].Settings {
			settings[k] = v
		}
		if name == marketFilterName {
			if _, ok := settings["market"]; !ok {
				settings["market"] = cfg.Spotify.Market
			}
		}

		f := factory()
		if err := f.ValidateConfig(settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		chain.Add(f)
		zlog.Info().Msgf("enabled filter: %s", name)
	}

	return chain, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the track.
func (c *Chain) Execute(ctx context.Context, t track.Track) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, t)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the accepted tracks in order and the rejection count per code.
func (c *Chain) Apply(ctx context.Context, tracks []track.Track) ([]track.Track, map[string]int) {
	rejected := make(map[string]int)
	if len(c.filters) == 0 {
		return tracks, rejected
	}

	kept := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		result := c.Execute(ctx, t)
		if !result.Accepted {
			rejected[result.Code]++
			continue
		}
		kept = append(kept, t)
	}
	return kept, rejected
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
