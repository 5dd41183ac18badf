package genre

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunetied/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
// No configured providers yields an empty chain.
func NewChainFromConfig(cfg *config.Config) (*Chain, error) {
	var providers []Provider

	for i, pcfg := range cfg.Genres.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating genre provider: index=%d type=%s", i+1, pcfg.Type)
		switch pcfg.Type {
		case "lastfm":
			provider, err = NewLastFmProvider(pcfg.Settings)

		case "static":
			provider, err = NewStaticProvider(pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, provider)
		zlog.Info().Msgf("registered genre provider: index=%d type=%s", i+1, pcfg.Type)
	}

	return NewChain(providers...), nil
}
