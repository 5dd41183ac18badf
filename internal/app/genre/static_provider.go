package genre

import (
	"context"

	"github.com/osa030/tunetied/internal/domain/track"
)

type StaticProviderConfig struct {
	Genres []string `yaml:"genres" mapstructure:"genres" validate:"required,min=1,dive,required"`
}

// StaticProvider assigns the same configured genres to every untagged track.
type StaticProvider struct {
	genres []string
}

// NewStaticProvider creates a new StaticProvider from provider settings.
func NewStaticProvider(settings map[string]any) (*StaticProvider, error) {
	config, err := decodeSettings[StaticProviderConfig](settings)
	if err != nil {
		return nil, err
	}
	return &StaticProvider{genres: config.Genres}, nil
}

// Genres returns a copy of the configured genres.
func (p *StaticProvider) Genres(ctx context.Context, t track.Track) ([]string, error) {
	return append([]string(nil), p.genres...), nil
}

// Name returns the provider name.
func (p *StaticProvider) Name() string {
	return "static"
}
