package genre

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/tunetied/internal/domain/track"
	"github.com/osa030/tunetied/internal/infra/lastfm"
)

// LastFmClient defines the interface for Last.fm operations.
type LastFmClient interface {
	GetTopTags(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.Tag, error)
}

type LastFmProviderConfig struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	TagCount int    `yaml:"tag_count" mapstructure:"tag_count" default:"3" validate:"gte=1,lte=20"`
	MinCount int    `yaml:"min_count" mapstructure:"min_count" default:"10" validate:"gte=0,lte=100"`
}

// LastFmProvider uses a track's Last.fm top tags as its genres.
type LastFmProvider struct {
	lastfm LastFmClient
	config *LastFmProviderConfig
}

// NewLastFmProvider creates a new LastFmProvider from provider settings.
func NewLastFmProvider(settings map[string]any) (*LastFmProvider, error) {
	config, err := decodeSettings[LastFmProviderConfig](settings)
	if err != nil {
		return nil, err
	}

	client, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}

	return &LastFmProvider{lastfm: client, config: config}, nil
}

// Genres returns up to TagCount lower-cased tags whose weight reaches MinCount.
func (p *LastFmProvider) Genres(ctx context.Context, t track.Track) ([]string, error) {
	if t.Name == "" || len(t.Artists) == 0 {
		return nil, nil
	}

	tags, err := p.lastfm.GetTopTags(ctx, t.Name, t.Artists[0], p.config.TagCount*2)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top tags")
	}

	var genres []string
	for _, tag := range tags {
		if tag.Count < p.config.MinCount {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(tag.Name))
		// Commas would split the tag into several genres downstream.
		name = strings.ReplaceAll(name, ",", " ")
		if name == "" {
			continue
		}
		genres = append(genres, name)
		if len(genres) == p.config.TagCount {
			break
		}
	}
	return genres, nil
}

// Name returns the provider name.
func (p *LastFmProvider) Name() string {
	return "lastfm"
}

// decodeSettings decodes, defaults and validates provider settings.
func decodeSettings[T any](settings map[string]any) (*T, error) {
	var config T
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return &config, nil
}
