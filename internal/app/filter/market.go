package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/tunetied/internal/domain/track"
)

const marketFilterName = "market_filter"

type MarketConfig struct {
	Market string `mapstructure:"market" validate:"omitempty,len=2"`
}

// MarketFilter drops tracks that are not playable in the configured market.
type MarketFilter struct {
	market string
}

// NewMarketFilter creates a new MarketFilter with the specified market.
func NewMarketFilter(market string) *MarketFilter {
	return &MarketFilter{market: market}
}

func (f *MarketFilter) Name() string {
	return marketFilterName
}

func (f *MarketFilter) Description() string {
	return "Drops tracks that are not available in the configured market"
}

func (f *MarketFilter) ReturnCodes() []string {
	return []string{"market_restriction"}
}

func (f *MarketFilter) ValidateConfig(settings map[string]any) error {
	var config MarketConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	f.market = config.Market
	return nil
}

func (f *MarketFilter) Check(ctx context.Context, t track.Track) Result {
	if f.market == "" {
		return Accept()
	}
	if !t.IsAvailableInMarket(f.market) {
		return Reject("market_restriction")
	}
	return Accept()
}

func init() {
	Register(marketFilterName, func() Filter {
		return &MarketFilter{}
	})
}
