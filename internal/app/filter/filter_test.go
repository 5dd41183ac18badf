package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tunetied/internal/domain/track"
	"github.com/osa030/tunetied/internal/infra/config"
)

func boolPtr(b bool) *bool { return &b }

func TestMarketFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		filterMarket string
		trackMarkets []string
		isPlayable   *bool
		wantAccepted bool
		wantCode     string
	}{
		{
			name:         "track available in market",
			filterMarket: "JP",
			trackMarkets: []string{"JP", "US", "UK"},
			wantAccepted: true,
		},
		{
			name:         "track not available in market",
			filterMarket: "JP",
			trackMarkets: []string{"US", "UK"},
			wantAccepted: false,
			wantCode:     "market_restriction",
		},
		{
			name:         "no market filter",
			filterMarket: "",
			trackMarkets: []string{"US"},
			wantAccepted: true,
		},
		{
			name:         "empty track markets",
			filterMarket: "JP",
			trackMarkets: []string{},
			wantAccepted: false,
			wantCode:     "market_restriction",
		},
		{
			name:         "is_playable overrides markets",
			filterMarket: "JP",
			trackMarkets: []string{},
			isPlayable:   boolPtr(true),
			wantAccepted: true,
		},
		{
			name:         "relinked track not playable",
			filterMarket: "JP",
			trackMarkets: []string{"JP"},
			isPlayable:   boolPtr(false),
			wantAccepted: false,
			wantCode:     "market_restriction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMarketFilter(tt.filterMarket)
			trk := track.Track{
				ID:         "test-track",
				Markets:    tt.trackMarkets,
				IsPlayable: tt.isPlayable,
			}

			result := f.Check(context.Background(), trk)
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}
}

func TestMarketFilter_ValidateConfig(t *testing.T) {
	f := &MarketFilter{}
	require.NoError(t, f.ValidateConfig(map[string]any{"market": "JP"}))
	assert.Equal(t, "JP", f.market)

	assert.Error(t, f.ValidateConfig(map[string]any{"market": "JPN"}))
}

func TestExplicitFilter_Check(t *testing.T) {
	f := &ExplicitFilter{}
	require.NoError(t, f.ValidateConfig(nil))

	assert.True(t, f.Check(context.Background(), track.Track{ID: "clean"}).Accepted)

	result := f.Check(context.Background(), track.Track{ID: "dirty", Explicit: true})
	assert.False(t, result.Accepted)
	assert.Equal(t, "explicit_content", result.Code)
}

func TestRegistry(t *testing.T) {
	names := RegisteredNames()
	assert.Equal(t, []string{"duration_limit_filter", "explicit_filter", "market_filter"}, names)

	for _, name := range names {
		f := GetRegistered()[name]()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Description())
		assert.NotEmpty(t, f.ReturnCodes())
	}
}

func TestChain_Apply(t *testing.T) {
	chain := NewChain()
	chain.Add(&ExplicitFilter{})
	chain.Add(NewMarketFilter("US"))

	tracks := []track.Track{
		{ID: "1", Name: "keep", Markets: []string{"US"}},
		{ID: "2", Name: "explicit", Explicit: true, Markets: []string{"US"}},
		{ID: "3", Name: "elsewhere", Markets: []string{"JP"}},
		{ID: "4", Name: "keep too", Markets: []string{"JP", "US"}},
		{ID: "5", Name: "explicit elsewhere", Explicit: true, Markets: []string{"JP"}},
	}

	kept, rejected := chain.Apply(context.Background(), tracks)

	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].ID)
	assert.Equal(t, "4", kept[1].ID)
	// first rejecting filter wins
	assert.Equal(t, map[string]int{"explicit_content": 2, "market_restriction": 1}, rejected)
}

func TestChain_ApplyEmpty(t *testing.T) {
	tracks := []track.Track{{ID: "1", Explicit: true}}
	kept, rejected := NewChain().Apply(context.Background(), tracks)
	assert.Equal(t, tracks, kept)
	assert.Empty(t, rejected)
}

func TestNewChainFromConfig(t *testing.T) {
	t.Run("enabled filters in name order", func(t *testing.T) {
		cfg := &config.Config{
			Spotify: config.SpotifyConfig{Market: "JP"},
			Filters: map[string]config.FilterConfig{
				"market_filter":         {Enabled: true},
				"explicit_filter":       {Enabled: true},
				"duration_limit_filter": {Enabled: false},
			},
		}

		chain, err := NewChainFromConfig(cfg)
		require.NoError(t, err)
		require.Len(t, chain.Filters(), 2)
		assert.Equal(t, "explicit_filter", chain.Filters()[0].Name())
		assert.Equal(t, "market_filter", chain.Filters()[1].Name())

		// market falls back to the spotify market
		mf := chain.Filters()[1].(*MarketFilter)
		assert.Equal(t, "JP", mf.market)
	})

	t.Run("explicit market setting wins", func(t *testing.T) {
		cfg := &config.Config{
			Spotify: config.SpotifyConfig{Market: "JP"},
			Filters: map[string]config.FilterConfig{
				"market_filter": {Enabled: true, Settings: map[string]any{"market": "GB"}},
			},
		}
		chain, err := NewChainFromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, "GB", chain.Filters()[0].(*MarketFilter).market)
	})

	t.Run("unknown filter", func(t *testing.T) {
		cfg := &config.Config{
			Filters: map[string]config.FilterConfig{
				"no_such_filter": {Enabled: true},
			},
		}
		_, err := NewChainFromConfig(cfg)
		assert.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		cfg := &config.Config{
			Filters: map[string]config.FilterConfig{
				"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_minutes": 10, "max_minutes": 5}},
			},
		}
		_, err := NewChainFromConfig(cfg)
		assert.Error(t, err)
	})

	t.Run("no filters", func(t *testing.T) {
		chain, err := NewChainFromConfig(&config.Config{})
		require.NoError(t, err)
		assert.Empty(t, chain.Filters())

		kept, _ := chain.Apply(context.Background(), []track.Track{{ID: "x", Duration: time.Hour}})
		assert.Len(t, kept, 1)
	})
}
