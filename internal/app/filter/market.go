package filter

import (
	"context"

	"github.com/osa030/moodbox/internal/domain/track"
)

// MarketFilter checks if the track is available in the configured market.
type MarketFilter struct {
	market string
}

// NewMarketFilter creates a new MarketFilter with the specified market.
func NewMarketFilter(market string) *MarketFilter {
	return &MarketFilter{market: market}
}

func (f *MarketFilter) Name() string {
	return "market_filter"
}

func (f *MarketFilter) Description() string {
	return "Checks if the track is available in the configured market"
}

func (f *MarketFilter) ReturnCodes() []string {
	return []string{"market_restriction"}
}

func (f *MarketFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *MarketFilter) Check(ctx context.Context, t track.Track, p *Pool) Result {
	if f.market == "" {
		return Accept()
	}
	// Tracks resolved without market data carry neither field
	if t.IsPlayable == nil && len(t.Markets) == 0 {
		return Accept()
	}

	if !t.IsAvailableInMarket(f.market) {
		return Reject("market_restriction")
	}
	return Accept()
}

func init() {
	// The market comes from the catalog config, so the chain builder
	// creates this filter directly.
	Register("market_filter", func() Filter {
		return NewMarketFilter("")
	})
}
