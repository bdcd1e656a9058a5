package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/domain/track"
)

// Order is the evaluation order of the built-in filters.
var Order = []string{
	"valid_track",
	"exclusion_filter",
	"market_filter",
	"duration_limit_filter",
	"duplicate_track_filter",
}

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

// Settings tells the chain builder whether a filter is enabled and how it is
// configured. It is satisfied by *config.Config.
type Settings interface {
	IsFilterEnabled(name string) bool
	FilterSettings(name string) map[string]any
}

// NewChainFromConfig builds the chain of enabled filters in Order.
// Filters without settings keep their defaults.
func NewChainFromConfig(cfg Settings, market string) (*Chain, error) {
	c := NewChain()
	for _, name := range Order {
		if !cfg.IsFilterEnabled(name) {
			zlog.Info().Msgf("filter disabled: name=%s", name)
			continue
		}

		var f Filter
		if name == "market_filter" {
			f = NewMarketFilter(market)
		} else {
			factory, ok := registry[name]
			if !ok {
				return nil, errors.Newf("unknown filter: %s", name)
			}
			f = factory()
		}

		if settings := cfg.FilterSettings(name); settings != nil {
			if err := f.ValidateConfig(settings); err != nil {
				return nil, errors.Wrapf(err, "invalid config for filter %s", name)
			}
		}
		c.Add(f)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the track.
func (c *Chain) Execute(ctx context.Context, t track.Track, p *Pool) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, t, p)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply filters tracks in order, recording each accepted track in p so later
// candidates are checked against it.
func (c *Chain) Apply(ctx context.Context, tracks []track.Track, p *Pool) []track.Track {
	out := make([]track.Track, 0, len(tracks))
	rejected := map[string]int{}
	for _, t := range tracks {
		result := c.Execute(ctx, t, p)
		if !result.Accepted {
			rejected[result.Code]++
			continue
		}
		p.Accepted = append(p.Accepted, t)
		out = append(out, t)
	}
	if len(rejected) > 0 {
		zlog.Debug().Msgf("candidates filtered: in=%d out=%d rejected=%v", len(tracks), len(out), rejected)
	}
	return out
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
