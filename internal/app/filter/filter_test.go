package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/domain/track"
)

func TestMarketFilter_Check(t *testing.T) {
	playable := true
	unplayable := false

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
			name:         "no market data",
			filterMarket: "JP",
			trackMarkets: []string{},
			wantAccepted: true,
		},
		{
			name:         "relinked track playable",
			filterMarket: "JP",
			trackMarkets: []string{"US"},
			isPlayable:   &playable,
			wantAccepted: true,
		},
		{
			name:         "relinked track unplayable",
			filterMarket: "JP",
			isPlayable:   &unplayable,
			wantAccepted: false,
			wantCode:     "market_restriction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewMarketFilter(tt.filterMarket)

			trk := track.Track{
				ID:         "test-track",
				Markets:    tt.trackMarkets,
				IsPlayable: tt.isPlayable,
			}

			result := filter.Check(context.Background(), trk, NewPool(nil, nil))

			assert.Equal(t, tt.wantAccepted, result.Accepted,
				"MarketFilter.Check() accepted status mismatch")

			if !tt.wantAccepted {
				assert.Equal(t, tt.wantCode, result.Code,
					"MarketFilter.Check() rejection code mismatch")
			}
		})
	}
}

func TestValidTrackFilter_Check(t *testing.T) {
	tests := []struct {
		name string
		trk  track.Track
		want bool
	}{
		{"complete", track.Track{Name: "Song", Artists: []string{"Artist"}}, true},
		{"blank title", track.Track{Name: "  ", Artists: []string{"Artist"}}, false},
		{"no artists", track.Track{Name: "Song"}, false},
		{"blank artist", track.Track{Name: "Song", Artists: []string{""}}, false},
	}

	filter := &ValidTrackFilter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Check(context.Background(), tt.trk, nil)
			assert.Equal(t, tt.want, result.Accepted)
			if !tt.want {
				assert.Equal(t, "invalid_track", result.Code)
			}
		})
	}
}

func TestExclusionFilter_Check(t *testing.T) {
	neon := track.Track{ID: "id-1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}}
	pool := NewPool(
		map[string]bool{"id-9": true},
		map[track.Key]bool{neon.Key(): true},
	)
	filter := &ExclusionFilter{}

	tests := []struct {
		name string
		trk  track.Track
		want bool
	}{
		{"excluded by id", track.Track{ID: "id-9", Name: "Other", Artists: []string{"X"}}, false},
		{"excluded by key", track.Track{ID: "id-2", Name: "NEON  dreams", Artists: []string{"luna vibe"}}, false},
		{"not excluded", track.Track{ID: "id-3", Name: "Neon Dreams", Artists: []string{"Someone Else"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Check(context.Background(), tt.trk, pool)
			assert.Equal(t, tt.want, result.Accepted)
		})
	}

	assert.True(t, filter.Check(context.Background(), neon, nil).Accepted)
}

func TestChain_Apply(t *testing.T) {
	chain := NewChain()
	chain.Add(&ValidTrackFilter{})
	chain.Add(&ExclusionFilter{})
	chain.Add(NewDuplicateTrackFilter())

	tracks := []track.Track{
		{ID: "1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}},
		{ID: "2", Name: "", Artists: []string{"Luna Vibe"}},
		{ID: "3", Name: "Neon Dreams - 2011 Remaster", Artists: []string{"Luna Vibe"}},
		{ID: "4", Name: "Blocked", Artists: []string{"X"}},
		{ID: "5", Name: "Neon Dreams", Artists: []string{"Cover Band"}},
		{ID: "1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}},
	}
	pool := NewPool(map[string]bool{"4": true}, nil)

	got := chain.Apply(context.Background(), tracks, pool)

	ids := make([]string, len(got))
	for i, tr := range got {
		ids[i] = tr.ID
	}
	assert.Equal(t, []string{"1", "5"}, ids)
	assert.Len(t, pool.Accepted, 2)
}

func TestChain_ExecuteStopsAtFirstRejection(t *testing.T) {
	chain := NewChain()
	chain.Add(&ValidTrackFilter{})
	chain.Add(NewMarketFilter("JP"))

	result := chain.Execute(context.Background(), track.Track{Markets: []string{"US"}}, NewPool(nil, nil))
	assert.Equal(t, "invalid_track", result.Code)
}

type fakeSettings map[string]map[string]any

func (f fakeSettings) IsFilterEnabled(name string) bool {
	s, ok := f[name]
	return !ok || s != nil
}

func (f fakeSettings) FilterSettings(name string) map[string]any {
	s := f[name]
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestNewChainFromConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		chain, err := NewChainFromConfig(fakeSettings{}, "JP")
		require.NoError(t, err)

		var names []string
		for _, f := range chain.Filters() {
			names = append(names, f.Name())
		}
		assert.Equal(t, Order, names)
	})

	t.Run("disabled and configured", func(t *testing.T) {
		chain, err := NewChainFromConfig(fakeSettings{
			"market_filter":         nil,
			"duration_limit_filter": {"min_minutes": 2, "max_minutes": 8},
		}, "JP")
		require.NoError(t, err)
		assert.Len(t, chain.Filters(), len(Order)-1)

		short := track.Track{Name: "Interlude", Artists: []string{"X"}, Duration: 45 * time.Second}
		result := chain.Execute(context.Background(), short, NewPool(nil, nil))
		assert.Equal(t, "duration_limit_exceeded", result.Code)
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := NewChainFromConfig(fakeSettings{
			"duration_limit_filter": {"min_minutes": 10, "max_minutes": 5},
		}, "JP")
		assert.Error(t, err)
	})
}

func TestNames(t *testing.T) {
	names := Names()
	for _, n := range Order {
		assert.Contains(t, names, n)
	}
}
