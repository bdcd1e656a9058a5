package source

import (
	"context"

	"github.com/osa030/moodbox/internal/app/fetch"
	"github.com/osa030/moodbox/internal/app/query"
	"github.com/osa030/moodbox/internal/domain/track"
)

// MoodSearchConfig represents the configuration for MoodSearchSource.
type MoodSearchConfig struct {
	PerQuery int `yaml:"per_query" mapstructure:"per_query" default:"20" validate:"gte=1,lte=50"`
	Total    int `yaml:"total" mapstructure:"total" default:"200" validate:"gte=1"`
}

// MoodSearchSource searches the catalog with queries built from taste, mood
// and vibe keywords.
type MoodSearchSource struct {
	fetcher *fetch.Fetcher
	config  MoodSearchConfig
}

// NewMoodSearchSource creates a new MoodSearchSource.
func NewMoodSearchSource(fetcher *fetch.Fetcher, settings map[string]any) (*MoodSearchSource, error) {
	var config MoodSearchConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &MoodSearchSource{fetcher: fetcher, config: config}, nil
}

func (s *MoodSearchSource) Name() string {
	return "mood_search"
}

func (s *MoodSearchSource) Candidates(ctx context.Context, in Input) ([]track.Track, error) {
	queries := query.Build(in.Profile, in.Mood, in.Signals)
	return s.fetcher.Fetch(ctx, queries, fetch.Options{
		PerQuery: s.config.PerQuery,
		Total:    s.config.Total,
		Market:   in.Market,
	}), nil
}
