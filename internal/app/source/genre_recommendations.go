package source

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/cache"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

const genreSeedsKey = "available"

// GenreRecommendationsConfig represents the configuration for GenreRecommendationsSource.
type GenreRecommendationsConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit" default:"50" validate:"gte=1,lte=100"`
}

// GenreRecommendationsSource asks the catalog for recommendations seeded by
// the mood's genres, restricted to the genres the catalog accepts as seeds.
type GenreRecommendationsSource struct {
	catalog Catalog
	seeds   *cache.Typed[[]string]
	config  GenreRecommendationsConfig
}

// NewGenreRecommendationsSource creates a new GenreRecommendationsSource.
// The genre seed list is cached in store.
func NewGenreRecommendationsSource(catalog Catalog, store cache.Store, settings map[string]any) (*GenreRecommendationsSource, error) {
	if store == nil {
		return nil, errors.New("genre seed cache is required")
	}
	var config GenreRecommendationsConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &GenreRecommendationsSource{
		catalog: catalog,
		seeds:   cache.NewTyped[[]string](store),
		config:  config,
	}, nil
}

func (s *GenreRecommendationsSource) Name() string {
	return "genre_recommendations"
}

func (s *GenreRecommendationsSource) Candidates(ctx context.Context, in Input) ([]track.Track, error) {
	available, err := s.available(ctx)
	if err != nil {
		return nil, err
	}

	genres := SeedGenres(mood.Genres(in.Mood), available)
	if len(genres) == 0 {
		zlog.Debug().Msgf("no seedable genres for mood: mood=%s", in.Mood)
		return nil, nil
	}

	return s.catalog.Recommendations(ctx, spotify.Seeds{Genres: genres}, in.Targets, s.config.Limit, in.Market)
}

func (s *GenreRecommendationsSource) available(ctx context.Context) ([]string, error) {
	if genres, ok := s.seeds.Get(ctx, genreSeedsKey); ok {
		return genres, nil
	}
	genres, err := s.catalog.AvailableGenreSeeds(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load genre seeds")
	}
	s.seeds.Set(ctx, genreSeedsKey, genres)
	return genres, nil
}

// SeedGenres maps genre names to seed slugs ("hip hop" -> "hip-hop") and
// keeps those present in available, up to spotify.MaxSeeds.
func SeedGenres(genres, available []string) []string {
	accepted := make(map[string]bool, len(available))
	for _, g := range available {
		accepted[g] = true
	}

	var out []string
	seen := map[string]bool{}
	for _, g := range genres {
		slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(g)), " ", "-")
		if !accepted[slug] || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
		if len(out) == spotify.MaxSeeds {
			break
		}
	}
	return out
}
