package source

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

// AnchorsConfig represents the configuration for AnchorsSource.
type AnchorsConfig struct {
	TopArtists      int `yaml:"top_artists" mapstructure:"top_artists" default:"5" validate:"gte=1,lte=20"`
	SeedArtists     int `yaml:"seed_artists" mapstructure:"seed_artists" default:"2" validate:"gte=0,lte=5"`
	Recommendations int `yaml:"recommendations" mapstructure:"recommendations" default:"30" validate:"gte=0,lte=100"`
}

// AnchorsSource provides personalized candidates: the listener's top artists'
// top tracks plus recommendations seeded from their top artists and tracks.
type AnchorsSource struct {
	catalog Catalog
	pool    *worker.Pool
	config  AnchorsConfig
}

// NewAnchorsSource creates a new AnchorsSource.
func NewAnchorsSource(catalog Catalog, pool *worker.Pool, settings map[string]any) (*AnchorsSource, error) {
	var config AnchorsConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &AnchorsSource{catalog: catalog, pool: pool, config: config}, nil
}

func (s *AnchorsSource) Name() string {
	return "anchors"
}

// Candidates returns nothing for anonymous listeners.
func (s *AnchorsSource) Candidates(ctx context.Context, in Input) ([]track.Track, error) {
	p := in.Profile
	if p.IsAnonymous() {
		return nil, nil
	}

	artists := p.TopArtistIDs
	if len(artists) > s.config.TopArtists {
		artists = artists[:s.config.TopArtists]
	}

	jobs := make([]worker.Job[[]track.Track], 0, len(artists)+1)
	for _, id := range artists {
		jobs = append(jobs, func(ctx context.Context) ([]track.Track, error) {
			return s.catalog.ArtistTopTracks(ctx, id, in.Market)
		})
	}

	seeds := s.seeds(p.TopArtistIDs, p.TopTrackSeeds)
	if s.config.Recommendations > 0 && seeds.Len() > 0 {
		jobs = append(jobs, func(ctx context.Context) ([]track.Track, error) {
			return s.catalog.Recommendations(ctx, seeds, in.Targets, s.config.Recommendations, in.Market)
		})
	}

	var out []track.Track
	for _, r := range worker.Run(ctx, s.pool, jobs) {
		if r.Err != nil {
			zlog.Warn().Msgf("anchor lookup failed: error=%v", r.Err)
			continue
		}
		out = append(out, r.Value...)
	}
	return out, nil
}

func (s *AnchorsSource) seeds(artistIDs, trackIDs []string) spotify.Seeds {
	var seeds spotify.Seeds
	for _, id := range artistIDs {
		if len(seeds.Artists) == s.config.SeedArtists {
			break
		}
		seeds.Artists = append(seeds.Artists, id)
	}
	for _, id := range trackIDs {
		if seeds.Len() == spotify.MaxSeeds {
			break
		}
		seeds.Tracks = append(seeds.Tracks, id)
	}
	return seeds
}
