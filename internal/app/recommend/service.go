// Package recommend runs the recommendation pipeline.
package recommend

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/enrich"
	"github.com/osa030/moodbox/internal/app/fetch"
	"github.com/osa030/moodbox/internal/app/filter"
	"github.com/osa030/moodbox/internal/app/language"
	"github.com/osa030/moodbox/internal/app/query"
	"github.com/osa030/moodbox/internal/app/score"
	"github.com/osa030/moodbox/internal/app/source"
	apptaste "github.com/osa030/moodbox/internal/app/taste"
	"github.com/osa030/moodbox/internal/app/vibe"
	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/config"
	"github.com/osa030/moodbox/internal/infra/metrics"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

// Catalog is everything the pipeline needs from the music catalog.
type Catalog interface {
	source.Catalog
	enrich.Catalog
	Authenticate(ctx context.Context) error
	RelatedArtists(ctx context.Context, artistID string) ([]track.Artist, error)
	Market() string
}

// DefaultRelatedArtists is the number of related artists used for expansion.
const DefaultRelatedArtists = 3

// Options tune the pipeline. Zero values take the package defaults.
type Options struct {
	DefaultLimit   int
	MaxLimit       int
	DefaultMood    mood.Mood // "" rejects prompts that match no rule
	Deadline       time.Duration
	PerQuery       int
	PoolCap        int
	MinPool        int
	GateCoverage   float64
	RelatedArtists int
}

// OptionsFromConfig converts the recommend configuration.
func OptionsFromConfig(cfg config.RecommendConfig) (Options, error) {
	opts := Options{
		DefaultLimit:   cfg.PlaylistSize,
		MaxLimit:       cfg.MaxPlaylistSize,
		Deadline:       cfg.RequestDeadline(),
		PerQuery:       cfg.PerQueryLimit,
		PoolCap:        cfg.PoolCap,
		MinPool:        cfg.MinPool,
		GateCoverage:   cfg.GateCoverage,
		RelatedArtists: cfg.RelatedArtists,
	}
	if cfg.DefaultMood != "" {
		m, err := mood.Parse(cfg.DefaultMood)
		if err != nil {
			return opts, errors.Wrap(err, "invalid default_mood")
		}
		opts.DefaultMood = m
	}
	return opts, nil
}

// Deps are the collaborators of the service.
type Deps struct {
	Catalog   Catalog
	Users     func(token string) apptaste.History // nil disables personalization
	Extractor *vibe.Extractor
	Profiles  *apptaste.Builder
	Sources   *source.Chain
	Filters   *filter.Chain
	Languages *language.Registry
	Pool      *worker.Pool
	Rand      func() *rand.Rand // nil uses a crypto-seeded source
}

// Service runs recommendation requests. It is safe for concurrent use.
type Service struct {
	catalog   Catalog
	users     func(token string) apptaste.History
	extractor *vibe.Extractor
	profiles  *apptaste.Builder
	sources   *source.Chain
	filters   *filter.Chain
	languages *language.Registry
	pool      *worker.Pool
	fetcher   *fetch.Fetcher
	enricher  *enrich.Enricher
	fallback  *query.Chain
	newRand   func() *rand.Rand
	opts      Options
}

// New creates a service.
func New(deps Deps, opts Options) *Service {
	if deps.Pool == nil {
		deps.Pool = worker.NewPool(worker.MinWorkers)
	}
	s := &Service{
		catalog:   deps.Catalog,
		users:     deps.Users,
		extractor: deps.Extractor,
		profiles:  deps.Profiles,
		sources:   deps.Sources,
		filters:   deps.Filters,
		languages: deps.Languages,
		pool:      deps.Pool,
		fetcher:   fetch.New(deps.Catalog, deps.Pool),
		enricher:  enrich.New(deps.Catalog, deps.Pool),
		fallback:  query.NewChain(),
		newRand:   deps.Rand,
		opts:      opts,
	}
	if s.extractor == nil {
		s.extractor = vibe.NewExtractor()
	}
	if s.filters == nil {
		s.filters = filter.NewChain()
	}
	if s.languages == nil {
		s.languages = language.NewRegistry(language.Builtins()...)
	}
	if s.newRand == nil {
		s.newRand = seededRand
	}
	if s.opts.DefaultLimit <= 0 {
		s.opts.DefaultLimit = 20
	}
	if s.opts.MaxLimit < s.opts.DefaultLimit {
		s.opts.MaxLimit = s.opts.DefaultLimit
	}
	if s.opts.Deadline <= 0 {
		s.opts.Deadline = 25 * time.Second
	}
	if s.opts.PerQuery <= 0 {
		s.opts.PerQuery = 20
	}
	if s.opts.PoolCap <= 0 {
		s.opts.PoolCap = 200
	}
	if s.opts.MinPool <= 0 {
		s.opts.MinPool = language.MinPool
	}
	if s.opts.GateCoverage <= 0 {
		s.opts.GateCoverage = score.ExpansionThreshold
	}
	if s.opts.RelatedArtists <= 0 {
		s.opts.RelatedArtists = DefaultRelatedArtists
	}
	return s
}

// Languages returns the language registry.
func (s *Service) Languages() *language.Registry {
	return s.languages
}

// Recommend builds a playlist for the request.
// Only bad input and catalog credential failures are returned as errors;
// every other upstream failure shrinks the candidate pool instead.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	resp, err := s.recommend(ctx, req, requestID)
	if err != nil {
		kind := Kind(err)
		metrics.RecommendErrors.WithLabelValues(kind).Inc()
		zlog.Warn().Msgf("recommendation failed: request_id=%s kind=%s error=%v", requestID, kind, err)
		return nil, err
	}

	metrics.RecommendDuration.WithLabelValues(resp.Meta.Source).Observe(time.Since(start).Seconds())
	zlog.Info().Msgf("recommendation served: request_id=%s mood=%s language=%s source=%s tracks=%d elapsed=%s",
		requestID, resp.Mood, resp.Meta.Language, resp.Meta.Source, len(resp.Tracks), time.Since(start))
	return resp, nil
}

func seededRand() *rand.Rand {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func authError(err error) error {
	if errors.Is(err, spotify.ErrConfiguration) || errors.Is(err, spotify.ErrAuth) {
		return err
	}
	return errors.Mark(errors.Wrap(err, "catalog authentication failed"), spotify.ErrAuth)
}
