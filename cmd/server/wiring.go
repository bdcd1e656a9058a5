package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/filter"
	"github.com/osa030/moodbox/internal/app/language"
	"github.com/osa030/moodbox/internal/app/recommend"
	"github.com/osa030/moodbox/internal/app/source"
	apptaste "github.com/osa030/moodbox/internal/app/taste"
	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/infra/cache"
	"github.com/osa030/moodbox/internal/infra/config"
	"github.com/osa030/moodbox/internal/infra/lastfm"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

// deps holds the long-lived collaborators of the server.
type deps struct {
	service *recommend.Service
	caches  []cache.Store
	redis   *redis.Client
}

// Close releases external connections.
func (d *deps) Close() {
	if d.redis == nil {
		return
	}
	if err := d.redis.Close(); err != nil {
		zlog.Warn().Msgf("Failed to close redis client: %v", err)
	}
}

func build(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	// Caches
	newStore := func(name string, ttl time.Duration) cache.Store {
		return cache.NewMemory(name, ttl)
	}
	if cfg.Cache.Backend == "redis" {
		client, err := cache.Connect(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to redis")
		}
		d.redis = client
		newStore = func(name string, ttl time.Duration) cache.Store {
			return cache.NewRedis(client, name, ttl)
		}
	}
	genreSeeds := newStore("genre_seeds", config.Minutes(cfg.Cache.GenreSeedsTTLMin))
	profiles := newStore("personalization", config.Minutes(cfg.Cache.PersonalizationTTLMin))
	tagStore := newStore("tags", config.Minutes(cfg.Cache.TagsTTLMin))
	d.caches = []cache.Store{genreSeeds, profiles, tagStore}
	zlog.Info().Msgf("Caches ready: backend=%s", cfg.Cache.Backend)

	// Catalog client
	sp := cfg.Spotify
	catalog := spotify.New(spotify.Config{
		ClientID:     sp.ClientID,
		ClientSecret: sp.ClientSecret,
		Market:       sp.Market,
		Transport: spotify.TransportConfig{
			RequestTimeout:      sp.RequestTimeout(),
			MaxRetries:          sp.MaxRetries,
			RetryBackoff:        sp.RetryBackoff(),
			MaxRetryAfter:       sp.MaxRetryAfter(),
			RequestsPerSecond:   sp.RequestsPerSecond,
			Burst:               sp.Burst,
			BreakerMaxRequests:  sp.Breaker.MaxRequests,
			BreakerInterval:     time.Duration(sp.Breaker.IntervalSec) * time.Second,
			BreakerTimeout:      time.Duration(sp.Breaker.TimeoutSec) * time.Second,
			BreakerMinRequests:  sp.Breaker.MinRequests,
			BreakerFailureRatio: sp.Breaker.FailureRatio,
		},
	})
	if sp.ClientID == "" || sp.ClientSecret == "" {
		zlog.Warn().Msg("Spotify credentials are not configured; requests will fail with 401")
	}

	pool := worker.NewPool(cfg.Recommend.Workers)

	// Tag service (optional)
	var tags *lastfm.Client
	if cfg.LastFM.APIKey != "" {
		client, err := lastfm.New(lastfm.Config{
			APIKey:     cfg.LastFM.APIKey,
			Timeout:    time.Duration(cfg.LastFM.TimeoutMs) * time.Millisecond,
			RetryCount: cfg.LastFM.RetryCount,
		}, tagStore)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create lastfm client")
		}
		tags = client
	} else {
		zlog.Info().Msg("Last.fm API key not set; tag enrichment disabled")
	}

	sourceDeps := source.Deps{Catalog: catalog, Pool: pool, GenreSeeds: genreSeeds}
	var tagService apptaste.TagService
	if tags != nil {
		sourceDeps.Tags = tags
		tagService = tags
	}

	sources, err := source.NewChainFromConfig(cfg.Sources, sourceDeps)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build source chain")
	}
	filters, err := filter.NewChainFromConfig(cfg, catalog.Market())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter chain")
	}
	languages, err := language.NewDefaultRegistry(languageSpecs(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build language registry")
	}
	opts, err := recommend.OptionsFromConfig(cfg.Recommend)
	if err != nil {
		return nil, err
	}

	d.service = recommend.New(recommend.Deps{
		Catalog: catalog,
		Users: func(token string) apptaste.History {
			return catalog.ForUser(token)
		},
		Profiles:  apptaste.NewBuilder(tagService, pool, profiles),
		Sources:   sources,
		Filters:   filters,
		Languages: languages,
		Pool:      pool,
	}, opts)
	return d, nil
}

func languageSpecs(cfg *config.Config) map[string]language.Spec {
	specs := make(map[string]language.Spec, len(cfg.Languages))
	for code, l := range cfg.Languages {
		specs[code] = language.Spec{Type: l.Type, Settings: l.Settings}
	}
	return specs
}
