package recommend

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/combine"
	"github.com/osa030/moodbox/internal/app/enrich"
	"github.com/osa030/moodbox/internal/app/fetch"
	"github.com/osa030/moodbox/internal/app/filter"
	"github.com/osa030/moodbox/internal/app/query"
	"github.com/osa030/moodbox/internal/app/score"
	"github.com/osa030/moodbox/internal/app/source"
	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/metrics"
)

// run holds the state of one request as it moves through the pipeline.
type run struct {
	plan       *plan
	profile    *taste.Profile
	input      source.Input
	state      *filter.Pool
	candidates []track.Track
	enrichment enrich.Result
	anchorIDs  map[string]bool
	fallback   bool
}

func (s *Service) recommend(ctx context.Context, req Request, requestID string) (*Response, error) {
	p, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Deadline)
	defer cancel()

	if err := s.catalog.Authenticate(ctx); err != nil {
		return nil, authError(err)
	}

	r := &run{
		plan:      p,
		profile:   s.profile(ctx, req.UserToken),
		state:     filter.NewPool(p.excludeIDs, p.excludeKeys),
		anchorIDs: map[string]bool{},
	}
	r.input = source.Input{
		Profile: r.profile,
		Mood:    p.mood,
		Signals: p.signals,
		Targets: p.signals.Targets(),
		Market:  s.catalog.Market(),
	}
	zlog.Debug().Msgf("request planned: request_id=%s mood=%s tone=%s keywords=%v anonymous=%t",
		requestID, p.mood, p.signals.Tone, p.signals.Keywords, r.profile.IsAnonymous())

	s.gather(ctx, r)
	s.expand(ctx, r)
	s.fill(ctx, r)

	ranked := s.rank(r, r.candidates)
	metrics.PoolSize.WithLabelValues("scored").Observe(float64(len(ranked)))
	if p.lang != nil {
		ranked = s.constrainLanguage(ctx, r, ranked)
		metrics.PoolSize.WithLabelValues("language").Observe(float64(len(ranked)))
	}

	tracks := s.assemble(r, ranked)
	metrics.PoolSize.WithLabelValues("final").Observe(float64(len(tracks)))

	return &Response{
		Mood:   p.mood,
		Tracks: tracks,
		Meta: Meta{
			Source:       r.sourceOf(tracks),
			Confirmation: p.signals.Confirmation,
			Comfort:      p.signals.Comfort,
			RequestID:    requestID,
			Language:     p.language(),
		},
	}, nil
}

func (s *Service) profile(ctx context.Context, token string) *taste.Profile {
	if token == "" || s.users == nil || s.profiles == nil {
		return taste.Empty()
	}
	return s.profiles.Build(ctx, s.users(token))
}

// gather runs the configured sources, filters the union and enriches it.
func (s *Service) gather(ctx context.Context, r *run) {
	if s.sources == nil {
		return
	}
	gathered := s.sources.Gather(ctx, r.input)
	for _, t := range gathered.Anchors() {
		r.anchorIDs[t.ID] = true
	}

	all := track.Dedupe(gathered.All())
	if len(all) > s.opts.PoolCap {
		all = all[:s.opts.PoolCap]
	}
	metrics.PoolSize.WithLabelValues("gathered").Observe(float64(len(all)))

	r.candidates = s.filters.Apply(ctx, all, r.state)
	metrics.PoolSize.WithLabelValues("filtered").Observe(float64(len(r.candidates)))

	r.enrichment = s.enricher.Enrich(ctx, enrich.TrackIDs(r.candidates), enrich.ArtistIDs(r.candidates))
}

// expand adds top tracks of related artists when too few anchors fit the mood.
func (s *Service) expand(ctx context.Context, r *run) {
	anchors := r.anchors()
	if len(anchors) == 0 {
		return
	}
	coverage := score.Coverage(anchors, r.plan.mood, r.enrichment.Features)
	if coverage >= s.opts.GateCoverage {
		return
	}
	zlog.Debug().Msgf("anchor coverage below threshold: coverage=%.2f threshold=%.2f", coverage, s.opts.GateCoverage)

	extra := s.filters.Apply(ctx, s.relatedTracks(ctx, r.profile, anchors), r.state)
	if len(extra) == 0 {
		return
	}
	metrics.PoolExpansions.WithLabelValues("related_artists").Inc()
	s.add(ctx, r, extra)
}

// fill runs the fallback query chain when the pool is too small.
func (s *Service) fill(ctx context.Context, r *run) {
	if len(r.candidates) >= s.opts.MinPool {
		return
	}
	found, shape := s.fallback.First(ctx, r.profile, r.plan.mood, r.plan.signals, func(ctx context.Context, queries []string) []track.Track {
		return s.filters.Apply(ctx, s.fetcher.Fetch(ctx, queries, s.fetchOptions(r.input.Market)), r.state)
	})
	if len(found) == 0 {
		return
	}
	zlog.Debug().Msgf("fallback search filled pool: shape=%s count=%d", shape, len(found))
	metrics.PoolExpansions.WithLabelValues("fallback_search").Inc()
	r.fallback = true
	s.add(ctx, r, found)
}

func (s *Service) constrainLanguage(ctx context.Context, r *run, ranked []score.Scored) []score.Scored {
	matched := keepLanguage(ranked)
	if len(matched) >= s.opts.MinPool {
		return matched
	}

	keywords := append(append([]string(nil), r.plan.signals.Keywords...), mood.Keywords(r.plan.mood)...)
	queries := query.LanguageHints(r.plan.lang.Hints(), keywords)
	if len(queries) == 0 {
		return matched
	}
	extra := s.filters.Apply(ctx, s.fetcher.Fetch(ctx, queries, s.fetchOptions(r.input.Market)), r.state)
	if len(extra) == 0 {
		return matched
	}
	metrics.PoolExpansions.WithLabelValues("language_hints").Inc()
	s.add(ctx, r, extra)
	return score.Rank(append(matched, keepLanguage(s.rank(r, extra))...))
}

// assemble puts gate-passing anchors first, then the ranked pool.
func (s *Service) assemble(r *run, ranked []score.Scored) []track.Track {
	maxAnchors := (r.plan.limit + 1) / 2
	var anchors []track.Track
	all := make([]track.Track, 0, len(ranked))
	for _, sc := range ranked {
		t := sc.Track
		t.Reason = score.Reason(sc, r.profile, r.plan.mood)
		all = append(all, t)
		if r.anchorIDs[t.ID] && len(anchors) < maxAnchors && mood.Gate(r.plan.mood, sc.Features) {
			anchors = append(anchors, t)
		}
	}

	tracks := combine.Combine([][]track.Track{anchors, all}, combine.Exclude{
		Keys: r.plan.excludeKeys,
		IDs:  r.plan.excludeIDs,
	}, r.plan.limit, s.newRand())
	if tracks == nil {
		tracks = []track.Track{}
	}
	return tracks
}

func (s *Service) relatedTracks(ctx context.Context, p *taste.Profile, anchors []track.Track) []track.Track {
	seeds := p.TopArtistIDs
	if len(seeds) == 0 {
		fromAnchors := map[string]bool{}
		for _, t := range anchors {
			if t.PrimaryArtistID != "" && !fromAnchors[t.PrimaryArtistID] {
				fromAnchors[t.PrimaryArtistID] = true
				seeds = append(seeds, t.PrimaryArtistID)
			}
		}
	}
	if len(seeds) == 0 || s.opts.RelatedArtists <= 0 {
		return nil
	}
	seeds = seeds[:min(len(seeds), s.opts.RelatedArtists)]

	jobs := make([]worker.Job[[]track.Artist], len(seeds))
	for i, id := range seeds {
		jobs[i] = func(ctx context.Context) ([]track.Artist, error) {
			return s.catalog.RelatedArtists(ctx, id)
		}
	}

	seen := map[string]bool{}
	var related []string
	for i, res := range worker.Run(ctx, s.pool, jobs) {
		if res.Err != nil {
			zlog.Warn().Msgf("failed to fetch related artists: artist_id=%s error=%v", seeds[i], res.Err)
			continue
		}
		for _, a := range res.Value {
			if len(related) >= s.opts.RelatedArtists {
				break
			}
			if a.ID == "" || seen[a.ID] || p.ArtistIDs[a.ID] {
				continue
			}
			seen[a.ID] = true
			related = append(related, a.ID)
		}
	}

	trackJobs := make([]worker.Job[[]track.Track], len(related))
	for i, id := range related {
		trackJobs[i] = func(ctx context.Context) ([]track.Track, error) {
			return s.catalog.ArtistTopTracks(ctx, id, s.catalog.Market())
		}
	}
	var out []track.Track
	for i, res := range worker.Run(ctx, s.pool, trackJobs) {
		if res.Err != nil {
			zlog.Warn().Msgf("failed to fetch related artist tracks: artist_id=%s error=%v", related[i], res.Err)
			continue
		}
		out = append(out, res.Value...)
	}
	return out
}

// add merges tracks and their enrichment into the pool.
func (s *Service) add(ctx context.Context, r *run, tracks []track.Track) {
	r.enrichment.Merge(s.enricher.Enrich(ctx, enrich.TrackIDs(tracks), enrich.ArtistIDs(tracks)))
	r.candidates = append(r.candidates, tracks...)
}

func (s *Service) rank(r *run, tracks []track.Track) []score.Scored {
	cands := make([]score.Candidate, len(tracks))
	for i, t := range tracks {
		cands[i] = score.Candidate{
			Track:    t,
			Features: r.enrichment.Features[t.ID],
			Genres:   r.enrichment.GenresOf(t),
		}
	}
	return score.Rank(score.ScoreAll(cands, r.input.Targets, r.profile, r.plan.lang))
}

func (s *Service) fetchOptions(market string) fetch.Options {
	return fetch.Options{PerQuery: s.opts.PerQuery, Total: s.opts.PoolCap, Market: market}
}

func keepLanguage(ranked []score.Scored) []score.Scored {
	out := make([]score.Scored, 0, len(ranked))
	for _, sc := range ranked {
		if sc.Language == 1 {
			out = append(out, sc)
		}
	}
	return out
}

func (r *run) anchors() []track.Track {
	var out []track.Track
	for _, t := range r.candidates {
		if r.anchorIDs[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (r *run) sourceOf(tracks []track.Track) string {
	for _, t := range tracks {
		if r.anchorIDs[t.ID] {
			return SourcePersonalized
		}
	}
	if r.fallback {
		return SourceFallback
	}
	return SourceMood
}
