// Package taste builds listener taste profiles from listening history.
package taste

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/moodbox/internal/app/worker"
	domain "github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/cache"
	"github.com/osa030/moodbox/internal/infra/lastfm"
)

// History fetch limits.
const (
	TopArtistLimit = 20
	TopTrackLimit  = 20
	SavedLimit     = 50
	RecentLimit    = 50
	TagArtistLimit = 10
	TagsPerArtist  = 5
)

// History is a listener's catalog history.
type History interface {
	CurrentUserID(ctx context.Context) (string, error)
	TopArtists(ctx context.Context, limit int) ([]track.Artist, error)
	TopTracks(ctx context.Context, limit int) ([]track.Track, error)
	SavedTracks(ctx context.Context, limit int) ([]track.Track, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]track.Track, error)
}

// TagService returns folksonomy tags for an artist.
type TagService interface {
	ArtistTopTags(ctx context.Context, artist string, limit int) ([]lastfm.Tag, error)
}

// Builder assembles profiles.
type Builder struct {
	tags  TagService
	pool  *worker.Pool
	cache *cache.Typed[domain.Profile]
}

// NewBuilder creates a builder. tags and store may be nil.
func NewBuilder(tags TagService, pool *worker.Pool, store cache.Store) *Builder {
	b := &Builder{tags: tags, pool: pool}
	if store != nil {
		b.cache = cache.NewTyped[domain.Profile](store)
	}
	return b
}

// Build returns the profile of the listener behind user.
// A nil user, or one whose identity cannot be resolved, yields an anonymous
// empty profile. Individual history failures leave their part empty.
func (b *Builder) Build(ctx context.Context, user History) *domain.Profile {
	if user == nil {
		return domain.Empty()
	}

	userID, err := user.CurrentUserID(ctx)
	if err != nil || userID == "" {
		zlog.Warn().Msgf("listener lookup failed, continuing anonymously: error=%v", err)
		return domain.Empty()
	}

	if b.cache != nil {
		if p, ok := b.cache.Get(ctx, userID); ok {
			zlog.Debug().Msgf("taste profile cache hit: user=%s", userID)
			return &p
		}
	}

	var (
		artists            []track.Artist
		top, saved, recent []track.Track
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if artists, err = user.TopArtists(gctx, TopArtistLimit); err != nil {
			warnPart("top artists", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if top, err = user.TopTracks(gctx, TopTrackLimit); err != nil {
			warnPart("top tracks", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if saved, err = user.SavedTracks(gctx, SavedLimit); err != nil {
			warnPart("saved tracks", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = user.RecentlyPlayed(gctx, RecentLimit); err != nil {
			warnPart("recently played", err)
		}
		return nil
	})
	_ = g.Wait()

	p := assemble(userID, artists, top, saved, recent)
	p.Tags = b.tagsFor(ctx, tagArtists(p, top, saved, recent))

	zlog.Info().Msgf("taste profile built: user=%s artists=%d genres=%d tags=%d top=%d saved=%d recent=%d",
		userID, len(p.ArtistIDs), len(p.Genres), len(p.Tags), len(p.TopTrackIDs), len(p.SavedTrackIDs), len(p.RecentTrackIDs))

	if b.cache != nil {
		b.cache.Set(ctx, userID, *p)
	}
	return p
}

func warnPart(part string, err error) {
	zlog.Warn().Msgf("history fetch failed: part=%s error=%v", part, err)
}

func assemble(userID string, artists []track.Artist, top, saved, recent []track.Track) *domain.Profile {
	p := domain.Empty()
	p.UserID = userID

	genreCounts := map[string]int{}
	for _, a := range artists {
		p.AddArtist(a.ID, a.Name)
		if a.ID != "" {
			p.TopArtistIDs = append(p.TopArtistIDs, a.ID)
		}
		if a.Name != "" {
			p.TopArtistNames = append(p.TopArtistNames, a.Name)
		}
		for _, g := range a.Genres {
			if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
				genreCounts[g]++
			}
		}
	}
	p.Genres = domain.Rank(genreCounts, domain.MaxRanked)

	addTracks := func(tracks []track.Track, set map[string]bool) {
		for _, t := range tracks {
			if t.ID != "" {
				set[t.ID] = true
			}
			for i, id := range t.ArtistIDs {
				name := ""
				if i < len(t.Artists) {
					name = t.Artists[i]
				}
				p.AddArtist(id, name)
			}
		}
	}
	addTracks(top, p.TopTrackIDs)
	addTracks(saved, p.SavedTrackIDs)
	addTracks(recent, p.RecentTrackIDs)

	for _, t := range top {
		if t.ID != "" {
			p.TopTrackSeeds = append(p.TopTrackSeeds, t.ID)
		}
	}
	return p
}

// tagArtists picks up to TagArtistLimit distinct artist names, top artists first.
func tagArtists(p *domain.Profile, lists ...[]track.Track) []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		k := strings.ToLower(strings.TrimSpace(name))
		if k == "" || seen[k] || len(names) >= TagArtistLimit {
			return
		}
		seen[k] = true
		names = append(names, name)
	}
	for _, n := range p.TopArtistNames {
		add(n)
	}
	for _, l := range lists {
		for _, t := range l {
			add(t.PrimaryArtist())
		}
	}
	return names
}

func (b *Builder) tagsFor(ctx context.Context, artists []string) []string {
	if b.tags == nil || len(artists) == 0 {
		return nil
	}

	jobs := make([]worker.Job[[]lastfm.Tag], len(artists))
	for i, name := range artists {
		jobs[i] = func(ctx context.Context) ([]lastfm.Tag, error) {
			return b.tags.ArtistTopTags(ctx, name, TagsPerArtist)
		}
	}

	counts := map[string]int{}
	for i, r := range worker.Run(ctx, b.pool, jobs) {
		if r.Err != nil {
			zlog.Debug().Msgf("artist tags unavailable: artist=%s error=%v", artists[i], r.Err)
			continue
		}
		for _, t := range r.Value {
			if name := strings.ToLower(strings.TrimSpace(t.Name)); name != "" {
				counts[name]++
			}
		}
	}
	return domain.Rank(counts, domain.MaxRanked)
}
