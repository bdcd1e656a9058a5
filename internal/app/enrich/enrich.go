// Package enrich attaches audio features and artist genres to candidates.
package enrich

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/track"
)

// Batch ceilings of the catalog lookups.
const (
	FeatureChunk = 100
	ArtistChunk  = 50
)

// Catalog provides the batch lookups.
type Catalog interface {
	AudioFeatures(ctx context.Context, ids []string) (map[string]track.AudioFeatures, error)
	Artists(ctx context.Context, ids []string) ([]track.Artist, error)
}

// Result holds enrichment keyed by track ID and artist ID.
// Entries the catalog did not return are absent.
type Result struct {
	Features map[string]track.AudioFeatures
	Genres   map[string][]string
}

// Merge copies other into r. Existing entries are kept.
func (r *Result) Merge(other Result) {
	if r.Features == nil {
		r.Features = map[string]track.AudioFeatures{}
	}
	if r.Genres == nil {
		r.Genres = map[string][]string{}
	}
	for id, f := range other.Features {
		if _, ok := r.Features[id]; !ok {
			r.Features[id] = f
		}
	}
	for id, g := range other.Genres {
		if _, ok := r.Genres[id]; !ok {
			r.Genres[id] = g
		}
	}
}

// GenresOf returns the union of the artist genres of t, in artist order.
func (r Result) GenresOf(t track.Track) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range t.ArtistIDs {
		for _, g := range r.Genres[id] {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	return out
}

// Enricher runs chunked lookups through the worker pool.
type Enricher struct {
	catalog Catalog
	pool    *worker.Pool
}

// New creates an enricher.
func New(catalog Catalog, pool *worker.Pool) *Enricher {
	return &Enricher{catalog: catalog, pool: pool}
}

// Enrich looks up features for trackIDs and genres for artistIDs.
// Failed chunks are logged and leave their entries absent.
func (e *Enricher) Enrich(ctx context.Context, trackIDs, artistIDs []string) Result {
	res := Result{
		Features: map[string]track.AudioFeatures{},
		Genres:   map[string][]string{},
	}

	var jobs []worker.Job[Result]
	for _, chunk := range chunks(trackIDs, FeatureChunk) {
		jobs = append(jobs, func(ctx context.Context) (Result, error) {
			f, err := e.catalog.AudioFeatures(ctx, chunk)
			return Result{Features: f}, err
		})
	}
	for _, chunk := range chunks(artistIDs, ArtistChunk) {
		jobs = append(jobs, func(ctx context.Context) (Result, error) {
			artists, err := e.catalog.Artists(ctx, chunk)
			if err != nil {
				return Result{}, err
			}
			genres := make(map[string][]string, len(artists))
			for _, a := range artists {
				genres[a.ID] = a.Genres
			}
			return Result{Genres: genres}, nil
		})
	}

	for _, r := range worker.Run(ctx, e.pool, jobs) {
		if r.Err != nil {
			zlog.Warn().Msgf("enrichment chunk failed: error=%v", r.Err)
			continue
		}
		res.Merge(r.Value)
	}

	zlog.Debug().Msgf("enrichment done: tracks=%d features=%d artists=%d genres=%d",
		len(trackIDs), len(res.Features), len(artistIDs), len(res.Genres))
	return res
}

// TrackIDs returns the distinct IDs of tracks.
func TrackIDs(tracks []track.Track) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.ID)
	}
	return distinct(out)
}

// ArtistIDs returns the distinct artist IDs of tracks.
func ArtistIDs(tracks []track.Track) []string {
	var out []string
	for _, t := range tracks {
		out = append(out, t.ArtistIDs...)
	}
	return distinct(out)
}

func chunks(ids []string, size int) [][]string {
	ids = distinct(ids)
	var out [][]string
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
