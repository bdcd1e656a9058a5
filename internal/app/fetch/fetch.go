// Package fetch runs catalog searches through the worker pool.
package fetch

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/track"
)

// Searcher is the catalog search operation.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, market string) ([]track.Track, error)
}

// Options controls a fetch.
type Options struct {
	PerQuery int
	Total    int
	Market   string
}

// Fetcher runs queries in waves of the pool size.
type Fetcher struct {
	searcher Searcher
	pool     *worker.Pool
}

// New creates a fetcher.
func New(searcher Searcher, pool *worker.Pool) *Fetcher {
	return &Fetcher{searcher: searcher, pool: pool}
}

// Fetch runs queries and merges their results in query order, deduplicated
// by ID and then by key. It stops once Total tracks are collected.
// A failed query contributes nothing.
func (f *Fetcher) Fetch(ctx context.Context, queries []string, opts Options) []track.Track {
	out := make([]track.Track, 0, opts.Total)
	if opts.Total <= 0 || len(queries) == 0 {
		return out
	}

	seenIDs := make(map[string]bool)
	seenKeys := make(map[track.Key]bool)
	wave := f.pool.Workers()

	for start := 0; start < len(queries) && len(out) < opts.Total; start += wave {
		if ctx.Err() != nil {
			break
		}
		end := min(start+wave, len(queries))

		jobs := make([]worker.Job[[]track.Track], 0, end-start)
		for _, q := range queries[start:end] {
			jobs = append(jobs, func(ctx context.Context) ([]track.Track, error) {
				return f.searcher.Search(ctx, q, opts.PerQuery, opts.Market)
			})
		}

		for i, r := range worker.Run(ctx, f.pool, jobs) {
			if r.Err != nil {
				zlog.Warn().Msgf("search failed: query=%q error=%v", queries[start+i], r.Err)
				continue
			}
			for _, t := range r.Value {
				if len(out) == opts.Total {
					break
				}
				if t.ID != "" && seenIDs[t.ID] {
					continue
				}
				k := t.Key()
				if seenKeys[k] {
					continue
				}
				if t.ID != "" {
					seenIDs[t.ID] = true
				}
				seenKeys[k] = true
				out = append(out, t)
			}
		}
	}

	zlog.Debug().Msgf("fetch done: queries=%d tracks=%d", len(queries), len(out))
	return out
}
