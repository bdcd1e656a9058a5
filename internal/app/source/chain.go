package source

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/moodbox/internal/domain/track"
)

// Batch is the output of one source.
type Batch struct {
	DisplayName string
	Kind        string
	Tracks      []track.Track
	Err         error
}

// Gathered holds every batch in source order.
type Gathered struct {
	Batches []Batch
}

// Anchors returns the tracks of anchor-kind sources, in source order.
func (g Gathered) Anchors() []track.Track {
	var out []track.Track
	for _, b := range g.Batches {
		if b.Kind == KindAnchors {
			out = append(out, b.Tracks...)
		}
	}
	return out
}

// All returns every track, in source order.
func (g Gathered) All() []track.Track {
	var out []track.Track
	for _, b := range g.Batches {
		out = append(out, b.Tracks...)
	}
	return out
}

// WithMetadata wraps a source with its metadata.
type WithMetadata struct {
	Source      Source
	DisplayName string
}

// Chain runs every source and keeps their results in order.
type Chain struct {
	sources []WithMetadata
}

// NewChain creates a new source chain.
func NewChain(sources []WithMetadata) *Chain {
	return &Chain{
		sources: sources,
	}
}

// Sources returns the configured sources.
func (c *Chain) Sources() []WithMetadata {
	return c.sources
}

// Gather runs all sources concurrently. A failed source contributes nothing.
func (c *Chain) Gather(ctx context.Context, in Input) Gathered {
	batches := make([]Batch, len(c.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, sm := range c.sources {
		g.Go(func() error {
			start := time.Now()
			tracks, err := sm.Source.Candidates(gctx, in)
			batches[i] = Batch{DisplayName: sm.DisplayName, Kind: sm.Source.Name(), Tracks: tracks, Err: err}

			if err != nil {
				zlog.Warn().Msgf("source failed: source=%s error=%v", sm.DisplayName, err)
				batches[i].Tracks = nil
				return nil
			}
			zlog.Debug().Msgf("source returned candidates: source=%s type=%s count=%d elapsed=%s",
				sm.DisplayName, sm.Source.Name(), len(tracks), time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	return Gathered{Batches: batches}
}
