package query

import (
	"context"
	"fmt"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/domain/vibe"
)

// Shape builds one family of fallback queries.
type Shape struct {
	Name  string
	Build func(p *taste.Profile, m mood.Mood, s vibe.Signals) []string
}

// Shapes returns the fallback query shapes, from most to least specific.
func Shapes() []Shape {
	return []Shape{
		{Name: "field_scoped", Build: Build},
		{Name: "plain", Build: plain},
		{Name: "mood_phrase", Build: moodPhrase},
		{Name: "mood_name", Build: func(_ *taste.Profile, m mood.Mood, _ vibe.Signals) []string {
			return []string{strings.ToLower(string(m))}
		}},
	}
}

// plain drops field filters and pairs genres with keywords as free text.
func plain(p *taste.Profile, m mood.Mood, s vibe.Signals) []string {
	genres, _, keywords := inputs(p, m, s)
	var queries []string
	for i, g := range genres {
		if i < len(keywords) {
			queries = append(queries, g+" "+keywords[i])
		}
		queries = append(queries, g)
	}
	return unique(append(queries, keywords...))
}

func moodPhrase(_ *taste.Profile, m mood.Mood, s vibe.Signals) []string {
	label := strings.ToLower(string(m))
	queries := []string{
		fmt.Sprintf("%s songs", label),
		fmt.Sprintf("%s playlist", label),
	}
	if s.Tone != "" && s.Tone != vibe.ToneNeutral {
		queries = append([]string{fmt.Sprintf("%s %s songs", s.Tone, label)}, queries...)
	}
	return unique(queries)
}

// Runner executes a batch of queries and returns what it found.
type Runner func(ctx context.Context, queries []string) []track.Track

// Chain tries shapes in order.
type Chain struct {
	shapes []Shape
}

// NewChain creates a chain. Without shapes, Shapes is used.
func NewChain(shapes ...Shape) *Chain {
	if len(shapes) == 0 {
		shapes = Shapes()
	}
	return &Chain{shapes: shapes}
}

// First runs each shape and returns the first non-empty result with the
// name of the shape that produced it.
func (c *Chain) First(ctx context.Context, p *taste.Profile, m mood.Mood, s vibe.Signals, run Runner) ([]track.Track, string) {
	for _, shape := range c.shapes {
		if ctx.Err() != nil {
			return nil, ""
		}
		queries := shape.Build(p, m, s)
		if len(queries) == 0 {
			continue
		}
		tracks := run(ctx, queries)
		zlog.Debug().Msgf("fallback shape tried: shape=%s queries=%d tracks=%d", shape.Name, len(queries), len(tracks))
		if len(tracks) > 0 {
			return tracks, shape.Name
		}
	}
	return nil, ""
}
