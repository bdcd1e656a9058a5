// Package query builds catalog search queries from taste, mood and vibe.
package query

import (
	"fmt"
	"strings"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/vibe"
)

// Caps applied while building queries.
const (
	MaxTasteGenres = 6
	MaxGenres      = 8
	MaxArtists     = 6
	MaxKeywords    = 3
	CrossKeywords  = 2
)

// Build returns field-scoped and keyword queries for the given context.
// The result is deduplicated case-insensitively with order preserved.
func Build(p *taste.Profile, m mood.Mood, s vibe.Signals) []string {
	genres, artists, keywords := inputs(p, m, s)

	cross := keywords
	if len(cross) > CrossKeywords {
		cross = cross[:CrossKeywords]
	}

	var queries []string
	for _, g := range genres {
		for _, kw := range cross {
			queries = append(queries, fmt.Sprintf("genre:%q %s", g, kw))
		}
	}
	for _, a := range artists {
		for _, kw := range cross {
			queries = append(queries, fmt.Sprintf("artist:%q %s", a, kw))
		}
	}
	queries = append(queries, keywords...)

	return unique(queries)
}

// LanguageHints mixes hint words with keywords. Each hint is paired with the
// first keywords and then appended on its own.
func LanguageHints(hints, keywords []string) []string {
	cross := keywords
	if len(cross) > CrossKeywords {
		cross = cross[:CrossKeywords]
	}

	var queries []string
	for _, h := range hints {
		for _, kw := range cross {
			queries = append(queries, h+" "+kw)
		}
		queries = append(queries, h)
	}
	return unique(queries)
}

func inputs(p *taste.Profile, m mood.Mood, s vibe.Signals) (genres, artists, keywords []string) {
	if p != nil {
		genres = append(genres, capped(p.Tokens(), MaxTasteGenres)...)

		artists = p.TopArtistNames
		if len(artists) > MaxArtists {
			artists = artists[:MaxArtists]
		}
	}
	genres = capped(unique(append(genres, mood.Genres(m)...)), MaxGenres)
	keywords = capped(unique(append(append([]string(nil), s.Keywords...), mood.Keywords(m)...)), MaxKeywords)
	return genres, artists, keywords
}

func capped(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
