package score

import (
	"fmt"
	"strings"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
)

// Reason explains a score in one short line.
func Reason(s Scored, p *taste.Profile, m mood.Mood) string {
	var parts []string

	if !p.IsEmpty() {
		switch libraryTier(s.Track, p) {
		case tierTop:
			parts = append(parts, "one of your top tracks")
		case tierSaved:
			parts = append(parts, "in your saved tracks")
		case tierRecent:
			parts = append(parts, "recently played")
		}

		if len(parts) == 0 {
			switch artistAffinity(s.Track, p) {
			case affinityPrimary:
				parts = append(parts, fmt.Sprintf("because you listen to %s", s.Track.PrimaryArtist()))
			case affinityAny:
				parts = append(parts, "features an artist you like")
			}
		}

		if g := sharedGenre(s.Genres, p.Tokens()); g != "" && len(parts) == 0 {
			parts = append(parts, fmt.Sprintf("matches your %s taste", g))
		}
	}

	label := strings.ToLower(string(m))
	switch {
	case s.Mood >= 0.8:
		parts = append(parts, fmt.Sprintf("strong %s vibe", label))
	case s.Mood >= 0.6:
		parts = append(parts, fmt.Sprintf("fits a %s mood", label))
	case len(parts) == 0:
		parts = append(parts, fmt.Sprintf("a %s pick for variety", label))
	}

	out := strings.Join(parts, ", ")
	return strings.ToUpper(out[:1]) + out[1:]
}

func sharedGenre(trackGenres, tasteGenres []string) string {
	liked := make(map[string]bool, len(tasteGenres))
	for _, g := range tasteGenres {
		liked[strings.ToLower(g)] = true
	}
	for _, g := range trackGenres {
		if liked[strings.ToLower(g)] {
			return g
		}
	}
	return ""
}
