// Package mood provides the fixed mood labels and their audio targets.
package mood

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mood is one of the fixed emotion labels.
type Mood string

const (
	Happy     Mood = "Happy"
	Sad       Mood = "Sad"
	Chill     Mood = "Chill"
	Energetic Mood = "Energetic"
	Romantic  Mood = "Romantic"
	Focus     Mood = "Focus"
)

// ErrUnknownMood is returned by Parse for labels outside the fixed set.
var ErrUnknownMood = errors.New("unknown mood")

var all = []Mood{Happy, Sad, Chill, Energetic, Romantic, Focus}

// All returns every mood label in a fixed order.
func All() []Mood {
	out := make([]Mood, len(all))
	copy(out, all)
	return out
}

// Parse resolves a label case-insensitively.
func Parse(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	for _, m := range all {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownMood, "%q", s)
}

// Valid reports whether m is in the fixed set.
func (m Mood) Valid() bool {
	_, err := Parse(string(m))
	return err == nil
}

// profile holds the static per-mood data.
type profile struct {
	targets  Targets
	genres   []string
	keywords []string
	tag      string
}

// Base targets loosely follow the energy/valence quadrants.
var profiles = map[Mood]profile{
	Happy: {
		targets:  Targets{Valence: 0.8, Energy: 0.7, Danceability: 0.7, Tempo: 120},
		genres:   []string{"pop", "dance pop", "funk", "indie pop"},
		keywords: []string{"happy", "feel good", "upbeat"},
		tag:      "happy",
	},
	Sad: {
		targets:  Targets{Valence: 0.25, Energy: 0.3, Danceability: 0.35, Tempo: 75},
		genres:   []string{"acoustic", "indie folk", "singer-songwriter", "piano"},
		keywords: []string{"sad", "melancholy", "slow"},
		tag:      "sad",
	},
	Chill: {
		targets:  Targets{Valence: 0.5, Energy: 0.35, Danceability: 0.5, Tempo: 80},
		genres:   []string{"lo-fi", "chillhop", "ambient", "jazz"},
		keywords: []string{"chill", "relax", "mellow"},
		tag:      "chill",
	},
	Energetic: {
		targets:  Targets{Valence: 0.65, Energy: 0.9, Danceability: 0.7, Tempo: 135},
		genres:   []string{"edm", "rock", "hip hop", "electro"},
		keywords: []string{"energetic", "hype", "workout"},
		tag:      "energetic",
	},
	Romantic: {
		targets:  Targets{Valence: 0.6, Energy: 0.45, Danceability: 0.55, Tempo: 95},
		genres:   []string{"r&b", "soul", "soft rock", "bossa nova"},
		keywords: []string{"love", "romantic", "slow jam"},
		tag:      "romantic",
	},
	Focus: {
		targets:  Targets{Valence: 0.45, Energy: 0.4, Danceability: 0.4, Tempo: 100},
		genres:   []string{"classical", "ambient", "post-rock", "piano"},
		keywords: []string{"focus", "study", "instrumental"},
		tag:      "instrumental",
	},
}

// Base returns the unmodified targets of m.
func Base(m Mood) Targets {
	return profiles[m].targets
}

// Genres returns example genres for m.
func Genres(m Mood) []string {
	return append([]string(nil), profiles[m].genres...)
}

// Keywords returns search keywords for m.
func Keywords(m Mood) []string {
	return append([]string(nil), profiles[m].keywords...)
}

// Tag returns the folksonomy tag associated with m.
func Tag(m Mood) string {
	return profiles[m].tag
}
