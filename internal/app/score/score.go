// Package score computes match scores for candidate tracks and ranks them.
//
// All functions here are pure: for the same inputs they return the same
// result, and they never mutate their arguments.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/osa030/moodbox/internal/app/language"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/track"
)

// Final score weights.
const (
	WeightTaste    = 0.5
	WeightMood     = 0.4
	WeightLanguage = 0.1
)

// Mood distance weights and policies.
const (
	weightValence      = 0.35
	weightEnergy       = 0.35
	weightDanceability = 0.2
	weightTempo        = 0.1

	// MissingPenalty is the distance term of an unknown feature.
	MissingPenalty = 0.6
	// TempoSpan is the BPM difference treated as a full mismatch.
	TempoSpan = 80.0
)

// Taste weights and library tiers.
const (
	weightLibrary = 0.5
	weightArtist  = 0.3
	weightGenre   = 0.2

	tierTop    = 1.0
	tierSaved  = 0.9
	tierRecent = 0.7

	affinityPrimary = 1.0
	affinityAny     = 0.7
)

// ExpansionThreshold is the anchor gate coverage below which the pool is
// expanded through related artists.
const ExpansionThreshold = 0.35

// Candidate is a track with its enrichment.
type Candidate struct {
	Track    track.Track
	Features track.AudioFeatures
	Genres   []string // resolved artist genres
}

// Breakdown holds the sub-scores and the final score.
type Breakdown struct {
	Mood     float64
	Taste    float64
	Language float64
	Total    float64
}

// Scored is a candidate with its breakdown.
type Scored struct {
	Candidate
	Breakdown
}

// MoodMatch converts the weighted distance between features and targets into
// a similarity in [0,1]. An unset tempo target drops the tempo term.
func MoodMatch(f track.AudioFeatures, t mood.Targets) float64 {
	type term struct {
		weight float64
		dist   float64
	}

	unit := func(v *float64, target float64) float64 {
		if v == nil {
			return MissingPenalty
		}
		return math.Abs(*v - target)
	}

	terms := []term{
		{weightValence, unit(f.Valence, t.Valence)},
		{weightEnergy, unit(f.Energy, t.Energy)},
		{weightDanceability, unit(f.Danceability, t.Danceability)},
	}
	if t.Tempo > 0 {
		d := MissingPenalty
		if f.Tempo != nil {
			d = math.Min(math.Abs(*f.Tempo-t.Tempo)/TempoSpan, 1)
		}
		terms = append(terms, term{weightTempo, d})
	}

	var sum, weights float64
	for _, tm := range terms {
		sum += tm.weight * tm.dist * tm.dist
		weights += tm.weight
	}
	return clamp01(1 - math.Sqrt(sum/weights))
}

// TasteMatch scores how well a candidate fits the listener's history.
// An empty profile scores 0.
func TasteMatch(c Candidate, p *taste.Profile) float64 {
	if p.IsEmpty() {
		return 0
	}
	return clamp01(weightLibrary*libraryTier(c.Track, p) +
		weightArtist*artistAffinity(c.Track, p) +
		weightGenre*genreRatio(c.Genres, p.Tokens()))
}

func libraryTier(t track.Track, p *taste.Profile) float64 {
	switch {
	case t.ID == "":
		return 0
	case p.TopTrackIDs[t.ID]:
		return tierTop
	case p.SavedTrackIDs[t.ID]:
		return tierSaved
	case p.RecentTrackIDs[t.ID]:
		return tierRecent
	default:
		return 0
	}
}

func artistAffinity(t track.Track, p *taste.Profile) float64 {
	if (t.PrimaryArtistID != "" && p.ArtistIDs[t.PrimaryArtistID]) || p.HasArtistName(t.PrimaryArtist()) {
		return affinityPrimary
	}
	for _, id := range t.ArtistIDs {
		if p.ArtistIDs[id] {
			return affinityAny
		}
	}
	for _, name := range t.Artists {
		if p.HasArtistName(name) {
			return affinityAny
		}
	}
	return 0
}

// genreRatio is |trackGenres ∩ tasteGenres| / |trackGenres| over distinct genres.
// Taste genres include the listener's tags.
func genreRatio(trackGenres, tasteGenres []string) float64 {
	if len(trackGenres) == 0 || len(tasteGenres) == 0 {
		return 0
	}
	liked := make(map[string]bool, len(tasteGenres))
	for _, g := range tasteGenres {
		liked[strings.ToLower(g)] = true
	}
	seen := make(map[string]bool, len(trackGenres))
	hits := 0
	for _, g := range trackGenres {
		g = strings.ToLower(g)
		if seen[g] {
			continue
		}
		seen[g] = true
		if liked[g] {
			hits++
		}
	}
	return float64(hits) / float64(len(seen))
}

// LanguageMatch is 1 when unconstrained, otherwise the classifier verdict.
func LanguageMatch(c Candidate, cls language.Classifier) float64 {
	if cls == nil {
		return 1
	}
	if cls.Match(language.Input{Title: c.Track.Name, Artists: c.Track.Artists, Genres: c.Genres}) {
		return 1
	}
	return 0
}

// Score computes the breakdown of one candidate.
func Score(c Candidate, targets mood.Targets, p *taste.Profile, cls language.Classifier) Breakdown {
	b := Breakdown{
		Mood:     MoodMatch(c.Features, targets),
		Taste:    TasteMatch(c, p),
		Language: LanguageMatch(c, cls),
	}
	b.Total = WeightTaste*b.Taste + WeightMood*b.Mood + WeightLanguage*b.Language
	return b
}

// ScoreAll scores candidates in order.
func ScoreAll(cands []Candidate, targets mood.Targets, p *taste.Profile, cls language.Classifier) []Scored {
	out := make([]Scored, len(cands))
	for i, c := range cands {
		out[i] = Scored{Candidate: c, Breakdown: Score(c, targets, p, cls)}
	}
	return out
}

// Rank returns a copy sorted by descending total. Ties keep input order.
func Rank(scored []Scored) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// Coverage is the fraction of tracks passing the hard mood gate.
// Tracks without features count as failing.
func Coverage(tracks []track.Track, m mood.Mood, features map[string]track.AudioFeatures) float64 {
	if len(tracks) == 0 {
		return 0
	}
	pass := 0
	for _, t := range tracks {
		if mood.Gate(m, features[t.ID]) {
			pass++
		}
	}
	return float64(pass) / float64(len(tracks))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
