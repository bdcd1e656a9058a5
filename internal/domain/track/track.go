// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Track represents a recommendation candidate.
// Contains only information retrieved from the catalog plus the match reason.
type Track struct {
	ID              string        // Catalog track ID
	Name            string        // Track title
	Artists         []string      // Artist names
	ArtistIDs       []string      // Contributing artist IDs
	PrimaryArtistID string        // First artist ID
	Album           string        // Album name
	AlbumArtURL     string        // Cover image URL
	PreviewURL      string        // Preview audio URL (optional)
	URL             string        // External catalog URL
	Duration        time.Duration // Track duration
	Popularity      int           // Popularity score (0-100)
	Explicit        bool          // Explicit content flag
	Markets         []string      // Available markets
	IsPlayable      *bool         // Playable in the specified market (nil if market not specified)
	Reason          string        // Human-readable match reason
}

// Artist represents a catalog artist with its genre tokens.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}

// AudioFeatures holds the sonic descriptors of a track.
// A nil field means the value is unknown, never zero.
type AudioFeatures struct {
	Valence      *float64
	Energy       *float64
	Danceability *float64
	Tempo        *float64 // BPM
}

// Value returns a pointer to v, for building AudioFeatures.
func Value(v float64) *float64 {
	return &v
}

// Key identifies a logical track across fetch paths.
// Two tracks with the same normalized title and primary artist share a key.
type Key struct {
	Title  string
	Artist string
}

var folder = cases.Fold()

// Normalize trims, NFKC-normalizes, case-folds and collapses whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the dedupe identity of the track.
func (t *Track) Key() Key {
	return Key{
		Title:  Normalize(t.Name),
		Artist: Normalize(t.PrimaryArtist()),
	}
}

// PrimaryArtist returns the first artist name or "".
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Valid reports whether the track can be emitted: non-empty title and artist.
func (t *Track) Valid() bool {
	return strings.TrimSpace(t.Name) != "" && strings.TrimSpace(t.PrimaryArtist()) != ""
}

// IsAvailableInMarket checks if the track is available in the specified market.
func (t *Track) IsAvailableInMarket(market string) bool {
	// If IsPlayable is set, it takes precedence (Track Relinking support)
	if t.IsPlayable != nil {
		return *t.IsPlayable
	}

	for _, m := range t.Markets {
		if m == market {
			return true
		}
	}
	return false
}

// Dedupe removes tracks sharing an ID or a Key, keeping the first occurrence.
func Dedupe(tracks []Track) []Track {
	seenIDs := make(map[string]bool, len(tracks))
	seenKeys := make(map[Key]bool, len(tracks))
	result := make([]Track, 0, len(tracks))

	for _, t := range tracks {
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
		result = append(result, t)
	}

	return result
}
