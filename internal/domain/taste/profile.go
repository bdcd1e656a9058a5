// Package taste provides the listener taste profile.
package taste

import (
	"sort"
	"strings"
)

// MaxRanked caps the genre and tag lists.
const MaxRanked = 12

// Profile summarizes a listener's history. It is read-only once built.
type Profile struct {
	UserID         string
	ArtistNames    map[string]bool // lower-cased
	ArtistIDs      map[string]bool
	Genres         []string // frequency-ranked, capped
	Tags           []string // frequency-ranked, capped
	TopTrackIDs    map[string]bool
	SavedTrackIDs  map[string]bool
	RecentTrackIDs map[string]bool
	TopArtistIDs   []string // ranked, for seeding
	TopArtistNames []string // ranked, for queries and tag lookups
	TopTrackSeeds  []string // ranked top-track IDs, for seeding
}

// Empty returns a profile with empty sets, used for anonymous listeners.
func Empty() *Profile {
	return &Profile{
		ArtistNames:    map[string]bool{},
		ArtistIDs:      map[string]bool{},
		TopTrackIDs:    map[string]bool{},
		SavedTrackIDs:  map[string]bool{},
		RecentTrackIDs: map[string]bool{},
	}
}

// Tokens returns genres followed by tags, deduplicated case-insensitively.
func (p *Profile) Tokens() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool, len(p.Genres)+len(p.Tags))
	out := make([]string, 0, len(p.Genres)+len(p.Tags))
	for _, list := range [][]string{p.Genres, p.Tags} {
		for _, v := range list {
			k := strings.ToLower(strings.TrimSpace(v))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

// IsEmpty reports whether the profile carries no signal.
func (p *Profile) IsEmpty() bool {
	return p == nil || (len(p.ArtistIDs) == 0 && len(p.ArtistNames) == 0 && len(p.Genres) == 0 && len(p.Tags) == 0 &&
		len(p.TopTrackIDs) == 0 && len(p.SavedTrackIDs) == 0 && len(p.RecentTrackIDs) == 0)
}

// IsAnonymous reports whether the profile belongs to no listener.
func (p *Profile) IsAnonymous() bool {
	return p == nil || p.UserID == ""
}

// HasArtistName checks membership case-insensitively.
func (p *Profile) HasArtistName(name string) bool {
	if p == nil || name == "" {
		return false
	}
	return p.ArtistNames[strings.ToLower(strings.TrimSpace(name))]
}

// AddArtist records an artist ID and name.
func (p *Profile) AddArtist(id, name string) {
	if id != "" {
		p.ArtistIDs[id] = true
	}
	if name != "" {
		p.ArtistNames[strings.ToLower(strings.TrimSpace(name))] = true
	}
}

// Rank sorts counted names by descending count, ties by name, and keeps the top n.
func Rank(counts map[string]int, n int) []string {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name: name, count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	result := make([]string, 0, n)
	for i := 0; i < n && i < len(entries); i++ {
		result = append(result, entries[i].name)
	}
	return result
}
