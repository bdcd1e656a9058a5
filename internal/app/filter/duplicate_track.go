package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/moodbox/internal/domain/track"
)

// DuplicateTrackFilter rejects candidates already accepted in this request.
// Detects:
// - Exact track ID matches
// - Remasters and alternate versions (normalized track name + same artist)
// Excludes:
// - Cover songs (same track name but different artist)
type DuplicateTrackFilter struct{}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{}
}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Description returns the filter description.
func (f *DuplicateTrackFilter) Description() string {
	return "Rejects tracks already in the pool, including remasters and alternate versions. Covers by other artists are kept"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{"duplicate_track"}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the track duplicates one already accepted.
func (f *DuplicateTrackFilter) Check(ctx context.Context, t track.Track, p *Pool) Result {
	p.index()

	if t.ID != "" && p.acceptedIDs[t.ID] {
		return Reject("duplicate_track")
	}
	if p.acceptedSongs[songOf(t)] {
		return Reject("duplicate_track")
	}
	return Accept()
}

// song identifies a recording regardless of remaster or version.
type song struct {
	name   string
	artist string
}

func songOf(t track.Track) song {
	return song{name: normalizeTrackName(t.Name), artist: strings.ToLower(t.PrimaryArtist())}
}

// index folds newly accepted tracks into the lookup sets.
func (p *Pool) index() {
	if p.acceptedIDs == nil || p.indexed > len(p.Accepted) {
		p.acceptedIDs = map[string]bool{}
		p.acceptedSongs = map[song]bool{}
		p.indexed = 0
	}
	for _, t := range p.Accepted[p.indexed:] {
		if t.ID != "" {
			p.acceptedIDs[t.ID] = true
		}
		if len(t.Artists) > 0 {
			p.acceptedSongs[songOf(t)] = true
		}
	}
	p.indexed = len(p.Accepted)
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),              // "[Any Remaster text]"
	}

	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
		regexp.MustCompile(`\s*-?\s*live`),             // "- Live"
		regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
		regexp.MustCompile(`\s*-?\s*sped\s+up`),        // "- Sped Up"
		regexp.MustCompile(`\s*-?\s*slowed(\s*\+\s*reverb)?`),
	}

	spaces = regexp.MustCompile(`\s+`)
)

// normalizeTrackName removes remaster information and version details.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = spaces.ReplaceAllString(normalized, " ")

	// Remove trailing dashes
	normalized = strings.TrimRight(normalized, " -")

	return normalized
}

func init() {
	Register("duplicate_track_filter", func() Filter {
		return NewDuplicateTrackFilter()
	})
}
