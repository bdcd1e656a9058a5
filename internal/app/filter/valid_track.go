package filter

import (
	"context"

	"github.com/osa030/moodbox/internal/domain/track"
)

// ValidTrackFilter rejects tracks without a title or an artist.
type ValidTrackFilter struct{}

func (f *ValidTrackFilter) Name() string {
	return "valid_track"
}

func (f *ValidTrackFilter) Description() string {
	return "Rejects tracks with an empty title or no artist"
}

func (f *ValidTrackFilter) ReturnCodes() []string {
	return []string{"invalid_track"}
}

func (f *ValidTrackFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ValidTrackFilter) Check(ctx context.Context, t track.Track, p *Pool) Result {
	if !t.Valid() {
		return Reject("invalid_track")
	}
	return Accept()
}

func init() {
	Register("valid_track", func() Filter {
		return &ValidTrackFilter{}
	})
}
