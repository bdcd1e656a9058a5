package filter

import (
	"context"

	"github.com/osa030/moodbox/internal/domain/track"
)

// ExclusionFilter rejects tracks the caller asked to exclude, by ID or by
// normalized title and primary artist.
type ExclusionFilter struct{}

func (f *ExclusionFilter) Name() string {
	return "exclusion_filter"
}

func (f *ExclusionFilter) Description() string {
	return "Rejects tracks listed in the request's exclude list"
}

func (f *ExclusionFilter) ReturnCodes() []string {
	return []string{"excluded"}
}

func (f *ExclusionFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ExclusionFilter) Check(ctx context.Context, t track.Track, p *Pool) Result {
	if p == nil {
		return Accept()
	}
	if t.ID != "" && p.ExcludeIDs[t.ID] {
		return Reject("excluded")
	}
	if p.ExcludeKeys[t.Key()] {
		return Reject("excluded")
	}
	return Accept()
}

func init() {
	Register("exclusion_filter", func() Filter {
		return &ExclusionFilter{}
	})
}
