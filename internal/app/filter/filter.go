// Package filter provides the filter chain for candidate pools.
package filter

import (
	"context"
	"sort"

	"github.com/osa030/moodbox/internal/domain/track"
)

// Pool is the request-scoped state filters check against.
type Pool struct {
	// Accepted holds the tracks already let through in this request.
	Accepted []track.Track
	// ExcludeIDs and ExcludeKeys hold the tracks the caller does not want.
	ExcludeIDs  map[string]bool
	ExcludeKeys map[track.Key]bool

	acceptedIDs   map[string]bool
	acceptedSongs map[song]bool
	indexed       int
}

// NewPool creates request state from caller exclusions.
func NewPool(excludeIDs map[string]bool, excludeKeys map[track.Key]bool) *Pool {
	if excludeIDs == nil {
		excludeIDs = map[string]bool{}
	}
	if excludeKeys == nil {
		excludeKeys = map[track.Key]bool{}
	}
	return &Pool{ExcludeIDs: excludeIDs, ExcludeKeys: excludeKeys}
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "duplicate_track", "market_restriction"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for candidate filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Check performs the filter check.
	Check(ctx context.Context, t track.Track, p *Pool) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// Names returns the registered filter names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
