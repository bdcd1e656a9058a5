// Package vibe provides the structured signals extracted from a mood prompt.
package vibe

import "github.com/osa030/moodbox/internal/domain/mood"

// ToneNeutral is used when no rule sets a tone.
const ToneNeutral = "neutral"

// Signals is the structured reading of a free-text prompt.
type Signals struct {
	Mood         mood.Mood
	Matched      bool              // at least one rule fired
	Energy       mood.EnergyBucket // derived from resolved targets
	Tone         string
	Keywords     []string
	Overrides    mood.Overrides
	Intensity    int
	Confirmation string
	Comfort      string
}

// Clone returns a deep copy so rule effects never share state.
func (s Signals) Clone() Signals {
	out := s
	out.Keywords = append([]string(nil), s.Keywords...)
	out.Overrides = s.Overrides.Clone()
	return out
}

// WithKeywords returns a copy with kws appended, skipping duplicates.
func (s Signals) WithKeywords(kws ...string) Signals {
	out := s.Clone()
	seen := make(map[string]bool, len(out.Keywords))
	for _, k := range out.Keywords {
		seen[k] = true
	}
	for _, k := range kws {
		if !seen[k] {
			seen[k] = true
			out.Keywords = append(out.Keywords, k)
		}
	}
	return out
}

// WithTone returns a copy with the tone set, unless a tone is already present.
func (s Signals) WithTone(tone string) Signals {
	out := s.Clone()
	if out.Tone == "" {
		out.Tone = tone
	}
	return out
}

// WithMood returns a copy with the mood key overridden.
func (s Signals) WithMood(m mood.Mood) Signals {
	out := s.Clone()
	out.Mood = m
	return out
}

// Tighten returns a copy with the field bounded to [lo, hi].
func (s Signals) Tighten(f mood.Field, lo, hi float64) Signals {
	out := s.Clone()
	out.Overrides = out.Overrides.Tighten(f, lo, hi)
	return out
}

// Targets resolves the mood targets under the extracted overrides.
func (s Signals) Targets() mood.Targets {
	return mood.Resolve(s.Mood, s.Overrides)
}
