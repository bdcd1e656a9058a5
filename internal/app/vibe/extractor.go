// Package vibe turns free-text mood prompts into structured signals.
package vibe

import (
	"fmt"
	"regexp"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/vibe"
)

// IntensityThreshold is the intensity at which energy and tempo are pushed to extremes.
const IntensityThreshold = 2

var intensifiers = regexp.MustCompile(`(?i)\b(very|so|really|super|extremely|totally|incredibly|insanely|absolutely|too|af)\b`)

var comforts = map[string]string{
	"heartbroken": "Rough moment. Let these carry some of it for a while.",
	"lonely":      "You're not the only one feeling this tonight.",
	"angry":       "Turn it up and let it out.",
}

// Extractor evaluates rules in order against a prompt.
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an extractor. Without rules, DefaultRules is used.
func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract reads the prompt. When no rule sets a mood, fallback is used.
func (e *Extractor) Extract(prompt string, fallback mood.Mood) vibe.Signals {
	s := e.run(prompt)
	if s.Mood == "" {
		s.Mood = fallback
	}
	return e.finalize(prompt, s)
}

// ExtractPinned reads the prompt but keeps the mood fixed to m.
// Keywords, tone and bounds from the prompt still apply.
func (e *Extractor) ExtractPinned(prompt string, m mood.Mood) vibe.Signals {
	s := e.run(prompt)
	s.Mood = m
	return e.finalize(prompt, s)
}

// Rules returns the rule names in evaluation order.
func (e *Extractor) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func (e *Extractor) run(prompt string) vibe.Signals {
	s := vibe.Signals{}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return s
	}

	for _, r := range e.rules {
		if !r.Match(prompt) {
			continue
		}
		s = r.Apply(s)
		s.Matched = true
		zlog.Debug().Msgf("vibe rule matched: rule=%s mood=%s", r.Name, s.Mood)
	}
	return s
}

func (e *Extractor) finalize(prompt string, s vibe.Signals) vibe.Signals {
	if !s.Matched {
		s.Tone = vibe.ToneNeutral
	}

	s.Intensity = Intensity(prompt)
	if s.Intensity >= IntensityThreshold && s.Mood != "" {
		s = pushExtremes(s)
	}

	if s.Mood != "" {
		s.Energy = mood.Bucket(s.Targets().Energy)
	}
	s.Confirmation = confirmation(s)
	s.Comfort = comforts[s.Tone]
	return s
}

// Intensity counts exclamation marks and intensifier words.
func Intensity(prompt string) int {
	return strings.Count(prompt, "!") + len(intensifiers.FindAllString(prompt, -1))
}

// pushExtremes moves energy and tempo bounds away from the middle,
// in the direction the resolved energy already leans.
func pushExtremes(s vibe.Signals) vibe.Signals {
	t := s.Targets()
	if t.Energy >= 0.5 {
		s = s.Tighten(mood.FieldEnergy, min(1, t.Energy+0.15), 1)
		if t.Tempo > 0 {
			s = s.Tighten(mood.FieldTempo, t.Tempo+15, 250)
		}
		return s
	}
	s = s.Tighten(mood.FieldEnergy, 0, max(0, t.Energy-0.15))
	if t.Tempo > 0 {
		s = s.Tighten(mood.FieldTempo, 0, max(40, t.Tempo-15))
	}
	return s
}

func confirmation(s vibe.Signals) string {
	if s.Mood == "" {
		return ""
	}
	if !s.Matched {
		return fmt.Sprintf("Going with a %s mix.", strings.ToLower(string(s.Mood)))
	}

	kws := s.Keywords
	if len(kws) > 3 {
		kws = kws[:3]
	}
	msg := fmt.Sprintf("Sounds %s. Picking %s tracks with %s energy", s.Tone, s.Mood, s.Energy)
	if len(kws) > 0 {
		msg += " around " + strings.Join(kws, ", ")
	}
	return msg + "."
}
