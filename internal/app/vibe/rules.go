package vibe

import (
	"regexp"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/vibe"
)

// Rule is one (predicate, effect) pair of the extractor.
// Apply must not mutate its argument.
type Rule struct {
	Name  string
	Match func(prompt string) bool
	Apply func(vibe.Signals) vibe.Signals
}

func pattern(expr string) func(string) bool {
	re := regexp.MustCompile(`(?i)` + expr)
	return re.MatchString
}

// DefaultRules returns the built-in rules in evaluation order:
//
//	focus, workout, party, sunny, cozy, calm, late-night, romantic,
//	nostalgic, anger, lonely, heartbreak
//
// Later rules may replace the mood set by earlier ones, so distress rules
// come last and dominate mixed prompts ("party after a breakup" is Sad).
// Bounds always compose, and the first tone set is kept.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "focus",
			Match: pattern(`\b(study(ing)?|focus(ed)?|concentrat\w*|coding|homework|exams?|deadline|reading)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Focus).
					WithKeywords("focus", "study", "instrumental").
					Tighten(mood.FieldEnergy, 0, 0.5).
					WithTone("focused")
			},
		},
		{
			Name:  "workout",
			Match: pattern(`\b(work ?out|gym|run(ning)?|jog(ging)?|lifting|training|pumped|cardio)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Energetic).
					WithKeywords("workout", "gym").
					Tighten(mood.FieldEnergy, 0.75, 1).
					Tighten(mood.FieldTempo, 120, 220).
					WithTone("pumped")
			},
		},
		{
			Name:  "party",
			Match: pattern(`\b(part(y|ying)|danc(e|ing)|club(bing)?|celebrat\w*|birthday|friday night)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Happy).
					WithKeywords("party", "dance").
					Tighten(mood.FieldDanceability, 0.7, 1).
					Tighten(mood.FieldEnergy, 0.65, 1).
					WithTone("celebratory")
			},
		},
		{
			Name:  "sunny",
			Match: pattern(`\b(sunny|sunshine|summer|beach|road ?trip|good day|great day|vacation|holiday)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Happy).
					WithKeywords("summer", "sunshine").
					Tighten(mood.FieldValence, 0.65, 1).
					WithTone("sunny")
			},
		},
		{
			Name:  "cozy",
			Match: pattern(`\b(rain(y|ing|s)?|cozy|cosy|coffee|cloudy|storm(y)?|drizzl\w*)\b|\bcaf(e|é)`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Chill).
					WithKeywords("rain", "lofi", "ambient").
					Tighten(mood.FieldEnergy, 0, 0.4).
					Tighten(mood.FieldTempo, 0, 90).
					WithTone("cozy")
			},
		},
		{
			Name:  "calm",
			Match: pattern(`\b(calm|relax\w*|unwind\w*|peaceful|meditat\w*|chill(ing|ed)?|lazy|sunday morning)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Chill).
					WithKeywords("relax", "calm").
					Tighten(mood.FieldEnergy, 0, 0.45).
					WithTone("calm")
			},
		},
		{
			Name:  "late-night",
			Match: pattern(`\b(late[- ]night|midnight|sleep\w*|bedtime|insomnia|can'?t sleep|[1-4] ?am)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Chill).
					WithKeywords("sleep", "night").
					Tighten(mood.FieldEnergy, 0, 0.3).
					Tighten(mood.FieldTempo, 0, 85).
					WithTone("late-night")
			},
		},
		{
			Name:  "romantic",
			Match: pattern(`\b(in love|love|crush|date night|romance|romantic|valentine\w*|kiss(es|ing)?|anniversary|honeymoon)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Romantic).
					WithKeywords("love", "romantic").
					Tighten(mood.FieldValence, 0.45, 1).
					Tighten(mood.FieldEnergy, 0, 0.7).
					WithTone("romantic")
			},
		},
		{
			Name:  "nostalgic",
			Match: pattern(`\b(nostalgi\w*|memories|remember|old times|childhood|throwback|back in the day|[6-9]0s)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithKeywords("throwback", "nostalgia").
					Tighten(mood.FieldValence, 0, 0.65).
					WithTone("nostalgic")
			},
		},
		{
			Name:  "anger",
			Match: pattern(`\b(angry|anger|furious|rage|pissed( off)?|hate|annoyed|frustrat\w*)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Energetic).
					WithKeywords("rage", "intense").
					Tighten(mood.FieldEnergy, 0.75, 1).
					Tighten(mood.FieldValence, 0, 0.5).
					WithTone("angry")
			},
		},
		{
			Name:  "lonely",
			Match: pattern(`\b(lonely|loneliness|alone|by myself|no one|nobody)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Sad).
					WithKeywords("lonely").
					Tighten(mood.FieldValence, 0, 0.35).
					WithTone("lonely")
			},
		},
		{
			Name:  "heartbreak",
			Match: pattern(`\b(sad|cry(ing)?|cried|tears|heart ?broken|heartbreak|broke up|break ?up|dumped|miss (him|her|them|you)|mad at me|upset|depress\w*|hurt(s|ing)?)\b`),
			Apply: func(s vibe.Signals) vibe.Signals {
				return s.WithMood(mood.Sad).
					WithKeywords("heartbreak", "sad").
					Tighten(mood.FieldValence, 0, 0.3).
					Tighten(mood.FieldEnergy, 0, 0.5).
					WithTone("heartbroken")
			},
		},
	}
}
