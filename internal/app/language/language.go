// Package language classifies candidate tracks into language classes.
package language

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/moodbox/internal/domain/track"
)

// Language is a language class code such as "en" or "hi".
type Language string

// Any means no language constraint.
const Any Language = "any"

// MinPool is the pool size below which hint queries pad the candidates.
const MinPool = 10

// ErrUnknownLanguage is returned for codes without a registered classifier.
var ErrUnknownLanguage = errors.New("unknown language")

// Input is what a classifier looks at.
type Input struct {
	Title   string
	Artists []string
	Genres  []string // resolved artist genres
}

// Classifier decides membership in one language class.
type Classifier interface {
	// Code returns the language class code.
	Code() Language
	// Match reports whether the input belongs to the class.
	Match(in Input) bool
	// Hints returns search keywords strongly associated with the class.
	Hints() []string
}

// Registry maps codes to classifiers.
type Registry struct {
	classifiers map[Language]Classifier
}

// NewRegistry creates a registry holding the given classifiers.
func NewRegistry(classifiers ...Classifier) *Registry {
	r := &Registry{classifiers: make(map[Language]Classifier)}
	for _, c := range classifiers {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a classifier.
func (r *Registry) Register(c Classifier) {
	r.classifiers[c.Code()] = c
}

// Get returns the classifier for code. Any and "" resolve to a nil
// classifier, meaning unconstrained.
func (r *Registry) Get(code string) (Classifier, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	if lang == "" || lang == Any {
		return nil, nil
	}
	c, ok := r.classifiers[lang]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLanguage, "%q", code)
	}
	return c, nil
}

// Codes returns the registered codes in sorted order.
func (r *Registry) Codes() []Language {
	codes := make([]Language, 0, len(r.classifiers))
	for code := range r.classifiers {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Lookup returns the registered classifier for code.
func (r *Registry) Lookup(code Language) (Classifier, bool) {
	c, ok := r.classifiers[code]
	return c, ok
}

// InputFor builds the classifier input for a track, resolving genres by
// artist ID.
func InputFor(t track.Track, genres map[string][]string) Input {
	in := Input{Title: t.Name, Artists: t.Artists}
	for _, id := range t.ArtistIDs {
		in.Genres = append(in.Genres, genres[id]...)
	}
	return in
}

// Match reports whether t passes c. A nil classifier passes everything.
func Match(c Classifier, t track.Track, genres map[string][]string) bool {
	if c == nil {
		return true
	}
	return c.Match(InputFor(t, genres))
}

// Filter keeps the tracks that pass c, in order.
func Filter(c Classifier, tracks []track.Track, genres map[string][]string) []track.Track {
	if c == nil {
		return tracks
	}
	out := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if c.Match(InputFor(t, genres)) {
			out = append(out, t)
		}
	}
	return out
}
