package recommend

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/moodbox/internal/app/language"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/domain/vibe"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

// ErrBadInput marks requests that cannot be served as given.
var ErrBadInput = errors.New("bad input")

// Where the tracks of a response mainly came from.
const (
	SourcePersonalized = "personalized"
	SourceMood         = "mood"
	SourceFallback     = "fallback"
)

// Error kinds, used for metrics and status mapping.
const (
	KindBadInput = "bad_input"
	KindAuth     = "auth"
	KindInternal = "internal"
)

// Request is a recommendation request.
type Request struct {
	Mood     string
	Prompt   string
	Language string
	Limit    int
	// Exclude holds catalog IDs, track URLs or URIs, or "Title - Artist" pairs.
	Exclude   []string
	UserToken string
}

// Response is a recommendation result.
type Response struct {
	Mood   mood.Mood
	Tracks []track.Track
	Meta   Meta
}

// Meta describes how a response was produced.
type Meta struct {
	Source       string
	Confirmation string
	Comfort      string
	RequestID    string
	Language     string
}

// Kind classifies an error returned by Recommend.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrBadInput):
		return KindBadInput
	case errors.Is(err, spotify.ErrAuth), errors.Is(err, spotify.ErrConfiguration):
		return KindAuth
	default:
		return KindInternal
	}
}

// ParseExclude splits exclude entries into track IDs and title/artist keys.
func ParseExclude(entries []string) (map[string]bool, map[track.Key]bool) {
	ids := map[string]bool{}
	keys := map[track.Key]bool{}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if title, artist, ok := strings.Cut(e, " - "); ok {
			t := track.Track{Name: title, Artists: []string{artist}}
			keys[t.Key()] = true
			continue
		}
		if id := spotify.TrackID(e); id != "" {
			ids[id] = true
		}
	}
	return ids, keys
}

// plan is a validated request.
type plan struct {
	mood        mood.Mood
	signals     vibe.Signals
	lang        language.Classifier
	limit       int
	excludeIDs  map[string]bool
	excludeKeys map[track.Key]bool
}

func (p *plan) language() string {
	if p.lang == nil {
		return string(language.Any)
	}
	return string(p.lang.Code())
}

func (s *Service) validate(req Request) (*plan, error) {
	label := strings.TrimSpace(req.Mood)
	prompt := strings.TrimSpace(req.Prompt)
	if label == "" && prompt == "" {
		return nil, errors.Mark(errors.New("mood or prompt is required"), ErrBadInput)
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.opts.DefaultLimit
	}
	if limit < 1 || limit > s.opts.MaxLimit {
		return nil, errors.Mark(errors.Newf("limit must be between 1 and %d", s.opts.MaxLimit), ErrBadInput)
	}

	lang, err := s.languages.Get(req.Language)
	if err != nil {
		return nil, errors.Mark(err, ErrBadInput)
	}

	var signals vibe.Signals
	if label != "" {
		m, err := mood.Parse(label)
		if err != nil {
			return nil, errors.Mark(err, ErrBadInput)
		}
		// an explicit mood wins; the prompt still shapes keywords and bounds
		signals = s.extractor.ExtractPinned(prompt, m)
	} else {
		signals = s.extractor.Extract(prompt, s.opts.DefaultMood)
		if signals.Mood == "" {
			return nil, errors.Mark(errors.Newf("could not resolve a mood from prompt %q", prompt), ErrBadInput)
		}
	}

	ids, keys := ParseExclude(req.Exclude)
	return &plan{
		mood:        signals.Mood,
		signals:     signals,
		lang:        lang,
		limit:       limit,
		excludeIDs:  ids,
		excludeKeys: keys,
	}, nil
}
