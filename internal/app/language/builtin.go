package language

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

const (
	English Language = "en"
	Hindi   Language = "hi"
)

// South Asian film and devotional genres. They mark a track as belonging to
// the Hindi class and keep it out of the English one.
var southAsianGenres = []string{
	"bollywood", "filmi", "desi", "hindi", "bhangra", "punjabi",
	"indian pop", "sufi", "qawwali", "bhajan", "ghazal",
}

// builtinConfigs are the classes available without configuration.
func builtinConfigs() map[Language]ScriptConfig {
	return map[Language]ScriptConfig{
		English: {
			Script:        "Latin",
			MinRatio:      0.7,
			ForbidScripts: []string{"Devanagari"},
			DenyMarkers:   southAsianGenres,
			HintQueries:   []string{"english pop", "indie", "singer-songwriter", "acoustic"},
		},
		Hindi: {
			Script:       "Devanagari",
			MinRatio:     0.3,
			AllowMarkers: []string{"bollywood", "filmi", "hindi", "desi"},
			HintQueries:  []string{"bollywood", "hindi songs", "arijit singh", "filmi"},
		},
	}
}

// Builtins returns the built-in classifiers.
func Builtins() []Classifier {
	var out []Classifier
	for code, cfg := range builtinConfigs() {
		c, err := NewScriptClassifier(code, cfg)
		if err != nil {
			// built-in tables are static
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// Build creates a classifier from a configured {type, settings} entry.
func Build(code, kind string, settings map[string]any) (Classifier, error) {
	switch kind {
	case "script", "":
		cfg, err := DecodeScriptConfig(settings)
		if err != nil {
			return nil, errors.Wrapf(err, "language %s", code)
		}
		return NewScriptClassifier(Language(code), cfg)
	default:
		return nil, errors.Newf("unknown classifier type %q for language %s", kind, code)
	}
}

// Spec is a configured language class.
type Spec struct {
	Type     string
	Settings map[string]any
}

// NewDefaultRegistry returns the built-in classes overlaid with configured
// ones. A configured code replaces the built-in of the same code.
func NewDefaultRegistry(configured map[string]Spec) (*Registry, error) {
	r := NewRegistry(Builtins()...)
	for code, spec := range configured {
		c, err := Build(code, spec.Type, spec.Settings)
		if err != nil {
			return nil, err
		}
		r.Register(c)
		zlog.Info().Msgf("language class registered: code=%s type=%s", code, spec.Type)
	}
	return r, nil
}
