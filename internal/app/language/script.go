package language

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// ScriptConfig represents the configuration for ScriptClassifier.
type ScriptConfig struct {
	Script        string   `yaml:"script" mapstructure:"script" validate:"required"`
	MinRatio      float64  `yaml:"min_ratio" mapstructure:"min_ratio" default:"0.7" validate:"gt=0,lte=1"`
	ForbidScripts []string `yaml:"forbid_scripts" mapstructure:"forbid_scripts"`
	AllowMarkers  []string `yaml:"allow_markers" mapstructure:"allow_markers"`
	DenyMarkers   []string `yaml:"deny_markers" mapstructure:"deny_markers"`
	HintQueries   []string `yaml:"hint_queries" mapstructure:"hint_queries"`
}

// ScriptClassifier classifies by writing system, with marker overrides.
//
// Layers, in order:
//  1. an allow marker in the genres, title or artists accepts;
//  2. a deny marker in the genres rejects;
//  3. otherwise at least MinRatio of the title and artist letters (and
//     combining marks) must be in Script, with none in a forbidden script.
type ScriptClassifier struct {
	code   Language
	cfg    ScriptConfig
	script *unicode.RangeTable
	forbid []*unicode.RangeTable
	allow  []string
	deny   []string
}

// NewScriptClassifier builds a classifier from a validated config.
func NewScriptClassifier(code Language, cfg ScriptConfig) (*ScriptClassifier, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for language %s", code)
	}

	table, ok := unicode.Scripts[cfg.Script]
	if !ok {
		return nil, errors.Newf("unknown script %q for language %s", cfg.Script, code)
	}

	c := &ScriptClassifier{
		code:   code,
		cfg:    cfg,
		script: table,
		allow:  lowerAll(cfg.AllowMarkers),
		deny:   lowerAll(cfg.DenyMarkers),
	}
	for _, name := range cfg.ForbidScripts {
		t, ok := unicode.Scripts[name]
		if !ok {
			return nil, errors.Newf("unknown forbidden script %q for language %s", name, code)
		}
		c.forbid = append(c.forbid, t)
	}
	return c, nil
}

// DecodeScriptConfig decodes YAML settings into a ScriptConfig.
func DecodeScriptConfig(settings map[string]any) (ScriptConfig, error) {
	var cfg ScriptConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return cfg, errors.Wrap(err, "failed to decode settings")
	}
	return cfg, nil
}

func (c *ScriptClassifier) Code() Language {
	return c.code
}

func (c *ScriptClassifier) Hints() []string {
	return c.cfg.HintQueries
}

func (c *ScriptClassifier) Match(in Input) bool {
	genres := lowerAll(in.Genres)
	text := " " + wordsOf(in.Title, in.Artists) + " "

	for _, m := range c.allow {
		if containsAny(genres, m) || strings.Contains(text, " "+m+" ") {
			return true
		}
	}
	for _, m := range c.deny {
		if containsAny(genres, m) {
			return false
		}
	}

	letters, inScript := 0, 0
	for _, s := range append([]string{in.Title}, in.Artists...) {
		for _, r := range s {
			// vowel signs count with their script
			if !unicode.IsLetter(r) && !unicode.IsMark(r) {
				continue
			}
			for _, f := range c.forbid {
				if unicode.Is(f, r) {
					return false
				}
			}
			letters++
			if unicode.Is(c.script, r) {
				inScript++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(inScript)/float64(letters) >= c.cfg.MinRatio
}

func containsAny(values []string, marker string) bool {
	for _, v := range values {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// wordsOf lower-cases the title and artists and reduces punctuation to spaces.
func wordsOf(title string, artists []string) string {
	s := strings.ToLower(title + " " + strings.Join(artists, " "))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
