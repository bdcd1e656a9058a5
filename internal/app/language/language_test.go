package language

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/domain/track"
)

func mustGet(t *testing.T, r *Registry, code string) Classifier {
	t.Helper()
	c, err := r.Get(code)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestBuiltins_English(t *testing.T) {
	en := mustGet(t, NewRegistry(Builtins()...), "en")

	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{
			name: "latin title and artist",
			in:   Input{Title: "Neon Dreams", Artists: []string{"Luna Vibe"}},
			want: true,
		},
		{
			name: "accented latin",
			in:   Input{Title: "Café del Mar", Artists: []string{"Energy 52"}},
			want: true,
		},
		{
			name: "devanagari title",
			in:   Input{Title: "तुम ही हो", Artists: []string{"Arijit Singh"}},
			want: false,
		},
		{
			name: "latin transliteration with film genre",
			in:   Input{Title: "Tum Hi Ho", Artists: []string{"Arijit Singh"}, Genres: []string{"filmi", "modern bollywood"}},
			want: false,
		},
		{
			name: "japanese title",
			in:   Input{Title: "夜に駆ける", Artists: []string{"YOASOBI"}},
			want: false,
		},
		{
			name: "religious word in title is not a genre marker",
			in:   Input{Title: "Sufi Dreams", Artists: []string{"Night Owls"}, Genres: []string{"chillhop"}},
			want: true,
		},
		{
			name: "no letters",
			in:   Input{Title: "1999", Artists: []string{"2112"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, en.Match(tt.in))
		})
	}
}

func TestBuiltins_Hindi(t *testing.T) {
	hi := mustGet(t, NewRegistry(Builtins()...), "hi")

	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{
			name: "devanagari title",
			in:   Input{Title: "तुम ही हो", Artists: []string{"Arijit Singh"}},
			want: true,
		},
		{
			name: "allow marker in genre",
			in:   Input{Title: "Kesariya", Artists: []string{"Pritam"}, Genres: []string{"filmi"}},
			want: true,
		},
		{
			name: "allow marker in title words",
			in:   Input{Title: "Hindi Lofi Mashup", Artists: []string{"Some DJ"}},
			want: true,
		},
		{
			name: "plain latin",
			in:   Input{Title: "Neon Dreams", Artists: []string{"Luna Vibe"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hi.Match(tt.in))
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(Builtins()...)

	c, err := r.Get("any")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = r.Get("")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = r.Get(" EN ")
	require.NoError(t, err)
	assert.Equal(t, English, c.Code())

	_, err = r.Get("xx")
	assert.True(t, errors.Is(err, ErrUnknownLanguage))

	assert.Equal(t, []Language{English, Hindi}, r.Codes())
}

func TestNewDefaultRegistry_Configured(t *testing.T) {
	r, err := NewDefaultRegistry(map[string]Spec{
		"ja": {
			Type: "script",
			Settings: map[string]any{
				"script":       "Han",
				"min_ratio":    0.15,
				"hint_queries": []any{"j-pop", "city pop"},
			},
		},
	})
	require.NoError(t, err)

	ja := mustGet(t, r, "ja")
	assert.True(t, ja.Match(Input{Title: "夜に駆ける", Artists: []string{"YOASOBI"}}))
	assert.Equal(t, []string{"j-pop", "city pop"}, ja.Hints())
	assert.Len(t, r.Codes(), 3)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		settings map[string]any
	}{
		{"unknown type", "neural", map[string]any{"script": "Latin"}},
		{"unknown script", "script", map[string]any{"script": "Klingon"}},
		{"missing script", "script", map[string]any{"min_ratio": 0.5}},
		{"ratio out of range", "script", map[string]any{"script": "Latin", "min_ratio": 1.5}},
		{"unknown forbidden script", "script", map[string]any{"script": "Latin", "forbid_scripts": []any{"Elvish"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build("xx", tt.kind, tt.settings)
			assert.Error(t, err)
		})
	}
}

func TestFilter_AnyKeepsEverything(t *testing.T) {
	tracks := []track.Track{
		{ID: "1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}},
		{ID: "2", Name: "तुम ही हो", Artists: []string{"Arijit Singh"}},
	}
	r := NewRegistry(Builtins()...)
	c, err := r.Get("any")
	require.NoError(t, err)

	assert.Equal(t, tracks, Filter(c, tracks, nil))
	for _, tr := range tracks {
		assert.True(t, Match(c, tr, nil))
	}
}

func TestFilter_ResolvesGenresByArtist(t *testing.T) {
	tracks := []track.Track{
		{ID: "1", Name: "Tum Hi Ho", Artists: []string{"Arijit Singh"}, ArtistIDs: []string{"a1"}},
		{ID: "2", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}, ArtistIDs: []string{"a2"}},
	}
	genres := map[string][]string{"a1": {"filmi"}, "a2": {"synthwave"}}

	en := mustGet(t, NewRegistry(Builtins()...), "en")
	got := Filter(en, tracks, genres)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
