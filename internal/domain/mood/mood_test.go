package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/domain/track"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mood
		wantErr bool
	}{
		{in: "Happy", want: Happy},
		{in: "  chill ", want: Chill},
		{in: "FOCUS", want: Focus},
		{in: "grumpy", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownMood)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_AlwaysPopulated(t *testing.T) {
	for _, m := range All() {
		t.Run(string(m), func(t *testing.T) {
			got := Resolve(m, Overrides{})
			assert.Greater(t, got.Valence, 0.0)
			assert.Greater(t, got.Energy, 0.0)
			assert.Greater(t, got.Danceability, 0.0)
			assert.Greater(t, got.Tempo, 0.0)
			assert.NotEmpty(t, Genres(m))
			assert.NotEmpty(t, Keywords(m))
			assert.NotEmpty(t, Tag(m))
		})
	}
}

func TestResolve_ClampsIntoOverrides(t *testing.T) {
	o := Overrides{}.
		Tighten(FieldEnergy, 0, 0.3).
		Tighten(FieldTempo, 120, 200)

	got := Resolve(Chill, o)

	assert.InDelta(t, 0.3, got.Energy, 1e-9)
	assert.InDelta(t, 120, got.Tempo, 1e-9)
	assert.InDelta(t, Base(Chill).Valence, got.Valence, 1e-9)
}

func TestOverrides_Tighten(t *testing.T) {
	tests := []struct {
		name string
		ops  [][2]float64
		want Range
	}{
		{name: "single bound", ops: [][2]float64{{0, 0.5}}, want: Range{0, 0.5}},
		{name: "composes max of mins", ops: [][2]float64{{0.2, 1}, {0.4, 1}}, want: Range{0.4, 1}},
		{name: "composes min of maxes", ops: [][2]float64{{0, 0.6}, {0, 0.4}}, want: Range{0, 0.4}},
		{name: "conflict takes newer bound", ops: [][2]float64{{0, 0.3}, {0.7, 1}}, want: Range{0.7, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Overrides{}
			for _, op := range tt.ops {
				o = o.Tighten(FieldValence, op[0], op[1])
			}
			require.NotNil(t, o.Valence)
			assert.Equal(t, tt.want, *o.Valence)
		})
	}
}

func TestOverrides_TightenDoesNotMutate(t *testing.T) {
	a := Overrides{}.Tighten(FieldEnergy, 0, 0.5)
	b := a.Tighten(FieldEnergy, 0, 0.2)

	assert.Equal(t, 0.5, a.Energy.Max)
	assert.Equal(t, 0.2, b.Energy.Max)
}

func TestGate(t *testing.T) {
	v := track.Value

	tests := []struct {
		name     string
		mood     Mood
		features track.AudioFeatures
		want     bool
	}{
		{
			name:     "happy passes",
			mood:     Happy,
			features: track.AudioFeatures{Valence: v(0.7), Energy: v(0.6), Tempo: v(110)},
			want:     true,
		},
		{
			name:     "happy too slow",
			mood:     Happy,
			features: track.AudioFeatures{Valence: v(0.7), Energy: v(0.6), Tempo: v(90)},
			want:     false,
		},
		{
			name:     "happy unknown valence",
			mood:     Happy,
			features: track.AudioFeatures{Energy: v(0.6), Tempo: v(110)},
			want:     false,
		},
		{
			name:     "sad passes",
			mood:     Sad,
			features: track.AudioFeatures{Valence: v(0.2), Energy: v(0.3)},
			want:     true,
		},
		{
			name:     "energetic passes",
			mood:     Energetic,
			features: track.AudioFeatures{Energy: v(0.9), Tempo: v(128)},
			want:     true,
		},
		{
			name:     "focus too danceable",
			mood:     Focus,
			features: track.AudioFeatures{Energy: v(0.3), Danceability: v(0.9)},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Gate(tt.mood, tt.features))
		})
	}
}

func TestBucket(t *testing.T) {
	assert.Equal(t, EnergyLow, Bucket(0.35))
	assert.Equal(t, EnergyMid, Bucket(0.5))
	assert.Equal(t, EnergyHigh, Bucket(0.9))
}
