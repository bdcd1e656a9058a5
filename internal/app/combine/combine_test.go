package combine

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/domain/track"
)

func tr(id, name, artist string) track.Track {
	return track.Track{ID: id, Name: name, Artists: []string{artist}}
}

func ids(tracks []track.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestCombine_MergeOrder(t *testing.T) {
	anchors := []track.Track{tr("a1", "One", "X"), tr("a2", "Two", "X")}
	pool := []track.Track{tr("p1", "Three", "Y"), tr("p2", "Four", "Y"), tr("p3", "Five", "Y")}

	got := Combine([][]track.Track{anchors, pool}, Exclude{}, 4, nil)
	assert.Equal(t, []string{"a1", "a2", "p1", "p2"}, ids(got))
}

func TestCombine_DedupeAcrossPaths(t *testing.T) {
	// the same song reached through anchors and search under different IDs
	anchors := []track.Track{tr("id-1", "Neon Dreams", "Luna Vibe")}
	pool := []track.Track{
		tr("id-2", "  neon   DREAMS ", "luna vibe"),
		tr("id-1", "Neon Dreams (Live)", "Luna Vibe"),
		tr("id-3", "Other", "Luna Vibe"),
	}

	got := Combine([][]track.Track{anchors, pool}, Exclude{}, 10, nil)
	assert.Equal(t, []string{"id-1", "id-3"}, ids(got))
}

func TestCombine_ExcludeAndInvalid(t *testing.T) {
	neon := tr("id-1", "Neon Dreams", "Luna Vibe")
	pool := []track.Track{
		neon,
		tr("id-2", "Blocked", "Z"),
		{ID: "id-3", Name: "", Artists: []string{"Nobody"}},
		{ID: "id-4", Name: "No Artist"},
		tr("id-5", "Kept", "Z"),
	}
	ex := Exclude{
		Keys: map[track.Key]bool{neon.Key(): true},
		IDs:  map[string]bool{"id-2": true},
	}

	got := Combine([][]track.Track{pool}, ex, 10, nil)
	assert.Equal(t, []string{"id-5"}, ids(got))
}

func TestCombine_Bounds(t *testing.T) {
	pool := []track.Track{tr("1", "A", "X"), tr("2", "B", "X"), tr("3", "C", "X")}

	tests := []struct {
		name  string
		total int
		want  int
	}{
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"under", 2, 2},
		{"exact", 3, 3},
		{"over", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine([][]track.Track{pool}, Exclude{}, tt.total, rand.New(rand.NewSource(1)))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCombine_ShuffleIsSeeded(t *testing.T) {
	var pool []track.Track
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		pool = append(pool, tr(id, "Song "+id, "Artist"))
	}

	first := Combine([][]track.Track{pool}, Exclude{}, 20, rand.New(rand.NewSource(7)))
	second := Combine([][]track.Track{pool}, Exclude{}, 20, rand.New(rand.NewSource(7)))
	require.Equal(t, ids(first), ids(second))

	// shuffling permutes but never drops
	got := ids(first)
	want := ids(pool)
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestCombine_ShuffleBeforeTruncate(t *testing.T) {
	var pool []track.Track
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("t%02d", i)
		pool = append(pool, tr(id, "Song "+id, "Artist"))
	}
	window := map[string]bool{}
	for _, id := range ids(pool[:10*ShuffleWindow]) {
		window[id] = true
	}

	emitted := map[string]bool{}
	for seed := int64(0); seed < 200; seed++ {
		got := Combine([][]track.Track{pool}, Exclude{}, 10, rand.New(rand.NewSource(seed)))
		require.Len(t, got, 10)
		for _, id := range ids(got) {
			assert.True(t, window[id], "track %s outside the shuffle window", id)
			emitted[id] = true
		}
	}
	// membership rotates across seeds instead of pinning the top ten
	assert.Greater(t, len(emitted), 10)
}

func TestCombine_TruncateWithoutShuffle(t *testing.T) {
	pool := []track.Track{tr("1", "A", "X"), tr("2", "B", "X"), tr("3", "C", "X"), tr("4", "D", "X")}

	got := Combine([][]track.Track{pool}, Exclude{}, 2, nil)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}
