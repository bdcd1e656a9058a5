// Package combine merges ranked candidate lists into the final playlist.
package combine

import (
	"math/rand"

	"github.com/osa030/moodbox/internal/domain/track"
)

// Exclude holds tracks the caller does not want back.
type Exclude struct {
	Keys map[track.Key]bool
	IDs  map[string]bool
}

// Has reports whether t is excluded by ID or by key.
func (e Exclude) Has(t *track.Track) bool {
	if t.ID != "" && e.IDs[t.ID] {
		return true
	}
	return e.Keys[t.Key()]
}

// ShuffleWindow bounds the shuffle to the first ShuffleWindow*total merged
// tracks, so ranking still decides which tracks are eligible.
const ShuffleWindow = 2

// Combine merges lists in order, exhausting earlier lists first, drops
// duplicates, then shuffles the head of the merged result with rng and
// truncates it to total. A nil rng leaves the merge order untouched.
func Combine(lists [][]track.Track, exclude Exclude, total int, rng *rand.Rand) []track.Track {
	if total <= 0 {
		return []track.Track{}
	}

	limit := total
	if rng != nil {
		limit = total * ShuffleWindow
	}

	seenIDs := make(map[string]bool)
	seenKeys := make(map[track.Key]bool)
	out := make([]track.Track, 0, limit)

merge:
	for _, list := range lists {
		for i := range list {
			t := list[i]
			if !t.Valid() || exclude.Has(&t) {
				continue
			}
			k := t.Key()
			if seenKeys[k] || (t.ID != "" && seenIDs[t.ID]) {
				continue
			}
			seenKeys[k] = true
			if t.ID != "" {
				seenIDs[t.ID] = true
			}
			out = append(out, t)
			if len(out) == limit {
				break merge
			}
		}
	}

	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	if len(out) > total {
		out = out[:total]
	}
	return out
}
