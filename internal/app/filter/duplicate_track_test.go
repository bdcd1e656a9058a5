package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/moodbox/internal/domain/track"
)

func poolWith(tracks ...track.Track) *Pool {
	p := NewPool(nil, nil)
	p.Accepted = append(p.Accepted, tracks...)
	return p
}

func TestDuplicateTrackFilter_ExactIDMatch(t *testing.T) {
	pool := poolWith(track.Track{
		ID:      "track123",
		Name:    "Bohemian Rhapsody",
		Artists: []string{"Queen"},
	})

	filter := NewDuplicateTrackFilter()

	// Same track ID should be rejected
	result := filter.Check(
		context.Background(),
		track.Track{
			ID:      "track123",
			Name:    "Bohemian Rhapsody - 2011 Remaster",
			Artists: []string{"Queen"},
		},
		pool,
	)

	assert.False(t, result.Accepted)
	assert.Equal(t, "duplicate_track", result.Code)
}

func TestDuplicateTrackFilter_RemasterDetection(t *testing.T) {
	tests := []struct {
		name           string
		acceptedTrack  track.Track
		requestedTrack track.Track
		shouldReject   bool
		description    string
	}{
		{
			name: "Standard remaster pattern",
			acceptedTrack: track.Track{
				ID:      "original123",
				Name:    "Bohemian Rhapsody",
				Artists: []string{"Queen"},
			},
			requestedTrack: track.Track{
				ID:      "remaster456",
				Name:    "Bohemian Rhapsody - 2011 Remaster",
				Artists: []string{"Queen"},
			},
			shouldReject: true,
			description:  "Should detect '- 2011 Remaster' as duplicate",
		},
		{
			name: "Remastered in parentheses",
			acceptedTrack: track.Track{
				ID:      "original123",
				Name:    "Yesterday",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "remaster456",
				Name:    "Yesterday (Remastered 2023)",
				Artists: []string{"The Beatles"},
			},
			shouldReject: true,
			description:  "Should detect '(Remastered 2023)' as duplicate",
		},
		{
			name: "Cover song - different artist",
			acceptedTrack: track.Track{
				ID:      "original123",
				Name:    "Yesterday",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "cover789",
				Name:    "Yesterday",
				Artists: []string{"Paul McCartney"},
			},
			shouldReject: false,
			description:  "Should allow cover by different artist",
		},
		{
			name: "Different songs - similar names",
			acceptedTrack: track.Track{
				ID:      "track1",
				Name:    "Love",
				Artists: []string{"John Lennon"},
			},
			requestedTrack: track.Track{
				ID:      "track2",
				Name:    "Love Song",
				Artists: []string{"John Lennon"},
			},
			shouldReject: false,
			description:  "Should allow different songs",
		},
		{
			name: "Radio Edit version",
			acceptedTrack: track.Track{
				ID:      "album123",
				Name:    "Stairway to Heaven",
				Artists: []string{"Led Zeppelin"},
			},
			requestedTrack: track.Track{
				ID:      "radio456",
				Name:    "Stairway to Heaven (Radio Edit)",
				Artists: []string{"Led Zeppelin"},
			},
			shouldReject: true,
			description:  "Should detect radio edit as duplicate",
		},
		{
			name: "Live version",
			acceptedTrack: track.Track{
				ID:      "studio123",
				Name:    "Hotel California",
				Artists: []string{"Eagles"},
			},
			requestedTrack: track.Track{
				ID:      "live456",
				Name:    "Hotel California - Live",
				Artists: []string{"Eagles"},
			},
			shouldReject: true,
			description:  "Should detect live version as duplicate",
		},
		{
			name: "Multiple remasters in pool",
			acceptedTrack: track.Track{
				ID:      "remaster2011",
				Name:    "Let It Be - 2011 Remaster",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "remaster2023",
				Name:    "Let It Be (Remastered 2023)",
				Artists: []string{"The Beatles"},
			},
			shouldReject: true,
			description:  "Should detect different remasters as duplicate",
		},
		{
			name: "Remix version - should be allowed",
			acceptedTrack: track.Track{
				ID:      "original123",
				Name:    "Le Freak",
				Artists: []string{"CHIC"},
			},
			requestedTrack: track.Track{
				ID:      "remix456",
				Name:    "Le Freak (Oliver Heldens Remix)",
				Artists: []string{"CHIC"},
			},
			shouldReject: false,
			description:  "Should allow remix version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewDuplicateTrackFilter()
			result := filter.Check(context.Background(), tt.requestedTrack, poolWith(tt.acceptedTrack))

			if tt.shouldReject {
				assert.False(t, result.Accepted, tt.description)
				assert.Equal(t, "duplicate_track", result.Code)
			} else {
				assert.True(t, result.Accepted, tt.description)
			}
		})
	}
}

func TestDuplicateTrackFilter_EmptyPool(t *testing.T) {
	filter := NewDuplicateTrackFilter()

	result := filter.Check(
		context.Background(),
		track.Track{
			ID:      "track123",
			Name:    "Any Song",
			Artists: []string{"Any Artist"},
		},
		NewPool(nil, nil),
	)

	assert.True(t, result.Accepted, "Should accept any track when the pool is empty")
}

func TestDuplicateTrackFilter_PoolGrows(t *testing.T) {
	filter := NewDuplicateTrackFilter()
	pool := NewPool(nil, nil)

	first := track.Track{ID: "1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}}
	assert.True(t, filter.Check(context.Background(), first, pool).Accepted)
	pool.Accepted = append(pool.Accepted, first)

	sped := track.Track{ID: "2", Name: "Neon Dreams - Sped Up", Artists: []string{"Luna Vibe"}}
	assert.False(t, filter.Check(context.Background(), sped, pool).Accepted)

	other := track.Track{ID: "3", Name: "Neon Nights", Artists: []string{"Luna Vibe"}}
	assert.True(t, filter.Check(context.Background(), other, pool).Accepted)
}

func TestNormalizeTrackName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"Bohemian Rhapsody - 2011 Remaster", "bohemian rhapsody"},
		{"Yesterday (Remastered 2023)", "yesterday"},
		{"Hotel California [Remastered]", "hotel california"},
		{"Stairway to Heaven (Radio Edit)", "stairway to heaven"},
		{"Imagine - Live", "imagine"},
		{"Let It Be (Single Version)", "let it be"},
		{"Hey Jude - Remastered Version", "hey jude"},
		{"Come Together (2019 Mix)", "come together (2019 mix)"},
		{"   Extra   Spaces   ", "extra spaces"},
		{"Night Drive - Slowed + Reverb", "night drive"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := normalizeTrackName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
