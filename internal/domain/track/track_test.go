package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseGenres(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single genre",
			input:    "rock",
			expected: []string{"rock"},
		},
		{
			name:     "comma separated with spaces",
			input:    "rock, pop",
			expected: []string{"rock", "pop"},
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  indie rock ,dream pop  ",
			expected: []string{"indie rock", "dream pop"},
		},
		{
			name:     "empty tokens dropped",
			input:    "rock,, ,pop",
			expected: []string{"rock", "pop"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseGenres(tt.input))
		})
	}
}

func TestTrack_GenreTokens(t *testing.T) {
	tr := Track{Name: "S", Genres: []string{"rock, pop", "jazz", ""}}
	assert.Equal(t, []string{"rock", "pop", "jazz"}, tr.GenreTokens())
	assert.True(t, tr.HasGenres())

	empty := Track{Name: "E", Genres: []string{"", " "}}
	assert.Empty(t, empty.GenreTokens())
	assert.False(t, empty.HasGenres())

	assert.False(t, (&Track{Name: "N"}).HasGenres())
}

func TestTrack_IsAvailableInMarket(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		markets    []string
		isPlayable *bool
		market     string
		expected   bool
	}{
		{
			name:     "available in market using markets list",
			markets:  []string{"JP", "US", "UK"},
			market:   "JP",
			expected: true,
		},
		{
			name:     "not available in market using markets list",
			markets:  []string{"US", "UK"},
			market:   "JP",
			expected: false,
		},
		{
			name:       "isPlayable true takes precedence",
			markets:    []string{"US"},
			isPlayable: &trueVal,
			market:     "JP",
			expected:   true,
		},
		{
			name:       "isPlayable false takes precedence",
			markets:    []string{"JP", "US"},
			isPlayable: &falseVal,
			market:     "JP",
			expected:   false,
		},
		{
			name:     "empty markets list",
			markets:  []string{},
			market:   "JP",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Track{
				ID:         "test-id",
				Markets:    tt.markets,
				IsPlayable: tt.isPlayable,
			}
			assert.Equal(t, tt.expected, tr.IsAvailableInMarket(tt.market))
		})
	}
}

func TestTrack_Clone(t *testing.T) {
	playable := true
	orig := Track{
		ID:         "id-1",
		Name:       "Song",
		Artists:    []string{"A", "B"},
		Genres:     []string{"rock"},
		Duration:   3 * time.Minute,
		IsPlayable: &playable,
	}

	c := orig.Clone()
	c.Artists[0] = "changed"
	c.Genres[0] = "pop"
	*c.IsPlayable = false

	assert.Equal(t, "A", orig.Artists[0])
	assert.Equal(t, "rock", orig.Genres[0])
	assert.True(t, *orig.IsPlayable)
	assert.Equal(t, "A, B", orig.ArtistLine())
}
