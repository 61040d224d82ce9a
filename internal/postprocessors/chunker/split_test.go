package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func joinPieces(pieces [][]rune) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(string(p))
	}
	return b.String()
}

func TestSplitRecursive(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"paragraphs", "aaaa\n\nbbbb", 6, []string{"aaaa", "\n\nbbbb"}},
		{"falls back to sentences", "one. two. six", 6, []string{"one", ". two", ". six"}},
		{"recurses into oversized pieces", "one. two. three", 6, []string{"one", ". two", ".", " three"}},
		{"falls back to characters", "abcdefgh", 3, []string{"abc", "def", "gh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := splitRecursive([]rune(tt.text), DefaultSeparators, tt.budget)
			got := make([]string, len(pieces))
			for i, p := range pieces {
				got[i] = string(p)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, joinPieces(pieces))
		})
	}
}

func TestSplitRecursive_NeverExceedsBudget(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor.\nsit amet\n\n", 30) + strings.Repeat("z", 77)
	for _, budget := range []int{1, 7, 25, 100} {
		pieces := splitRecursive([]rune(text), DefaultSeparators, budget)
		for _, p := range pieces {
			assert.LessOrEqual(t, len(p), budget)
			assert.NotEmpty(t, p)
		}
		assert.Equal(t, text, joinPieces(pieces))
	}
}

func TestMergeSpans(t *testing.T) {
	pieces := [][]rune{[]rune("aa"), []rune("bbb"), []rune("c"), []rune("dddd")}

	tests := []struct {
		name          string
		first, budget int
		want          []span
	}{
		{"same limits", 5, 5, []span{{0, 5}, {5, 10}}},
		{"wider first span", 7, 5, []span{{0, 6}, {6, 10}}},
		{"everything fits the first span", 10, 2, []span{{0, 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeSpans(pieces, tt.first, tt.budget))
		})
	}
}

func TestIndexRunes(t *testing.T) {
	text := []rune("héllo wörld")
	assert.Equal(t, 5, indexRunes(text, []rune(" "), 0))
	assert.Equal(t, 7, indexRunes(text, []rune("ö"), 0))
	assert.Equal(t, -1, indexRunes(text, []rune("ö"), 8))
	assert.Equal(t, -1, indexRunes(text, nil, 0))
}
