package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(1000, 200)
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\n  \n "))
}

func TestSplitShortInput(t *testing.T) {
	s := NewSplitter(1000, 200)

	chunks := s.Split("hello world")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitHardCutBoundaries(t *testing.T) {
	// 2500 characters with no separators at all forces the character-level
	// fallback: expect exactly the windows 0-1000, 800-1800, 1600-2500.
	text := strings.Repeat("abcdefghij", 250)
	s := NewSplitter(1000, 200)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:1000], chunks[0])
	assert.Equal(t, text[800:1800], chunks[1])
	assert.Equal(t, text[1600:2500], chunks[2])
}

func TestSplitOverlapRegionReproducesSource(t *testing.T) {
	text := strings.Repeat("0123456789", 300)
	s := NewSplitter(1000, 200)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-200:]
		head := chunks[i+1][:200]
		assert.Equal(t, tail, head, "chunks %d and %d must share the overlap region", i, i+1)
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 120)
	s := NewSplitter(1000, 200)

	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitRespectsChunkSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("lorem ipsum dolor sit amet ", 12))
		b.WriteString("\n\n")
	}
	s := NewSplitter(1000, 200)

	chunks := s.Split(b.String())
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 1000, "chunk %d exceeds chunk size", i)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 600)
	para2 := strings.Repeat("b", 600)
	s := NewSplitter(1000, 200)

	chunks := s.Split(para1 + "\n\n" + para2)
	require.Len(t, chunks, 2)
	assert.Equal(t, para1, chunks[0])
	assert.Equal(t, para2, chunks[1])
}

func TestSplitOrderPreserving(t *testing.T) {
	var parts []string
	for i := 0; i < 26; i++ {
		parts = append(parts, strings.Repeat(string(rune('a'+i)), 400))
	}
	s := NewSplitter(1000, 200)

	chunks := s.Split(strings.Join(parts, "\n\n"))
	// First letter of each chunk must be non-decreasing over the alphabet.
	last := byte('a')
	for _, ch := range chunks {
		require.NotEmpty(t, ch)
		assert.GreaterOrEqual(t, ch[0], last)
		last = ch[0]
	}
}
