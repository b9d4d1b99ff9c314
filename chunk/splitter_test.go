package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct strips each chunk's overlap prefix and concatenates the rest.
func reconstruct(t *testing.T, s *Splitter, text string) string {
	t.Helper()
	var b strings.Builder
	for _, c := range s.Split(text) {
		runes := []rune(c.Text)
		require.LessOrEqual(t, c.Overlap, len(runes))
		b.WriteString(string(runes[c.Overlap:]))
	}
	return b.String()
}

func TestNewSplitter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := NewSplitter()
		require.NoError(t, err)
		assert.Equal(t, DefaultSize, s.Size())
		assert.Equal(t, DefaultOverlap, s.Overlap())
	})

	t.Run("options", func(t *testing.T) {
		s, err := NewSplitter(WithSize(40), WithOverlap(10))
		require.NoError(t, err)
		assert.Equal(t, 40, s.Size())
		assert.Equal(t, 10, s.Overlap())
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := NewSplitter(WithSize(0))
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("rejects negative overlap", func(t *testing.T) {
		_, err := NewSplitter(WithOverlap(-1))
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})

	t.Run("rejects overlap >= size", func(t *testing.T) {
		_, err := NewSplitter(WithSize(20), WithOverlap(20))
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})
}

func TestSplit_Empty(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)
	assert.Empty(t, s.Split(""))
}

func TestSplit_ShortText(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	chunks := s.Split("short enough")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "short enough", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Overlap)
}

func TestSplit_RespectsSizeLimit(t *testing.T) {
	s, err := NewSplitter(WithSize(50), WithOverlap(10))
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 50, "chunk %d too long", c.Index)
	}
}

func TestSplit_IndicesSequential(t *testing.T) {
	s, err := NewSplitter(WithSize(30), WithOverlap(5))
	require.NoError(t, err)

	text := strings.Repeat("alpha beta gamma delta ", 8)
	for i, c := range s.Split(text) {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplit_OverlapCarried(t *testing.T) {
	s, err := NewSplitter(WithSize(40), WithOverlap(10))
	require.NoError(t, err)

	text := strings.Repeat("one two three four five six ", 6)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		n := chunks[i].Overlap
		require.LessOrEqual(t, n, len(prev))
		assert.Equal(t, string(prev[len(prev)-n:]), string(cur[:n]),
			"chunk %d overlap prefix does not match previous tail", i)
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"paragraphs", "First paragraph with some words in it.\n\nSecond paragraph carries on the thought.\n\nThird one closes the conversation out nicely."},
		{"single lines", strings.Repeat("a line of ordinary chat text\n", 12)},
		{"no separators at all", strings.Repeat("x", 500)},
		{"long word among short", "short words then " + strings.Repeat("y", 200) + " and more short words after"},
		{"multibyte runes", strings.Repeat("héllo wörld ünïcode téxt señal ", 15)},
		{"leading separator", "\n\nstarts with a blank paragraph then keeps going with enough text to split across chunks and paragraphs"},
		{"trailing whitespace", "keeps trailing spaces intact   "},
	}

	s, err := NewSplitter(WithSize(60), WithOverlap(12))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, reconstruct(t, s, tt.text))
		})
	}
}

func TestSplit_ReconstructionDefaults(t *testing.T) {
	// The production configuration over a realistic transcript body
	text := strings.Repeat("User asked about quarterly targets and the assistant replied with a detailed breakdown of revenue projections.\n\n", 10)
	s, err := NewSplitter()
	require.NoError(t, err)
	assert.Equal(t, text, reconstruct(t, s, text))
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("w", 40)
	text := para + "\n\n" + para + "\n\n" + para

	s, err := NewSplitter(WithSize(50), WithOverlap(0))
	require.NoError(t, err)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, para+"\n\n", chunks[0].Text)
	assert.Equal(t, para+"\n\n", chunks[1].Text)
	assert.Equal(t, para, chunks[2].Text)
}

func TestSplit_HardSliceFallback(t *testing.T) {
	s, err := NewSplitter(WithSize(10), WithOverlap(2))
	require.NoError(t, err)

	text := strings.Repeat("z", 25)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 10)
	}
	assert.Equal(t, text, reconstruct(t, s, text))
}

func TestChunks_Restartable(t *testing.T) {
	s, err := NewSplitter(WithSize(30), WithOverlap(5))
	require.NoError(t, err)

	text := strings.Repeat("restartable iterator text ", 5)
	seq := s.Chunks(text)

	first := make([]string, 0)
	for c := range seq {
		first = append(first, c.Text)
	}
	second := make([]string, 0)
	for c := range seq {
		second = append(second, c.Text)
	}
	assert.Equal(t, first, second)
}

func TestChunks_EarlyStop(t *testing.T) {
	s, err := NewSplitter(WithSize(20), WithOverlap(4))
	require.NoError(t, err)

	text := strings.Repeat("some words here ", 20)
	count := 0
	for range s.Chunks(text) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
