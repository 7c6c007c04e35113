package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultSplitter(t *testing.T) *Splitter {
	t.Helper()
	s, err := NewSplitter()
	require.NoError(t, err)
	return s
}

// sequence returns n distinct-ish characters so windows can be told apart.
func sequence(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	return b.String()
}

func TestNewSplitter_Validation(t *testing.T) {
	_, err := NewSplitter(WithChunkSize(0))
	assert.Error(t, err)

	_, err = NewSplitter(WithChunkSize(100), WithOverlap(100))
	assert.Error(t, err)

	_, err = NewSplitter(WithOverlap(-1))
	assert.Error(t, err)

	s, err := NewSplitter(WithChunkSize(100), WithOverlap(0))
	require.NoError(t, err)
	assert.Len(t, s.SplitText(sequence(250)), 3)
}

func TestSplitText_Empty(t *testing.T) {
	s := newDefaultSplitter(t)
	assert.Empty(t, s.SplitText(""))
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	s := newDefaultSplitter(t)

	parts := s.SplitText("hello world")
	require.Len(t, parts, 1)
	assert.Equal(t, "hello world", parts[0])

	exact := sequence(DefaultChunkSize)
	parts = s.SplitText(exact)
	require.Len(t, parts, 1)
	assert.Equal(t, exact, parts[0])
}

func TestSplitText_Windows(t *testing.T) {
	s := newDefaultSplitter(t)
	text := sequence(2500)

	parts := s.SplitText(text)
	require.Len(t, parts, 3)
	assert.Equal(t, text[0:1000], parts[0])
	assert.Equal(t, text[800:1800], parts[1])
	assert.Equal(t, text[1600:2500], parts[2])
}

func TestSplitText_CountMatchesFormula(t *testing.T) {
	s := newDefaultSplitter(t)

	for _, n := range []int{1, 999, 1000, 1001, 1200, 1201, 1800, 1801, 2500, 10000, 12345} {
		parts := s.SplitText(sequence(n))
		assert.Equal(t, s.ExpectedCount(n), len(parts), "length %d", n)
	}

	assert.Equal(t, 0, s.ExpectedCount(0))
	assert.Equal(t, 2, s.ExpectedCount(1500))
	assert.Equal(t, 3, s.ExpectedCount(2500))
}

func TestSplitText_BoundsOverlapAndReconstruction(t *testing.T) {
	s := newDefaultSplitter(t)

	for _, n := range []int{1001, 1999, 4321} {
		text := sequence(n)
		parts := s.SplitText(text)

		var rebuilt strings.Builder
		for i, p := range parts {
			assert.LessOrEqual(t, utf8.RuneCountInString(p), DefaultChunkSize)
			if i == 0 {
				rebuilt.WriteString(p)
				continue
			}
			prev := parts[i-1]
			assert.Equal(t, prev[len(prev)-DefaultChunkOverlap:], p[:DefaultChunkOverlap])
			rebuilt.WriteString(p[DefaultChunkOverlap:])
		}
		assert.Equal(t, text, rebuilt.String())
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	s := newDefaultSplitter(t)
	text := sequence(3333)
	assert.Equal(t, s.SplitText(text), s.SplitText(text))
}

func TestSplitText_CountsRunes(t *testing.T) {
	s, err := NewSplitter(WithChunkSize(4), WithOverlap(1))
	require.NoError(t, err)

	parts := s.SplitText("héllö wörld")
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p))
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 4)
	}
	assert.Equal(t, "héll", parts[0])
	assert.Equal(t, "lö w", parts[1])
}

func TestSplitPages_PerPageWithMetadata(t *testing.T) {
	s := newDefaultSplitter(t)
	pages := []models.Page{
		{Number: 1, Text: sequence(1500)},
		{Number: 2, Text: sequence(500)},
		{Number: 3, Text: ""},
		{Number: 4, Text: sequence(500)},
	}

	chunks := s.SplitPages(pages)
	require.Len(t, chunks, 4)

	wantPages := []int{1, 1, 2, 4}
	for i, c := range chunks {
		assert.Equal(t, wantPages[i], c.Metadata[models.MetaPageNumber])
		assert.Equal(t, i, c.Metadata[models.MetaChunkIndex])
		assert.Empty(t, c.DocumentID())
	}
	assert.Equal(t, sequence(500), chunks[2].Text)
}
