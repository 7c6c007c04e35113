// Package chunker splits extracted pages into overlapping character windows
// and tags them with their owning document.
package chunker

import (
	"fmt"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of characters shared by
// consecutive chunks.
const DefaultChunkOverlap = 200

// Splitter cuts text into windows of at most chunkSize characters, each
// starting chunkSize-overlap characters after the previous one. Lengths are
// counted in runes, not bytes.
type Splitter struct {
	chunkSize int
	overlap   int
}

type Option func(*Splitter)

func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

func NewSplitter(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", s.chunkSize)
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", s.chunkSize, s.overlap)
	}

	return s, nil
}

// SplitText returns the windows of text in order. Empty text yields no
// windows; text no longer than the chunk size yields exactly one.
func (s *Splitter) SplitText(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	parts := make([]string, 0, s.ExpectedCount(n))

	for start := 0; ; start += step {
		end := min(start+s.chunkSize, n)
		parts = append(parts, string(runes[start:end]))
		if end == n {
			break
		}
	}

	return parts
}

// ExpectedCount is the number of windows SplitText produces for a text of
// n characters.
func (s *Splitter) ExpectedCount(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= s.chunkSize:
		return 1
	default:
		step := s.chunkSize - s.overlap
		return (n - s.overlap + step - 1) / step
	}
}

// SplitPages splits every page independently, in page order, so no chunk
// spans a page boundary. Each chunk records its page number and its
// position across the whole document.
func (s *Splitter) SplitPages(pages []models.Page) []models.Chunk {
	var chunks []models.Chunk

	for _, page := range pages {
		for _, text := range s.SplitText(page.Text) {
			chunks = append(chunks, models.Chunk{
				Text: text,
				Metadata: map[string]any{
					models.MetaPageNumber: page.Number,
					models.MetaChunkIndex: len(chunks),
				},
			})
		}
	}

	return chunks
}
