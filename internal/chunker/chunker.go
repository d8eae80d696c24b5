// Package chunker splits raw document text into overlapping, sentence-aligned
// segments sized for embedding.
//
// Sizes and offsets are counted in characters (Unicode code points), never in
// bytes, so a multi-byte character is never split across two chunks. The
// output is a pure function of (text, size, overlap).
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/upb/proof-layer/services"
)

const (
	// DefaultChunkSize is the target window size in characters
	DefaultChunkSize = 1000

	// DefaultOverlap is the number of characters shared by consecutive windows
	DefaultOverlap = 200

	// maxBoundarySearch caps how far back from the window edge a sentence
	// terminator is looked for.
	maxBoundarySearch = 200
)

// Segment is one segment of a source text. Start and End are character offsets
// of Text inside the source, after trimming.
type Segment struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Chunker holds validated chunking parameters
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. size must be positive and overlap non-negative.
// An overlap greater than or equal to size is accepted; windows then advance
// without overlap so chunking always terminates.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, services.ErrInvalidInput)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d: %w", overlap, services.ErrInvalidInput)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window size in characters
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap in characters
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text and returns only the chunk strings
func (c *Chunker) Chunk(text string) []string {
	return texts(split(text, c.size, c.overlap))
}

// Split splits text and returns chunks with their index and span
func (c *Chunker) Split(text string) []Segment {
	return split(text, c.size, c.overlap)
}

// Chunk splits text into overlapping chunks. Non-positive sizes fall back to
// DefaultChunkSize and negative overlaps are treated as zero.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return texts(split(text, size, overlap))
}

func texts(chunks []Segment) []string {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.Text
	}
	return out
}

func split(text string, size, overlap int) []Segment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	if n <= size {
		if ch, ok := trimmed(runes, 0, n); ok {
			return []Segment{ch}
		}
		return nil
	}

	var chunks []Segment
	start := 0
	for start < n {
		end := start + size

		if end < n {
			// Scan back from the far edge (inclusive) for a sentence end.
			lower := end - min(size, maxBoundarySearch)
			for i := end; i > lower; i-- {
				if isSentenceEnd(runes[i]) {
					end = i + 1
					break
				}
			}
		}

		if ch, ok := trimmed(runes, start, min(end, n)); ok {
			ch.Index = len(chunks)
			chunks = append(chunks, ch)
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// trimmed returns the whitespace-trimmed text of runes[start:end] with its span
func trimmed(runes []rune, start, end int) (Segment, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start == end {
		return Segment{}, false
	}
	return Segment{Text: string(runes[start:end]), Start: start, End: end}, true
}

func isSentenceEnd(r rune) bool {
	return strings.ContainsRune(".!?\n", r)
}
