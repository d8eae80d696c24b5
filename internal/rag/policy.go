package rag

import (
	"fmt"
	"math"
	"strings"

	"github.com/upb/proof-layer/models"
)

const (
	// lowConfidenceMin is the lowest the low-confidence floor can go
	lowConfidenceMin = 0.45

	// lowConfidenceMargin is subtracted from the threshold to derive the floor
	lowConfidenceMargin = 0.70

	// lowConfidenceChunks caps how many chunks back a low-confidence answer
	lowConfidenceChunks = 3

	// ExcerptLength is the number of characters kept in a citation excerpt
	ExcerptLength = 200

	debugTopSimilarities = 5
)

// Decision is the tier selected for a set of search results
type Decision int

const (
	DecisionRefuse Decision = iota
	DecisionAnswer
	DecisionLowConfidence
)

func (d Decision) String() string {
	switch d {
	case DecisionAnswer:
		return "answer"
	case DecisionLowConfidence:
		return "low_confidence"
	default:
		return "refuse"
	}
}

// LowConfidenceFloor returns max(0.45, threshold-0.70)
func LowConfidenceFloor(threshold float64) float64 {
	return math.Max(lowConfidenceMin, threshold-lowConfidenceMargin)
}

// Decide picks the answer tier for results ordered best first
func Decide(results []models.RetrievedChunk, threshold float64) Decision {
	if len(results) == 0 {
		return DecisionRefuse
	}
	best := results[0].Similarity
	switch {
	case best >= threshold:
		return DecisionAnswer
	case best >= LowConfidenceFloor(threshold):
		return DecisionLowConfidence
	default:
		return DecisionRefuse
	}
}

// AboveThreshold returns the results whose similarity is at least threshold
func AboveThreshold(results []models.RetrievedChunk, threshold float64) []models.RetrievedChunk {
	out := make([]models.RetrievedChunk, 0, len(results))
	for _, r := range results {
		if r.Similarity >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// Excerpt returns the first ExcerptLength characters of content, with "..."
// appended when content was cut.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength]) + "..."
}

func noChunksReason(total int) string {
	if total > 0 {
		return fmt.Sprintf("Chunks exist (%d total) but query returned no results. Possible embedding mismatch or dimension issue.", total)
	}
	return "No chunks found in knowledge base"
}

func belowFloorReason(best, floor, threshold float64) string {
	return fmt.Sprintf("Best similarity (%.3f) below low confidence threshold (%.3f). Similarity threshold is %.3f.", best, floor, threshold)
}

func lowConfidencePrefix(best, threshold float64) string {
	return fmt.Sprintf("[Low confidence answer - similarity %.3f below threshold %.3f]\n\n", best, threshold)
}

func compose(chunks []models.RetrievedChunk) (string, []Citation) {
	parts := make([]string, 0, len(chunks))
	citations := make([]Citation, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
		citations = append(citations, Citation{
			DocID:   c.DocID,
			ChunkID: c.ChunkID,
			Score:   c.Similarity,
			Excerpt: Excerpt(c.Content),
		})
	}
	return strings.Join(parts, "\n\n"), citations
}
