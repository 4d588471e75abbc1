// Package aggregate merges findings from multiple reviews into one
// ranked, deduplicated consolidated review.
package aggregate

import (
	"strings"

	"github.com/quorumlabs/quorum/internal/domain"
)

// SimilarityFunc scores how likely two findings describe the same issue.
// Implementations must be symmetric and bounded in [0,1]. The clusterer
// applies a hard compatibility gate before calling it, so implementations
// only need to compare text.
type SimilarityFunc func(a, b *domain.Finding) float64

// titleWeight and descWeight split the similarity between the title and
// the description, mirroring how reviewers phrase the same issue with
// matching titles more often than matching prose.
const (
	titleWeight = 0.6
	descWeight  = 0.4
)

// LexicalSimilarity returns the default text-overlap similarity: a Dice
// coefficient over character bigrams of the normalized title and
// description. It needs no external model and is fully deterministic.
func LexicalSimilarity() SimilarityFunc {
	return func(a, b *domain.Finding) float64 {
		titleSim := diceBigram(normalize(a.Title), normalize(b.Title))
		descSim := diceBigram(normalize(a.Description), normalize(b.Description))
		return titleWeight*titleSim + descWeight*descSim
	}
}

// lineTolerance is how far apart two line ranges may sit and still count
// as the same location.
const lineTolerance = 5

// compatible is the hard gate: findings in different files or categories
// never merge, and line ranges must overlap or be adjacent within the
// tolerance. Text similarity is only consulted once this passes.
func compatible(a, b *domain.Finding) bool {
	if a.FilePath != b.FilePath {
		return false
	}
	if a.Category != b.Category {
		return false
	}
	return linesOverlap(a, b)
}

func linesOverlap(a, b *domain.Finding) bool {
	startA, endA := a.LineRange()
	startB, endB := b.LineRange()
	return endA+lineTolerance >= startB && endB+lineTolerance >= startA
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// diceBigram computes the Sørensen–Dice coefficient over character
// bigrams. Identical strings score 1; disjoint strings score 0.
func diceBigram(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		bigrams[a[i:i+2]]++
	}

	matches := 0
	for i := 0; i+2 <= len(b); i++ {
		bg := b[i : i+2]
		if bigrams[bg] > 0 {
			bigrams[bg]--
			matches++
		}
	}

	totalA := len(a) - 1
	totalB := len(b) - 1
	return 2 * float64(matches) / float64(totalA+totalB)
}
