package aggregate

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/quorumlabs/quorum/internal/domain"
)

// mergeCluster reduces one cluster to a single consolidated finding.
// totalReviews is the number of successful reviews in the request, the
// denominator of the consensus score.
func mergeCluster(cluster []member, totalReviews int) domain.ConsolidatedFinding {
	// Canonical member order makes every merge decision independent of
	// reviewer completion order.
	ordered := make([]member, len(cluster))
	copy(ordered, cluster)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := &ordered[i].Finding, &ordered[j].Finding
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return ordered[i].ReviewerID < ordered[j].ReviewerID
	})

	base := &ordered[0].Finding
	for i := range ordered {
		if ordered[i].Finding.Confidence > base.Confidence {
			base = &ordered[i].Finding
		}
	}

	// Severity never dilutes: one critical vote wins.
	severity := ordered[0].Finding.Severity
	severest := &ordered[0].Finding
	for i := range ordered {
		if ordered[i].Finding.Severity.Rank() > severity.Rank() {
			severity = ordered[i].Finding.Severity
			severest = &ordered[i].Finding
		}
	}

	category := majorityCategory(ordered, severest)
	description := mergeDescriptions(ordered, base)
	fix := mergeFixes(ordered, base)

	// Distinct contributing reviewers; a reviewer with several findings in
	// one cluster still counts once.
	seen := make(map[string]bool, len(ordered))
	var reviewers []string
	var confidenceSum float64
	findings := make([]domain.Finding, 0, len(ordered))
	for _, m := range ordered {
		if !seen[m.ReviewerID] {
			seen[m.ReviewerID] = true
			reviewers = append(reviewers, m.ReviewerID)
		}
		confidenceSum += m.Finding.Confidence
		findings = append(findings, m.Finding)
	}
	sort.Strings(reviewers)

	return domain.ConsolidatedFinding{
		ID:                findingID(base),
		FilePath:          base.FilePath,
		LineStart:         base.LineStart,
		LineEnd:           base.LineEnd,
		Severity:          severity,
		Category:          category,
		Title:             base.Title,
		Description:       description,
		SuggestedFix:      fix,
		ConsensusScore:    float64(len(reviewers)) / float64(totalReviews),
		AgreeingReviewers: reviewers,
		Confidence:        confidenceSum / float64(len(ordered)),
		OriginalFindings:  findings,
	}
}

// majorityCategory picks the most common category in the cluster; ties go
// to the category of the severity-maximizing member.
func majorityCategory(ordered []member, severest *domain.Finding) domain.Category {
	counts := make(map[domain.Category]int)
	for _, m := range ordered {
		counts[m.Finding.Category]++
	}

	best := severest.Category
	bestCount := counts[best]
	for _, c := range domain.Categories {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}

// mergeDescriptions keeps the base description and appends every distinct
// perspective so no reviewer's unique detail is silently lost.
func mergeDescriptions(ordered []member, base *domain.Finding) string {
	var extras []string
	seen := map[string]bool{base.Description: true}
	for _, m := range ordered {
		d := m.Finding.Description
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		extras = append(extras, "- "+d)
	}

	if len(extras) == 0 {
		return base.Description
	}
	return base.Description + "\n\n**Also noted:**\n" + strings.Join(extras, "\n")
}

// maxAlternativeFixes caps how many alternative suggestions are appended.
const maxAlternativeFixes = 2

// mergeFixes takes the fix of the highest-confidence member that supplies
// one, then appends up to two distinct alternatives.
func mergeFixes(ordered []member, base *domain.Finding) string {
	fix := base.SuggestedFix
	if fix == "" {
		// Fall back to the highest-confidence member with a fix.
		bestConfidence := -1.0
		for i := range ordered {
			f := &ordered[i].Finding
			if f.SuggestedFix != "" && f.Confidence > bestConfidence {
				fix = f.SuggestedFix
				bestConfidence = f.Confidence
			}
		}
		if fix == "" {
			return ""
		}
	}

	var alternatives []string
	seen := map[string]bool{fix: true}
	for _, m := range ordered {
		sf := m.Finding.SuggestedFix
		if sf == "" || seen[sf] || len(alternatives) >= maxAlternativeFixes {
			continue
		}
		seen[sf] = true
		alternatives = append(alternatives, "- "+sf)
	}

	if len(alternatives) == 0 {
		return fix
	}
	return fix + "\n\n**Alternative suggestions:**\n" + strings.Join(alternatives, "\n")
}

// findingID derives a stable identifier from the base finding's location
// and title, so re-running aggregation yields identical IDs.
func findingID(base *domain.Finding) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%s", base.FilePath, base.LineStart, base.Title))
	return fmt.Sprintf("finding-%x", sum[:4])
}
