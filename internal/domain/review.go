package domain

import (
	"time"
)

// Review is the complete output of one reviewer for one request.
// The orchestrator owns it until it is handed to the aggregator;
// it is never mutated after creation.
type Review struct {
	ReviewerID string        `json:"reviewer_id"`
	FocusAreas []string      `json:"focus_areas,omitempty"`
	Findings   []Finding     `json:"findings"`
	Summary    string        `json:"summary,omitempty"`
	Duration   time.Duration `json:"duration_ms"`
}

// FindingsCount returns the number of findings in the review.
func (r *Review) FindingsCount() int {
	return len(r.Findings)
}

// CriticalCount returns the number of critical findings.
func (r *Review) CriticalCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// ConsolidatedFinding is the externally visible, deduplicated unit produced
// by merging a cluster of similar findings.
type ConsolidatedFinding struct {
	ID           string   `json:"id"`
	FilePath     string   `json:"file_path"`
	LineStart    int      `json:"line_start"`
	LineEnd      int      `json:"line_end,omitempty"`
	Severity     Severity `json:"severity"`
	Category     Category `json:"category"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`

	// ConsensusScore is the fraction of successful reviews whose findings
	// contributed to this cluster; always in (0, 1].
	ConsensusScore    float64  `json:"consensus_score"`
	AgreeingReviewers []string `json:"agreeing_reviewers"`
	// Confidence is the arithmetic mean of member confidences.
	Confidence float64 `json:"confidence"`

	// OriginalFindings retains every cluster member for auditability.
	OriginalFindings []Finding `json:"original_findings"`
}

// PriorityScore computes the ranking key: severity weight × consensus.
func (f *ConsolidatedFinding) PriorityScore(weights map[Severity]float64) float64 {
	return weights[f.Severity] * f.ConsensusScore
}

// ConsolidatedReview is the final aggregated output of a review request.
type ConsolidatedReview struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Repo      string    `json:"repo,omitempty"`
	PRNumber  int       `json:"pr_number,omitempty"`

	// Findings are ranked by priority; the ordering is a pure function of
	// the input review set.
	Findings []ConsolidatedFinding `json:"findings"`
	Summary  string                `json:"summary"`

	ReviewCount   int           `json:"review_count"` // successful reviews aggregated
	QualityScore  float64       `json:"quality_score"`
	TotalDuration time.Duration `json:"total_duration_ms"`

	// Reviews holds the original successful reviews for transparency.
	Reviews []Review `json:"reviews,omitempty"`
	// FailedReviewers lists reviewers excluded by timeout or failure.
	FailedReviewers []string `json:"failed_reviewers,omitempty"`
}

// HasFindings reports whether any consolidated findings remain.
func (r *ConsolidatedReview) HasFindings() bool {
	return len(r.Findings) > 0
}

// FindingsBySeverity counts findings per severity, including zero counts.
func (r *ConsolidatedReview) FindingsBySeverity() map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		counts[s] = 0
	}
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// FindingsByCategory counts findings per category, including zero counts.
func (r *ConsolidatedReview) FindingsByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, f := range r.Findings {
		counts[f.Category]++
	}
	return counts
}

// HasBlockingIssues reports whether the review contains critical findings.
func (r *ConsolidatedReview) HasBlockingIssues() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// MeetsThreshold reports whether any finding is at or above the given
// severity. An empty threshold matches any finding.
func (r *ConsolidatedReview) MeetsThreshold(threshold Severity) bool {
	if threshold == "" {
		return r.HasFindings()
	}
	for _, f := range r.Findings {
		if f.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}
