package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConsolidatedReview_Counts(t *testing.T) {
	r := ConsolidatedReview{
		Findings: []ConsolidatedFinding{
			{Severity: SeverityCritical, Category: CategorySecurity},
			{Severity: SeverityCritical, Category: CategoryLogic},
			{Severity: SeverityNitpick, Category: CategoryStyle},
		},
	}

	bySev := r.FindingsBySeverity()
	if bySev[SeverityCritical] != 2 {
		t.Errorf("expected 2 critical, got %d", bySev[SeverityCritical])
	}
	if bySev[SeverityWarning] != 0 {
		t.Errorf("expected 0 warnings, got %d", bySev[SeverityWarning])
	}

	byCat := r.FindingsByCategory()
	if byCat[CategorySecurity] != 1 || byCat[CategoryStyle] != 1 {
		t.Errorf("unexpected category counts: %v", byCat)
	}
	if byCat[CategoryTesting] != 0 {
		t.Errorf("expected zero count present for testing category")
	}
}

func TestConsolidatedReview_Thresholds(t *testing.T) {
	r := ConsolidatedReview{
		Findings: []ConsolidatedFinding{
			{Severity: SeverityWarning},
		},
	}

	if !r.HasFindings() {
		t.Error("expected HasFindings true")
	}
	if r.HasBlockingIssues() {
		t.Error("warning-only review must not block")
	}
	if !r.MeetsThreshold(SeverityWarning) {
		t.Error("expected warning threshold met")
	}
	if r.MeetsThreshold(SeverityCritical) {
		t.Error("critical threshold must not be met by a warning")
	}
	if !r.MeetsThreshold("") {
		t.Error("empty threshold matches any finding")
	}

	empty := ConsolidatedReview{}
	if empty.MeetsThreshold("") {
		t.Error("empty review meets no threshold")
	}
}

func TestPriorityScore(t *testing.T) {
	weights := map[Severity]float64{
		SeverityCritical:   1.0,
		SeverityWarning:    0.6,
		SeveritySuggestion: 0.3,
		SeverityNitpick:    0.1,
	}
	f := ConsolidatedFinding{Severity: SeverityWarning, ConsensusScore: 0.5}
	if got := f.PriorityScore(weights); got != 0.3 {
		t.Errorf("expected 0.3, got %g", got)
	}
}

func TestOutcome(t *testing.T) {
	ok := Outcome{ReviewerID: "a", Kind: OutcomeSuccess, Review: &Review{ReviewerID: "a"}}
	if !ok.Success() {
		t.Error("expected success outcome")
	}

	// Success kind without a review is not usable.
	broken := Outcome{ReviewerID: "a", Kind: OutcomeSuccess}
	if broken.Success() {
		t.Error("success without review must not count")
	}

	timeout := Outcome{ReviewerID: "b", Kind: OutcomeTimeout, Duration: 2 * time.Second}
	if timeout.Success() {
		t.Error("timeout is not a success")
	}
	if !strings.Contains(timeout.Cause(), "timed out") {
		t.Errorf("unexpected cause: %q", timeout.Cause())
	}

	failed := Outcome{ReviewerID: "c", Kind: OutcomeFailure, Err: errors.New("boom")}
	if failed.Cause() != "boom" {
		t.Errorf("unexpected cause: %q", failed.Cause())
	}
}

func TestInsufficientReviewersError_Message(t *testing.T) {
	err := &InsufficientReviewersError{
		Succeeded: 1,
		Required:  2,
		Causes: map[string]string{
			"security-agent": "timed out after 2s",
			"perf-agent":     "boom",
		},
	}

	msg := err.Error()
	if !strings.Contains(msg, "only 1 reviewer(s) succeeded, minimum 2 required") {
		t.Errorf("unexpected message: %q", msg)
	}
	// Causes are listed deterministically, sorted by identity.
	if !strings.Contains(msg, "perf-agent (boom), security-agent (timed out after 2s)") {
		t.Errorf("causes not sorted: %q", msg)
	}
}

func TestReviewCounts(t *testing.T) {
	r := Review{
		ReviewerID: "sec",
		Findings: []Finding{
			{Severity: SeverityCritical},
			{Severity: SeverityNitpick},
		},
	}
	if r.FindingsCount() != 2 {
		t.Errorf("expected 2 findings, got %d", r.FindingsCount())
	}
	if r.CriticalCount() != 1 {
		t.Errorf("expected 1 critical, got %d", r.CriticalCount())
	}
}
