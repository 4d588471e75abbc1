package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/quorumlabs/quorum/internal/domain"
)

func sampleReview() *domain.ConsolidatedReview {
	return &domain.ConsolidatedReview{
		ID:      "review-abc123",
		Summary: "Found 1 critical, 1 suggestion across 2 unique issues.",
		Findings: []domain.ConsolidatedFinding{
			{
				ID:                "finding-a1b2c3d4",
				FilePath:          "auth/login.go",
				LineStart:         42,
				LineEnd:           48,
				Severity:          domain.SeverityCritical,
				Category:          domain.CategorySecurity,
				Title:             "SQL injection in login query",
				Description:       "User input is interpolated into the query.",
				SuggestedFix:      "Use parameterized queries.",
				ConsensusScore:    1.0,
				AgreeingReviewers: []string{"sec", "general"},
				Confidence:        0.9,
			},
			{
				ID:             "finding-e5f6a7b8",
				FilePath:       "util/strings.go",
				LineStart:      10,
				Severity:       domain.SeveritySuggestion,
				Category:       domain.CategoryStyle,
				Title:          "Prefer strings.Builder",
				Description:    "Concatenation in a loop allocates repeatedly.",
				ConsensusScore: 1.0 / 3.0,
				AgreeingReviewers: []string{
					"perf",
				},
				Confidence: 0.6,
			},
		},
		ReviewCount:  3,
		QualityScore: 0.67,
		Reviews: []domain.Review{
			{ReviewerID: "sec", Duration: 3 * time.Second},
			{ReviewerID: "general", Duration: 5 * time.Second},
			{ReviewerID: "perf", Duration: 2 * time.Second},
		},
		FailedReviewers: []string{"style"},
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleReview(), false)

	for _, want := range []string{
		"2 findings from 3 reviewers",
		"[CRITICAL] SQL injection in login query",
		"auth/login.go:42-48",
		"consensus 100%",
		"[SUGGESTION] Prefer strings.Builder",
		"util/strings.go:10",
		"consensus 33%",
		"Fix: Use parameterized queries.",
		"Failed reviewers: style",
		"1 critical, 1 suggestion",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	// Plain mode must carry no escape codes.
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains ANSI codes")
	}
	if !strings.Contains(out, "───") {
		t.Error("expected a rule under the header")
	}
}

func TestRenderText_Clean(t *testing.T) {
	review := &domain.ConsolidatedReview{
		Summary:      "No significant issues found.",
		ReviewCount:  3,
		QualityScore: 0.95,
	}

	out := RenderText(review, false)
	if !strings.Contains(out, "No issues found.") {
		t.Errorf("expected clean message, got:\n%s", out)
	}
}

func TestRenderText_FindingsAppearInRankOrder(t *testing.T) {
	out := RenderText(sampleReview(), false)

	critical := strings.Index(out, "SQL injection")
	suggestion := strings.Index(out, "Prefer strings.Builder")
	if critical == -1 || suggestion == -1 || critical > suggestion {
		t.Error("findings not rendered in ranked order")
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleReview())

	for _, want := range []string{
		"## Quorum Code Review",
		"Quality score: **0.67**",
		"| 1 | critical | SQL injection in login query | `auth/login.go:42-48` | 100% | 0.90 |",
		"<summary>1. [CRITICAL] SQL injection in login query</summary>",
		"**Flagged by:** sec, general",
		"**Suggested fix:** Use parameterized queries.",
		"1 failed: style",
		"Reviewer breakdown",
		"| general | 0 | 5.0s |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_Clean(t *testing.T) {
	review := &domain.ConsolidatedReview{
		Summary:      "No significant issues found.",
		ReviewCount:  2,
		QualityScore: 0.9,
	}

	out := RenderMarkdown(review)
	if !strings.Contains(out, ":white_check_mark:") {
		t.Errorf("expected clean marker, got:\n%s", out)
	}
	if strings.Contains(out, "| # |") {
		t.Error("clean review must not render a findings table")
	}
}

func TestRenderMarkdown_EscapesTableCells(t *testing.T) {
	review := sampleReview()
	review.Findings[0].Title = "pipe | in\ntitle"

	out := RenderMarkdown(review)
	if !strings.Contains(out, `pipe \| in title`) {
		t.Errorf("table cell not escaped:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleReview())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded domain.ConsolidatedReview
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ID != "review-abc123" {
		t.Errorf("round trip lost ID: %q", decoded.ID)
	}
	if len(decoded.Findings) != 2 {
		t.Errorf("round trip lost findings: %d", len(decoded.Findings))
	}
	if data[len(data)-1] != '\n' {
		t.Error("JSON output must end with a newline")
	}
}

func TestLocation(t *testing.T) {
	single := domain.ConsolidatedFinding{FilePath: "a.go", LineStart: 5}
	if got := location(single); got != "a.go:5" {
		t.Errorf("unexpected location: %q", got)
	}

	ranged := domain.ConsolidatedFinding{FilePath: "a.go", LineStart: 5, LineEnd: 9}
	if got := location(ranged); got != "a.go:5-9" {
		t.Errorf("unexpected location: %q", got)
	}
}
