package reviewer

import (
	"strings"
	"testing"

	"github.com/quorumlabs/quorum/internal/domain"
)

const validResponse = `{
  "findings": [
    {
      "file_path": "app/db.go",
      "line_start": 42,
      "line_end": 44,
      "severity": "critical",
      "category": "security",
      "title": "SQL injection",
      "description": "User input is concatenated into the query",
      "suggested_fix": "Use a parameterized query",
      "confidence": 0.95
    }
  ],
  "summary": "One serious issue."
}`

func TestParseReview_Valid(t *testing.T) {
	findings, summary, dropped, err := parseReview(validResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
	if summary != "One serious issue." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Severity != domain.SeverityCritical || f.Category != domain.CategorySecurity {
		t.Errorf("unexpected severity/category: %s/%s", f.Severity, f.Category)
	}
	if f.LineStart != 42 || f.LineEnd != 44 {
		t.Errorf("unexpected lines: %d..%d", f.LineStart, f.LineEnd)
	}
}

func TestParseReview_CodeFenced(t *testing.T) {
	fenced := "Here is my review:\n```json\n" + validResponse + "\n```\nHope that helps!"
	findings, _, _, err := parseReview(fenced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("expected 1 finding, got %d", len(findings))
	}
}

func TestParseReview_SurroundingProse(t *testing.T) {
	wrapped := "Sure! " + validResponse + " Let me know if you need more."
	findings, _, _, err := parseReview(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("expected 1 finding, got %d", len(findings))
	}
}

func TestParseReview_InvalidFindingsDropped(t *testing.T) {
	response := `{
	  "findings": [
	    {"file_path": "a.go", "line_start": 1, "severity": "critical", "category": "security",
	     "title": "good", "description": "d", "confidence": 0.9},
	    {"file_path": "a.go", "line_start": 0, "severity": "critical", "category": "security",
	     "title": "bad line", "description": "d", "confidence": 0.9},
	    {"file_path": "a.go", "line_start": 1, "severity": "mega", "category": "security",
	     "title": "bad severity", "description": "d", "confidence": 0.9},
	    {"file_path": "a.go", "line_start": 1, "severity": "warning", "category": "security",
	     "title": "", "description": "no title", "confidence": 0.9}
	  ],
	  "summary": "mixed bag"
	}`

	findings, _, dropped, err := parseReview(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("expected 1 surviving finding, got %d", len(findings))
	}
	if dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
}

func TestParseReview_NoJSON(t *testing.T) {
	if _, _, _, err := parseReview("I could not find any issues, great work!"); err == nil {
		t.Error("expected error for prose-only response")
	}
}

func TestParseReview_EmptyFindings(t *testing.T) {
	findings, summary, _, err := parseReview(`{"findings": [], "summary": "LGTM"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
	if summary != "LGTM" {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	payload := `{"findings": [], "summary": "do not close on } inside a string"}`
	got, err := extractJSON("noise " + payload + " noise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != payload {
		t.Errorf("wrong extraction:\n got %q\nwant %q", got, payload)
	}
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	if _, err := extractJSON(`{"summary": "truncated`); err == nil {
		t.Error("expected error for unbalanced object")
	}
}

func TestConvertFinding_SingleLineNormalized(t *testing.T) {
	f, err := convertFinding(rawFinding{
		FilePath: "a.go", LineStart: 7, LineEnd: 7,
		Severity: "warning", Category: "logic",
		Title: "t", Description: "d", Confidence: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.LineEnd != 0 {
		t.Errorf("line_end equal to line_start should normalize to 0, got %d", f.LineEnd)
	}
	if !strings.Contains(f.Title, "t") {
		t.Errorf("unexpected title: %q", f.Title)
	}
}
