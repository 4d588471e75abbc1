package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Severity classifies how urgent a finding is. The order is total:
// critical > warning > suggestion > nitpick.
type Severity string

const (
	// SeverityCritical is reserved for security bugs and data corruption risks.
	SeverityCritical Severity = "critical"
	// SeverityWarning marks issues that should be fixed before merge.
	SeverityWarning Severity = "warning"
	// SeveritySuggestion marks optional improvements to code health.
	SeveritySuggestion Severity = "suggestion"
	// SeverityNitpick marks style polish; titles use a "Nit: " prefix.
	SeverityNitpick Severity = "nitpick"
)

// Severities lists all severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeveritySuggestion, SeverityNitpick}

// Rank returns a numeric rank for ordering (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityWarning:
		return 3
	case SeveritySuggestion:
		return 2
	case SeverityNitpick:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity normalizes a severity string from reviewer output.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// Category is the closed set of finding categories.
type Category string

const (
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryLogic         Category = "logic"
	CategoryStyle         Category = "style"
	CategoryArchitecture  Category = "architecture"
	CategoryTesting       Category = "testing"
	CategoryDocumentation Category = "documentation"
)

// Categories lists all valid categories.
var Categories = []Category{
	CategorySecurity,
	CategoryPerformance,
	CategoryLogic,
	CategoryStyle,
	CategoryArchitecture,
	CategoryTesting,
	CategoryDocumentation,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// ParseCategory normalizes a category string from reviewer output.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Finding is one observation from one reviewer. Findings are value types
// and are never mutated after a reviewer produces them.
type Finding struct {
	FilePath    string   `json:"file_path"`
	LineStart   int      `json:"line_start"`
	LineEnd     int      `json:"line_end,omitempty"` // 0 means single-line at LineStart
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	// SuggestedFix is optional.
	SuggestedFix string  `json:"suggested_fix,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// Validate checks the structural invariants of a finding.
func (f *Finding) Validate() error {
	if f.FilePath == "" {
		return fmt.Errorf("finding has no file path")
	}
	if f.LineStart < 1 {
		return fmt.Errorf("line_start must be >= 1, got %d", f.LineStart)
	}
	if f.LineEnd != 0 && f.LineEnd < f.LineStart {
		return fmt.Errorf("line_end (%d) must be >= line_start (%d)", f.LineEnd, f.LineStart)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("confidence must be in [0,1], got %g", f.Confidence)
	}
	if !f.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", f.Severity)
	}
	if !f.Category.Valid() {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	return nil
}

// LineRange returns the effective start and end lines; end defaults to start.
func (f *Finding) LineRange() (start, end int) {
	start = f.LineStart
	end = f.LineEnd
	if end == 0 {
		end = start
	}
	return start, end
}
