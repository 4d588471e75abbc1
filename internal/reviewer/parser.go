package reviewer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quorumlabs/quorum/internal/domain"
)

// rawReview is the JSON structure reviewers are instructed to return.
type rawReview struct {
	Findings []rawFinding `json:"findings"`
	Summary  string       `json:"summary"`
}

type rawFinding struct {
	FilePath     string  `json:"file_path"`
	LineStart    int     `json:"line_start"`
	LineEnd      int     `json:"line_end"`
	Severity     string  `json:"severity"`
	Category     string  `json:"category"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	SuggestedFix string  `json:"suggested_fix"`
	Confidence   float64 `json:"confidence"`
}

// parseReview extracts the JSON review object from an LLM response and
// converts it to domain findings. Individual findings that fail validation
// are dropped and counted, not fatal; a response with no parseable JSON
// object is an error (the caller may attempt one repair pass).
func parseReview(content string) (findings []domain.Finding, summary string, dropped int, err error) {
	payload, err := extractJSON(content)
	if err != nil {
		return nil, "", 0, err
	}

	var raw rawReview
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, "", 0, fmt.Errorf("unmarshaling review: %w", err)
	}

	findings = make([]domain.Finding, 0, len(raw.Findings))
	for _, rf := range raw.Findings {
		f, convErr := convertFinding(rf)
		if convErr != nil {
			dropped++
			continue
		}
		findings = append(findings, f)
	}

	return findings, raw.Summary, dropped, nil
}

func convertFinding(rf rawFinding) (domain.Finding, error) {
	severity, err := domain.ParseSeverity(rf.Severity)
	if err != nil {
		return domain.Finding{}, err
	}
	category, err := domain.ParseCategory(rf.Category)
	if err != nil {
		return domain.Finding{}, err
	}

	lineEnd := rf.LineEnd
	if lineEnd == rf.LineStart {
		lineEnd = 0
	}

	f := domain.Finding{
		FilePath:     strings.TrimSpace(rf.FilePath),
		LineStart:    rf.LineStart,
		LineEnd:      lineEnd,
		Severity:     severity,
		Category:     category,
		Title:        strings.TrimSpace(rf.Title),
		Description:  strings.TrimSpace(rf.Description),
		SuggestedFix: strings.TrimSpace(rf.SuggestedFix),
		Confidence:   rf.Confidence,
	}
	if f.Title == "" {
		return domain.Finding{}, fmt.Errorf("finding has no title")
	}
	if err := f.Validate(); err != nil {
		return domain.Finding{}, err
	}
	return f, nil
}

// extractJSON returns the first top-level JSON object in content, handling
// markdown code fences and surrounding prose.
func extractJSON(content string) (string, error) {
	s := strings.TrimSpace(content)

	// Strip a ```json ... ``` fence if the response is wrapped in one.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}
