// Package output renders consolidated reviews as text, markdown, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/terminal"
)

// Severity badge styles.
var (
	criticalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warningStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	suggestionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	nitpickStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))

	headerStyle   = lipgloss.NewStyle().Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return criticalStyle
	case domain.SeverityWarning:
		return warningStyle
	case domain.SeveritySuggestion:
		return suggestionStyle
	default:
		return nitpickStyle
	}
}

// badge renders the severity tag, styled or plain.
func badge(s domain.Severity, colored bool) string {
	tag := "[" + strings.ToUpper(string(s)) + "]"
	if !colored {
		return tag
	}
	return severityStyle(s).Render(tag)
}

// location formats the file position of a finding.
func location(f domain.ConsolidatedFinding) string {
	if f.LineEnd > f.LineStart {
		return fmt.Sprintf("%s:%d-%d", f.FilePath, f.LineStart, f.LineEnd)
	}
	return fmt.Sprintf("%s:%d", f.FilePath, f.LineStart)
}

// RenderText renders the review as a terminal report.
func RenderText(review *domain.ConsolidatedReview, colored bool) string {
	var b strings.Builder

	style := func(s lipgloss.Style, text string) string {
		if !colored {
			return text
		}
		return s.Render(text)
	}

	width := terminal.ReportWidth()

	header := fmt.Sprintf("Review: %d findings from %d reviewers (quality %.2f)",
		len(review.Findings), review.ReviewCount, review.QualityScore)
	b.WriteString(style(headerStyle, header))
	b.WriteString("\n")
	if colored {
		b.WriteString(terminal.Ruler(width, "─"))
	} else {
		b.WriteString(strings.Repeat("─", width))
	}
	b.WriteString("\n")
	b.WriteString(review.Summary)
	b.WriteString("\n")

	if len(review.FailedReviewers) > 0 {
		fmt.Fprintf(&b, "Failed reviewers: %s\n", strings.Join(review.FailedReviewers, ", "))
	}

	if !review.HasFindings() {
		b.WriteString("\nNo issues found.\n")
		return b.String()
	}

	for i, f := range review.Findings {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, badge(f.Severity, colored), f.Title)
		meta := fmt.Sprintf("%s · consensus %.0f%% · confidence %.2f · %s",
			location(f), f.ConsensusScore*100, f.Confidence,
			strings.Join(f.AgreeingReviewers, ", "))
		fmt.Fprintf(&b, "   %s\n", style(locationStyle, meta))
		b.WriteString(terminal.WrapText(f.Description, width, "   "))
		b.WriteString("\n")
		if f.SuggestedFix != "" {
			b.WriteString(terminal.WrapText("Fix: "+f.SuggestedFix, width, "   "))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(severityFooter(review))
	b.WriteString("\n")
	return b.String()
}

// severityFooter summarizes finding counts by severity, severest first.
func severityFooter(review *domain.ConsolidatedReview) string {
	counts := review.FindingsBySeverity()
	order := []domain.Severity{
		domain.SeverityCritical, domain.SeverityWarning,
		domain.SeveritySuggestion, domain.SeverityNitpick,
	}
	parts := make([]string, 0, len(order))
	for _, s := range order {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	return strings.Join(parts, ", ")
}

// RenderMarkdown renders the review as a GitHub comment body.
func RenderMarkdown(review *domain.ConsolidatedReview) string {
	var b strings.Builder

	b.WriteString("## Quorum Code Review\n\n")
	fmt.Fprintf(&b, "%s Quality score: **%.2f** (%d reviewers",
		review.Summary, review.QualityScore, review.ReviewCount)
	if len(review.FailedReviewers) > 0 {
		fmt.Fprintf(&b, ", %d failed: %s", len(review.FailedReviewers),
			strings.Join(review.FailedReviewers, ", "))
	}
	b.WriteString(")\n\n")

	if !review.HasFindings() {
		b.WriteString("No issues found. :white_check_mark:\n")
		return b.String()
	}

	b.WriteString("| # | Severity | Finding | Location | Consensus | Confidence |\n")
	b.WriteString("|---|----------|---------|----------|-----------|------------|\n")
	for i, f := range review.Findings {
		fmt.Fprintf(&b, "| %d | %s | %s | `%s` | %.0f%% | %.2f |\n",
			i+1, f.Severity, escapeCell(f.Title), location(f),
			f.ConsensusScore*100, f.Confidence)
	}
	b.WriteString("\n")

	for i, f := range review.Findings {
		fmt.Fprintf(&b, "<details>\n<summary>%d. [%s] %s</summary>\n\n",
			i+1, strings.ToUpper(string(f.Severity)), escapeCell(f.Title))
		fmt.Fprintf(&b, "**Location:** `%s`\n\n", location(f))
		fmt.Fprintf(&b, "**Flagged by:** %s\n\n", strings.Join(f.AgreeingReviewers, ", "))
		b.WriteString(f.Description)
		b.WriteString("\n")
		if f.SuggestedFix != "" {
			fmt.Fprintf(&b, "\n**Suggested fix:** %s\n", f.SuggestedFix)
		}
		b.WriteString("\n</details>\n\n")
	}

	b.WriteString(agentBreakdown(review))
	return b.String()
}

// agentBreakdown lists per-reviewer contribution, sorted by reviewer ID.
func agentBreakdown(review *domain.ConsolidatedReview) string {
	if len(review.Reviews) == 0 {
		return ""
	}

	reviews := make([]domain.Review, len(review.Reviews))
	copy(reviews, review.Reviews)
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].ReviewerID < reviews[j].ReviewerID
	})

	var b strings.Builder
	b.WriteString("<details>\n<summary>Reviewer breakdown</summary>\n\n")
	b.WriteString("| Reviewer | Findings | Duration |\n")
	b.WriteString("|----------|----------|----------|\n")
	for _, r := range reviews {
		fmt.Fprintf(&b, "| %s | %d | %s |\n",
			r.ReviewerID, r.FindingsCount(), terminal.FormatDuration(r.Duration))
	}
	b.WriteString("\n</details>\n")
	return b.String()
}

// escapeCell keeps markdown table cells on one row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderJSON renders the review as indented JSON.
func RenderJSON(review *domain.ConsolidatedReview) ([]byte, error) {
	data, err := json.MarshalIndent(review, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode review: %w", err)
	}
	return append(data, '\n'), nil
}
