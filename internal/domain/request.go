package domain

import (
	"fmt"
	"strings"
)

// Request carries one review request through the pipeline: the diff to
// review, the full contents of changed files, and repository context.
// The core passes it to each reviewer unmodified.
type Request struct {
	Diff    string
	Files   map[string]string
	Context ReviewContext
}

// ReviewContext is pull-request metadata given to reviewers for informed
// reviews. All fields are optional; local reviews fill only the repo name.
type ReviewContext struct {
	Repo         string
	PRNumber     int
	Title        string
	Description  string
	BaseBranch   string
	HeadBranch   string
	Author       string
	ChangedFiles int
	Additions    int
	Deletions    int
	Labels       []string
}

// PromptContext formats the context for inclusion in reviewer prompts.
func (c *ReviewContext) PromptContext() string {
	var b strings.Builder
	b.WriteString("## Review Context\n")
	if c.Repo != "" {
		fmt.Fprintf(&b, "- Repository: %s\n", c.Repo)
	}
	if c.PRNumber > 0 {
		fmt.Fprintf(&b, "- PR #%d: %s\n", c.PRNumber, c.Title)
	}
	if c.Author != "" {
		fmt.Fprintf(&b, "- Author: %s\n", c.Author)
	}
	if c.BaseBranch != "" || c.HeadBranch != "" {
		fmt.Fprintf(&b, "- Branch: %s -> %s\n", c.HeadBranch, c.BaseBranch)
	}
	fmt.Fprintf(&b, "- Changes: +%d / -%d in %d files\n", c.Additions, c.Deletions, c.ChangedFiles)
	if len(c.Labels) > 0 {
		fmt.Fprintf(&b, "- Labels: %s\n", strings.Join(c.Labels, ", "))
	}
	if c.Description != "" {
		b.WriteString("\n## Description\n")
		b.WriteString(c.Description)
		b.WriteString("\n")
	}
	return b.String()
}
