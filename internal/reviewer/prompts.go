package reviewer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quorumlabs/quorum/internal/domain"
)

// systemPrompt is shared by all reviewer variants; the preset addendum
// narrows the perspective.
const systemPrompt = `You are an expert code reviewer. Review the provided diff and respond with
ONLY a JSON object, no prose before or after.

The JSON object has this shape:
{
  "findings": [
    {
      "file_path": "path/to/file.go",
      "line_start": 10,
      "line_end": 12,
      "severity": "critical|warning|suggestion|nitpick",
      "category": "security|performance|logic|style|architecture|testing|documentation",
      "title": "Short title",
      "description": "What is wrong and why it matters",
      "suggested_fix": "Optional concrete fix",
      "confidence": 0.9
    }
  ],
  "summary": "One-paragraph overall assessment"
}

Severity semantics:
- critical: security bugs or data corruption risks only; must fix before merge
- warning: other serious correctness or maintainability issues; should fix
- suggestion: improves code health; optional but recommended
- nitpick: optional polish or style; prefix the title with "Nit: "

Comment on the code, not the author. Explain why when asking for a change.
Report an empty findings array if the change looks good.`

// buildUserPrompt assembles the full review request for one reviewer.
func buildUserPrompt(req *domain.Request, addendum string) string {
	var b strings.Builder

	if addendum != "" {
		b.WriteString(addendum)
		b.WriteString("\n\n")
	}

	b.WriteString(req.Context.PromptContext())
	b.WriteString("\n## Diff\n```diff\n")
	b.WriteString(req.Diff)
	b.WriteString("\n```\n")

	if len(req.Files) > 0 {
		b.WriteString("\n## Changed file contents\n")
		paths := make([]string, 0, len(req.Files))
		for path := range req.Files {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(&b, "\n### %s\n```\n%s\n```\n", path, req.Files[path])
		}
	}

	return b.String()
}

// buildRepairPrompt asks the model to fix a malformed response.
func buildRepairPrompt(parseErr error, previous string) string {
	return fmt.Sprintf(
		"Your previous response was not valid JSON. The error was: %s\n\n"+
			"Respond again with ONLY the JSON object described in the instructions.\n\n"+
			"Your previous response was:\n%s",
		parseErr, previous)
}
