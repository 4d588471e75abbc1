package reviewer

import (
	"fmt"
	"sort"
	"strings"
)

// Preset is a reviewer perspective: the categories it concentrates on and
// the prompt addendum that steers it there.
type Preset struct {
	Name       string
	FocusAreas []string
	Addendum   string
}

var presets = map[string]Preset{
	"security": {
		Name:       "security",
		FocusAreas: []string{"security"},
		Addendum: `**YOUR FOCUS: SECURITY**
You are a security expert. Focus ONLY on:
- Injection vulnerabilities (SQL, command, XSS)
- Authentication/authorization flaws
- Cryptographic issues
- Data exposure and validation
- Trust boundary violations

Ignore performance, style, and other non-security issues.`,
	},
	"performance": {
		Name:       "performance",
		FocusAreas: []string{"performance", "logic"},
		Addendum: `**YOUR FOCUS: PERFORMANCE & CORRECTNESS**
You are a performance engineer. Focus ONLY on:
- Algorithm complexity (O(n^2) where O(n) is possible)
- Unnecessary allocations and copies in hot paths
- N+1 queries and missing batching
- Race conditions, deadlocks, and unsafe shared state
- Off-by-one and boundary errors

Ignore style and documentation issues.`,
	},
	"architecture": {
		Name:       "architecture",
		FocusAreas: []string{"architecture", "logic", "testing"},
		Addendum: `**YOUR FOCUS: DESIGN & MAINTAINABILITY**
You are a senior engineer reviewing for long-term code health. Focus on:
- Design: does this change belong here, and does it compose well?
- Error handling completeness and failure paths
- Test coverage for the changed behavior
- Complexity that will hurt the next reader

Only flag violations that meaningfully hurt maintainability or clarity.`,
	},
	"style": {
		Name:       "style",
		FocusAreas: []string{"style", "documentation"},
		Addendum: `**YOUR FOCUS: STYLE & DOCUMENTATION**
Focus on naming, comments (why, not what), consistency with the surrounding
code, and documentation accuracy. Use severity nitpick and prefix titles
with "Nit: " for optional polish.`,
	},
	"general": {
		Name:       "general",
		FocusAreas: []string{"logic", "security", "performance"},
		Addendum: `Review the change as a whole. Order of impact: Design -> Functionality ->
Complexity -> Tests -> Naming and documentation. Favor approving when the
change improves overall code health; no perfectionism.`,
	},
}

// PresetByName looks up a focus preset.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown focus preset %q, supported: %s", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
