package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError reports an invalid setup detected before any reviewer
// is dispatched (duplicate identities, invalid thresholds, missing options).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientReviewersError is the only hard failure of an orchestration:
// fewer reviewers succeeded than the configured minimum.
type InsufficientReviewersError struct {
	Succeeded int
	Required  int
	// Causes maps each non-successful reviewer identity to why it failed.
	Causes map[string]string
}

func (e *InsufficientReviewersError) Error() string {
	msg := fmt.Sprintf("only %d reviewer(s) succeeded, minimum %d required", e.Succeeded, e.Required)
	if len(e.Causes) == 0 {
		return msg
	}

	ids := make([]string, 0, len(e.Causes))
	for id := range e.Causes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s (%s)", id, e.Causes[id]))
	}
	return msg + "; failed: " + strings.Join(parts, ", ")
}
