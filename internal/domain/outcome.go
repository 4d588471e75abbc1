package domain

import (
	"fmt"
	"time"
)

// OutcomeKind tags the terminal state of one reviewer invocation.
type OutcomeKind int

const (
	// OutcomeSuccess means the reviewer produced a review before the deadline.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeTimeout means the reviewer did not finish by the deadline.
	OutcomeTimeout
	// OutcomeFailure means the reviewer returned an error.
	OutcomeFailure
)

// String returns the kind name for logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one reviewer invocation.
// Review is set only for OutcomeSuccess; Err only for OutcomeFailure.
type Outcome struct {
	ReviewerID string
	Kind       OutcomeKind
	Review     *Review
	Err        error
	Duration   time.Duration
}

// Success reports whether the outcome carries a usable review.
func (o *Outcome) Success() bool {
	return o.Kind == OutcomeSuccess && o.Review != nil
}

// Cause describes why a non-success outcome happened, for diagnostics.
func (o *Outcome) Cause() string {
	switch o.Kind {
	case OutcomeTimeout:
		return fmt.Sprintf("timed out after %s", o.Duration.Round(time.Millisecond))
	case OutcomeFailure:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "unknown failure"
	default:
		return ""
	}
}
