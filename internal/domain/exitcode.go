// Package domain holds the types shared across the review pipeline:
// findings and reviews, per-reviewer outcomes, the consolidated result,
// and the error and exit-code taxonomy.
package domain

// ExitCode is the process exit status of a review run. The values are
// stable so CI scripts can branch on them.
type ExitCode int

const (
	// ExitNoFindings means the review ran and nothing at or above the
	// fail-on severity was found.
	ExitNoFindings ExitCode = 0
	// ExitFindings means findings at or above the fail-on severity exist.
	ExitFindings ExitCode = 1
	// ExitError means the run itself failed before producing a verdict.
	ExitError ExitCode = 2
	// ExitInterrupted means the run was cancelled by SIGINT or SIGTERM.
	ExitInterrupted ExitCode = 130
)

// Int converts the code for os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
