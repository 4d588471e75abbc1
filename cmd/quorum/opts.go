package main

import "github.com/quorumlabs/quorum/internal/config"

// ReviewOpts bundles the resolved configuration with CLI-only flags that
// don't participate in config resolution. Passing it explicitly keeps
// executeReview testable without package-level variable reads.
type ReviewOpts struct {
	config.ResolvedConfig

	Verbose  bool
	PRNumber int  // Explicit --pr flag value (0 if not set)
	Post     bool // Post the markdown review as a PR comment
	JSON     bool // Emit JSON instead of the text report
	WorkDir  string
}
