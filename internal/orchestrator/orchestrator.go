// Package orchestrator fans one review request out to a set of reviewers
// and collects the surviving reviews.
package orchestrator

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/reviewer"
	"github.com/quorumlabs/quorum/internal/runner"
	"github.com/quorumlabs/quorum/internal/terminal"
)

// Options configures one orchestration.
type Options struct {
	// Timeout bounds each reviewer invocation.
	Timeout time.Duration
	// MinRequired is the minimum number of successful reviews; fewer is a
	// hard failure.
	MinRequired int
	// MaxParallel caps concurrently in-flight reviewers; 0 means no cap.
	// Queuing changes throughput only, never correctness.
	MaxParallel int
	// Retries is how many times a non-successful reviewer is re-invoked
	// (with exponential backoff) before its outcome is final. Each attempt
	// goes through the task runner; the runner itself never retries.
	Retries int
}

// Orchestrator coordinates reviewers for a single request. It holds no
// cross-request state; construct one per orchestration or reuse freely.
type Orchestrator struct {
	reviewers []reviewer.Reviewer
	opts      Options
	logger    *terminal.Logger
	completed *atomic.Int32
}

// New validates the setup and builds an orchestrator. All configuration
// problems surface here, before anything is dispatched.
func New(reviewers []reviewer.Reviewer, opts Options, logger *terminal.Logger) (*Orchestrator, error) {
	if len(reviewers) == 0 {
		return nil, domain.NewConfigurationError("at least one reviewer is required")
	}
	if opts.Timeout <= 0 {
		return nil, domain.NewConfigurationError("timeout must be > 0, got %s", opts.Timeout)
	}
	if opts.MinRequired < 1 {
		return nil, domain.NewConfigurationError("min required reviewers must be >= 1, got %d", opts.MinRequired)
	}
	if opts.MinRequired > len(reviewers) {
		return nil, domain.NewConfigurationError("min required reviewers (%d) exceeds reviewer count (%d)",
			opts.MinRequired, len(reviewers))
	}
	if opts.MaxParallel < 0 {
		return nil, domain.NewConfigurationError("max parallel must be >= 0, got %d", opts.MaxParallel)
	}
	if opts.Retries < 0 {
		return nil, domain.NewConfigurationError("retries must be >= 0, got %d", opts.Retries)
	}

	seen := make(map[string]bool, len(reviewers))
	for _, r := range reviewers {
		id := r.Identity()
		if id == "" {
			return nil, domain.NewConfigurationError("reviewer with empty identity")
		}
		if seen[id] {
			return nil, domain.NewConfigurationError("duplicate reviewer identity %q", id)
		}
		seen[id] = true
	}

	if logger == nil {
		logger = terminal.NewLogger()
	}

	return &Orchestrator{
		reviewers: reviewers,
		opts:      opts,
		logger:    logger,
		completed: &atomic.Int32{},
	}, nil
}

// Completed exposes the progress counter for spinner wiring.
func (o *Orchestrator) Completed() *atomic.Int32 {
	return o.completed
}

// Review dispatches every reviewer concurrently, waits for all of them to
// reach a terminal outcome, and returns the successful reviews. It never
// short-circuits: a fast failure does not cancel a slow success. The only
// hard failure is falling below MinRequired successes.
func (o *Orchestrator) Review(ctx context.Context, req *domain.Request) ([]domain.Review, []domain.Outcome, error) {
	concurrency := o.opts.MaxParallel
	if concurrency <= 0 {
		concurrency = len(o.reviewers)
	}
	sem := make(chan struct{}, concurrency)
	outcomeCh := make(chan domain.Outcome, len(o.reviewers))

	for _, rev := range o.reviewers {
		go func(rev reviewer.Reviewer) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomeCh <- domain.Outcome{
					ReviewerID: rev.Identity(),
					Kind:       domain.OutcomeFailure,
					Err:        ctx.Err(),
				}
				return
			}

			outcome := o.runWithRetry(ctx, rev, req)

			<-sem
			o.completed.Add(1)
			outcomeCh <- outcome
		}(rev)
	}

	outcomes := make([]domain.Outcome, 0, len(o.reviewers))
	for range o.reviewers {
		outcomes = append(outcomes, <-outcomeCh)
	}

	var successes []domain.Review
	causes := make(map[string]string)
	for i := range outcomes {
		out := &outcomes[i]
		if out.Success() {
			successes = append(successes, *out.Review)
			o.logger.Logf(terminal.StyleDim, "reviewer %s completed: %d findings in %s",
				out.ReviewerID, len(out.Review.Findings), terminal.FormatDuration(out.Duration))
			continue
		}
		causes[out.ReviewerID] = out.Cause()
		o.logger.Logf(terminal.StyleWarning, "reviewer %s %s: %s", out.ReviewerID, out.Kind, out.Cause())
	}

	if len(successes) < o.opts.MinRequired {
		return nil, outcomes, &domain.InsufficientReviewersError{
			Succeeded: len(successes),
			Required:  o.opts.MinRequired,
			Causes:    causes,
		}
	}

	return successes, outcomes, nil
}

// runWithRetry re-invokes the task runner on non-success, with exponential
// backoff between attempts. Cancellation of the whole orchestration stops
// retrying immediately.
func (o *Orchestrator) runWithRetry(ctx context.Context, rev reviewer.Reviewer, req *domain.Request) domain.Outcome {
	var outcome domain.Outcome

	for attempt := 0; attempt <= o.opts.Retries; attempt++ {
		if ctx.Err() != nil {
			return domain.Outcome{ReviewerID: rev.Identity(), Kind: domain.OutcomeFailure, Err: ctx.Err()}
		}

		outcome = runner.Run(ctx, rev, req, o.opts.Timeout)
		if outcome.Success() {
			return outcome
		}

		if attempt < o.opts.Retries {
			delay := time.Duration(1<<attempt) * time.Second
			o.logger.Logf(terminal.StyleWarning, "reviewer %s %s, retry %d/%d in %v",
				rev.Identity(), outcome.Kind, attempt+1, o.opts.Retries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return outcome
			}
		}
	}

	return outcome
}

// FailedReviewerIDs extracts the identities of non-successful outcomes,
// for reporting.
func FailedReviewerIDs(outcomes []domain.Outcome) []string {
	var ids []string
	for i := range outcomes {
		if !outcomes[i].Success() {
			ids = append(ids, outcomes[i].ReviewerID)
		}
	}
	sort.Strings(ids)
	return ids
}
