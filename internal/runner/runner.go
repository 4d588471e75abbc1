// Package runner wraps one reviewer invocation with a bounded-time
// execution contract.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/reviewer"
)

// result carries the reviewer's return values across the goroutine
// boundary.
type result struct {
	review *domain.Review
	err    error
}

// Run invokes the reviewer against the request and converts the result
// into a typed outcome:
//
//   - the reviewer finishes in time  -> OutcomeSuccess
//   - the deadline passes first      -> OutcomeTimeout; the in-flight call
//     is cancelled best-effort and any late result is discarded
//   - the reviewer returns an error  -> OutcomeFailure
//
// Run performs no retries and invokes the reviewer exactly once. It never
// blocks past the deadline: the result channel is buffered, so a hung
// reviewer's eventual return is dropped without leaking a blocked
// goroutine.
func Run(ctx context.Context, rev reviewer.Reviewer, req *domain.Request, timeout time.Duration) domain.Outcome {
	start := time.Now()
	id := rev.Identity()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resCh := make(chan result, 1)
	go func() {
		review, err := rev.Review(runCtx, req)
		resCh <- result{review: review, err: err}
	}()

	select {
	case res := <-resCh:
		elapsed := time.Since(start)

		// A reviewer that noticed the deadline itself and returned a
		// context error is still a timeout, not a distinct failure.
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return domain.Outcome{ReviewerID: id, Kind: domain.OutcomeTimeout, Duration: elapsed}
		}
		if res.err != nil {
			return domain.Outcome{ReviewerID: id, Kind: domain.OutcomeFailure, Err: res.err, Duration: elapsed}
		}
		if res.review == nil {
			return domain.Outcome{
				ReviewerID: id,
				Kind:       domain.OutcomeFailure,
				Err:        fmt.Errorf("reviewer %s returned no review", id),
				Duration:   elapsed,
			}
		}
		return domain.Outcome{ReviewerID: id, Kind: domain.OutcomeSuccess, Review: res.review, Duration: elapsed}

	case <-runCtx.Done():
		elapsed := time.Since(start)
		if ctx.Err() != nil {
			// The whole orchestration was cancelled, not this reviewer.
			return domain.Outcome{ReviewerID: id, Kind: domain.OutcomeFailure, Err: ctx.Err(), Duration: elapsed}
		}
		return domain.Outcome{ReviewerID: id, Kind: domain.OutcomeTimeout, Duration: elapsed}
	}
}
