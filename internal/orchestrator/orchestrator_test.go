package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/reviewer"
	"github.com/quorumlabs/quorum/internal/terminal"
)

// fakeReviewer implements reviewer.Reviewer with controllable behavior.
type fakeReviewer struct {
	id       string
	delay    time.Duration
	errs     []error // error per attempt; nil entry = success
	attempts atomic.Int32
	findings []domain.Finding
}

func (f *fakeReviewer) Identity() string     { return f.id }
func (f *fakeReviewer) FocusAreas() []string { return nil }

func (f *fakeReviewer) Review(ctx context.Context, _ *domain.Request) (*domain.Review, error) {
	attempt := int(f.attempts.Add(1)) - 1

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if attempt < len(f.errs) && f.errs[attempt] != nil {
		return nil, f.errs[attempt]
	}
	return &domain.Review{ReviewerID: f.id, Findings: f.findings}, nil
}

func quietLogger() *terminal.Logger {
	return terminal.NewLogger()
}

func defaultOpts() Options {
	return Options{Timeout: time.Second, MinRequired: 1}
}

func TestNew_RejectsBadConfiguration(t *testing.T) {
	ok := []reviewer.Reviewer{&fakeReviewer{id: "a"}, &fakeReviewer{id: "b"}}

	tests := []struct {
		name      string
		reviewers []reviewer.Reviewer
		opts      Options
	}{
		{"no reviewers", nil, defaultOpts()},
		{"zero timeout", ok, Options{Timeout: 0, MinRequired: 1}},
		{"zero min required", ok, Options{Timeout: time.Second, MinRequired: 0}},
		{"min above count", ok, Options{Timeout: time.Second, MinRequired: 3}},
		{"negative parallel", ok, Options{Timeout: time.Second, MinRequired: 1, MaxParallel: -1}},
		{"negative retries", ok, Options{Timeout: time.Second, MinRequired: 1, Retries: -1}},
		{"duplicate identities", []reviewer.Reviewer{&fakeReviewer{id: "a"}, &fakeReviewer{id: "a"}}, defaultOpts()},
		{"empty identity", []reviewer.Reviewer{&fakeReviewer{id: ""}}, defaultOpts()},
	}

	for _, tt := range tests {
		_, err := New(tt.reviewers, tt.opts, quietLogger())
		if err == nil {
			t.Errorf("%s: expected configuration error", tt.name)
			continue
		}
		var cfgErr *domain.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected ConfigurationError, got %T", tt.name, err)
		}
	}
}

func TestReview_AllSucceed(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "a"},
		&fakeReviewer{id: "b"},
		&fakeReviewer{id: "c"},
	}

	o, err := New(reviewers, Options{Timeout: time.Second, MinRequired: 2}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	successes, outcomes, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successes) != 3 {
		t.Errorf("expected 3 successes, got %d", len(successes))
	}
	if len(outcomes) != 3 {
		t.Errorf("expected an outcome per reviewer, got %d", len(outcomes))
	}
}

func TestReview_ExactlyMinRequiredProceeds(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "good-1"},
		&fakeReviewer{id: "good-2"},
		&fakeReviewer{id: "bad", errs: []error{errors.New("boom")}},
	}

	o, _ := New(reviewers, Options{Timeout: time.Second, MinRequired: 2}, quietLogger())
	successes, _, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("partial failure must not be an error when threshold is met: %v", err)
	}
	if len(successes) != 2 {
		t.Errorf("expected 2 successes, got %d", len(successes))
	}
	for _, r := range successes {
		if r.ReviewerID == "bad" {
			t.Error("failed reviewer must be absent from successes")
		}
	}
}

func TestReview_InsufficientReviewers(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "bad-1", errs: []error{errors.New("boom")}},
		&fakeReviewer{id: "bad-2", errs: []error{errors.New("crash")}},
	}

	o, _ := New(reviewers, Options{Timeout: time.Second, MinRequired: 2}, quietLogger())
	_, _, err := o.Review(context.Background(), &domain.Request{})

	var insufficientErr *domain.InsufficientReviewersError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientReviewersError, got %v", err)
	}
	if insufficientErr.Succeeded != 0 || insufficientErr.Required != 2 {
		t.Errorf("expected successes=0 required=2, got %d/%d",
			insufficientErr.Succeeded, insufficientErr.Required)
	}
	if insufficientErr.Causes["bad-1"] != "boom" {
		t.Errorf("expected cause recorded, got %q", insufficientErr.Causes["bad-1"])
	}
	if len(insufficientErr.Causes) != 2 {
		t.Errorf("expected 2 causes, got %d", len(insufficientErr.Causes))
	}
}

func TestReview_TimeoutCountsAgainstThreshold(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "a"},
		&fakeReviewer{id: "b"},
		&fakeReviewer{id: "hung", delay: 5 * time.Second},
	}

	o, _ := New(reviewers, Options{Timeout: 50 * time.Millisecond, MinRequired: 2}, quietLogger())
	successes, outcomes, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successes) != 2 {
		t.Errorf("expected 2 successes, got %d", len(successes))
	}

	failed := FailedReviewerIDs(outcomes)
	if len(failed) != 1 || failed[0] != "hung" {
		t.Errorf("expected [hung], got %v", failed)
	}
}

func TestReview_HungReviewerDoesNotDelayOthers(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "fast-1"},
		&fakeReviewer{id: "fast-2"},
		&fakeReviewer{id: "hung", delay: 10 * time.Second},
	}

	o, _ := New(reviewers, Options{Timeout: 100 * time.Millisecond, MinRequired: 2}, quietLogger())

	start := time.Now()
	_, _, err := o.Review(context.Background(), &domain.Request{})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The whole orchestration is bounded by the timeout plus scheduling
	// overhead, not by the hung reviewer's sleep.
	if elapsed > 2*time.Second {
		t.Errorf("hung reviewer delayed the orchestration: %s", elapsed)
	}
}

func TestReview_FastFailureDoesNotCancelSlowSuccess(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "fail-fast", errs: []error{errors.New("boom")}},
		&fakeReviewer{id: "slow-good", delay: 200 * time.Millisecond},
	}

	o, _ := New(reviewers, Options{Timeout: 2 * time.Second, MinRequired: 1}, quietLogger())
	successes, _, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successes) != 1 || successes[0].ReviewerID != "slow-good" {
		t.Errorf("slow success must survive a fast sibling failure: %v", successes)
	}
}

func TestReview_SemaphoreCapDoesNotChangeResults(t *testing.T) {
	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "a", delay: 10 * time.Millisecond},
		&fakeReviewer{id: "b", delay: 10 * time.Millisecond},
		&fakeReviewer{id: "c", delay: 10 * time.Millisecond},
		&fakeReviewer{id: "d", delay: 10 * time.Millisecond},
		&fakeReviewer{id: "e", delay: 10 * time.Millisecond},
	}

	o, _ := New(reviewers, Options{Timeout: time.Second, MinRequired: 5, MaxParallel: 2}, quietLogger())
	successes, _, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successes) != 5 {
		t.Errorf("queued reviewers must still complete: got %d successes", len(successes))
	}
}

func TestReview_RetryRecoversFlakyReviewer(t *testing.T) {
	// Fails once, then succeeds. Retries happen at the orchestrator level;
	// the task runner itself never retries.
	flaky := &fakeReviewer{id: "flaky", errs: []error{errors.New("transient"), nil}}

	o, _ := New([]reviewer.Reviewer{flaky},
		Options{Timeout: time.Second, MinRequired: 1, Retries: 1}, quietLogger())

	successes, _, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if len(successes) != 1 {
		t.Errorf("expected 1 success, got %d", len(successes))
	}
	if got := flaky.attempts.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestReview_NoRetryByDefault(t *testing.T) {
	flaky := &fakeReviewer{id: "flaky", errs: []error{errors.New("transient"), nil}}

	o, _ := New([]reviewer.Reviewer{flaky, &fakeReviewer{id: "ok"}},
		Options{Timeout: time.Second, MinRequired: 1}, quietLogger())

	_, _, err := o.Review(context.Background(), &domain.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := flaky.attempts.Load(); got != 1 {
		t.Errorf("expected exactly 1 attempt without retries, got %d", got)
	}
}

func TestReview_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	reviewers := []reviewer.Reviewer{
		&fakeReviewer{id: "slow-1", delay: 5 * time.Second},
		&fakeReviewer{id: "slow-2", delay: 5 * time.Second},
	}

	o, _ := New(reviewers, Options{Timeout: 10 * time.Second, MinRequired: 1}, quietLogger())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := o.Review(ctx, &domain.Request{})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("cancellation did not unwind promptly")
	}
}
