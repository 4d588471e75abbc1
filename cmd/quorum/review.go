package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/quorumlabs/quorum/internal/aggregate"
	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/gitdiff"
	"github.com/quorumlabs/quorum/internal/github"
	"github.com/quorumlabs/quorum/internal/orchestrator"
	"github.com/quorumlabs/quorum/internal/output"
	"github.com/quorumlabs/quorum/internal/reviewer"
	"github.com/quorumlabs/quorum/internal/terminal"
)

func executeReview(ctx context.Context, opts ReviewOpts, logger *terminal.Logger) domain.ExitCode {
	specs := opts.ReviewerSpecs()
	logger.Logf(terminal.StyleInfo, "Starting review %s(%d reviewers, min %d, base=%s)%s",
		terminal.Color(terminal.Dim), len(specs), opts.MinAgentsRequired, opts.Base,
		terminal.Color(terminal.Reset))

	reviewers, err := reviewer.FromSpecs(specs)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	change, err := gitdiff.Collect(workDir, opts.Base)
	if err != nil {
		logger.Logf(terminal.StyleError, "Failed to collect diff: %v", err)
		return domain.ExitError
	}
	if change.Empty() {
		logger.Logf(terminal.StyleSuccess, "No changes detected between HEAD and %s. Nothing to review.", opts.Base)
		return domain.ExitNoFindings
	}
	if opts.Verbose {
		logger.Logf(terminal.StyleDim, "Change set: %s", change.Summary())
	}

	req := buildRequest(change, opts.Base)

	// Enrich the request with PR metadata when a PR is named.
	var ghClient *github.Client
	if opts.PRNumber > 0 && opts.GitHubRepo != "" {
		ghClient, err = github.NewClient(ctx, opts.GitHubRepo)
		if err != nil {
			logger.Logf(terminal.StyleError, "GitHub: %v", err)
			return domain.ExitError
		}
		prCtx, err := ghClient.PRContext(ctx, opts.PRNumber)
		if err != nil {
			logger.Logf(terminal.StyleWarning, "Could not fetch PR context: %v (reviewing local diff only)", err)
		} else {
			prCtx.ChangedFiles = len(change.ChangedFiles)
			prCtx.Additions = change.Additions
			prCtx.Deletions = change.Deletions
			req.Context = prCtx
			logger.Logf(terminal.StyleDim, "Reviewing %s#%d: %s", prCtx.Repo, opts.PRNumber, prCtx.Title)
		}
	}

	orch, err := orchestrator.New(reviewers, orchestrator.Options{
		Timeout:     opts.Timeout,
		MinRequired: opts.MinAgentsRequired,
		MaxParallel: opts.MaxParallelAgents,
		Retries:     opts.Retries,
	}, logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	spinner := terminal.NewSpinnerFor(len(reviewers), orch.Completed())
	spinnerCtx, spinnerCancel := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	go func() {
		spinner.Run(spinnerCtx)
		close(spinnerDone)
	}()

	reviews, outcomes, err := orch.Review(ctx, req)
	spinnerCancel()
	<-spinnerDone

	if ctx.Err() != nil {
		return domain.ExitInterrupted
	}
	if err != nil {
		var insufficientErr *domain.InsufficientReviewersError
		if errors.As(err, &insufficientErr) {
			logger.Logf(terminal.StyleError, "%v", err)
		} else {
			logger.Logf(terminal.StyleError, "Review failed: %v", err)
		}
		return domain.ExitError
	}

	agg := aggregate.New(aggregate.Config{
		SimilarityThreshold: &opts.SimilarityThreshold,
		SeverityWeights:     severityWeights(opts.SeverityWeightOverrides()),
	})
	consolidated := agg.Aggregate(reviews, aggregate.Meta{
		Repo:            opts.GitHubRepo,
		PRNumber:        opts.PRNumber,
		FailedReviewers: orchestrator.FailedReviewerIDs(outcomes),
	})

	if opts.JSON {
		data, err := output.RenderJSON(consolidated)
		if err != nil {
			logger.Logf(terminal.StyleError, "%v", err)
			return domain.ExitError
		}
		os.Stdout.Write(data)
	} else {
		fmt.Println(output.RenderText(consolidated, terminal.ColorsEnabled()))
	}

	if opts.Post && ghClient != nil {
		post := terminal.NewPhaseSpinner("Posting review comment")
		postCtx, postCancel := context.WithCancel(context.Background())
		postDone := make(chan struct{})
		go func() {
			post.Run(postCtx)
			close(postDone)
		}()

		err := ghClient.PostComment(ctx, opts.PRNumber, output.RenderMarkdown(consolidated))
		postCancel()
		<-postDone
		if err != nil {
			logger.Logf(terminal.StyleError, "%v", err)
			return domain.ExitError
		}
		logger.Logf(terminal.StyleSuccess, "Posted review to %s#%d", ghClient.Repo(), opts.PRNumber)
	}

	// FailOn was validated before dispatch.
	failOnSeverity, _ := domain.ParseSeverity(opts.FailOn)
	if consolidated.MeetsThreshold(failOnSeverity) {
		return domain.ExitFindings
	}
	return domain.ExitNoFindings
}

// buildRequest packages the local change set as a reviewer request. The
// PR path replaces the context with API metadata, keeping the local stats.
func buildRequest(change *gitdiff.Result, base string) *domain.Request {
	return &domain.Request{
		Diff:  change.Diff,
		Files: change.Files,
		Context: domain.ReviewContext{
			BaseBranch:   base,
			ChangedFiles: len(change.ChangedFiles),
			Additions:    change.Additions,
			Deletions:    change.Deletions,
		},
	}
}

// severityWeights converts config weight overrides to domain keys, leaving
// unnamed severities at their default weight.
func severityWeights(overrides map[string]float64) map[domain.Severity]float64 {
	if len(overrides) == 0 {
		return nil
	}
	weights := make(map[domain.Severity]float64, len(aggregate.DefaultSeverityWeights))
	for s, w := range aggregate.DefaultSeverityWeights {
		weights[s] = w
	}
	for name, w := range overrides {
		if s, err := domain.ParseSeverity(name); err == nil {
			weights[s] = w
		}
	}
	return weights
}
