// Package main provides the CLI entry point for quorum.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quorumlabs/quorum/internal/config"
	"github.com/quorumlabs/quorum/internal/domain"
	"github.com/quorumlabs/quorum/internal/gitdiff"
	"github.com/quorumlabs/quorum/internal/terminal"
)

var (
	baseRef     string
	timeout     time.Duration
	minAgents   int
	maxParallel int
	retries     int
	threshold   float64
	failOn      string
	repoSlug    string
	prNumber    int
	post        bool
	jsonOutput  bool
	verbose     bool
	noColor     bool
	noConfig    bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "quorum",
		Short: "Multi-agent code review with consensus scoring",
		Long: `Run a panel of LLM reviewers against a change set in parallel, cluster
similar findings, and rank them by weighted consensus.

Exit codes:
  0 - No findings at or above the fail-on severity
  1 - Findings at or above the fail-on severity
  2 - Error
  130 - Interrupted`,
		RunE:          runReview,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Configuration flags (defaults are resolved via config.Resolve with precedence: flag > env > config > default)
	rootCmd.Flags().StringVarP(&baseRef, "base", "b", "",
		"Base ref to diff against (default: main, env: QUORUM_BASE_REF)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Timeout per reviewer (default: 2m, env: QUORUM_TIMEOUT)")
	rootCmd.Flags().IntVar(&minAgents, "min-agents", 0,
		"Minimum successful reviewers required (default: 2, env: QUORUM_MIN_AGENTS)")
	rootCmd.Flags().IntVarP(&maxParallel, "max-parallel", "c", 0,
		"Max concurrent reviewers, 0 = unbounded (default: 5, env: QUORUM_MAX_PARALLEL)")
	rootCmd.Flags().IntVarP(&retries, "retries", "R", 0,
		"Retry failed reviewers N times (default: 0, env: QUORUM_RETRIES)")
	rootCmd.Flags().Float64Var(&threshold, "threshold", 0,
		"Similarity threshold for merging findings (default: 0.85, env: QUORUM_SIMILARITY_THRESHOLD)")
	rootCmd.Flags().StringVar(&failOn, "fail-on", "",
		"Severity that makes the run exit nonzero: critical, warning, suggestion, nitpick (default: critical, env: QUORUM_FAIL_ON)")

	// PR integration
	rootCmd.Flags().StringVar(&repoSlug, "repo", "",
		"GitHub repository as owner/name (env: QUORUM_GITHUB_REPO)")
	rootCmd.Flags().IntVar(&prNumber, "pr", 0,
		"Pull request number for PR context and comment posting")
	rootCmd.Flags().BoolVar(&post, "post", false,
		"Post the consolidated review as a PR comment (requires --pr and --repo)")

	// Output
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"Emit the consolidated review as JSON on stdout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print per-reviewer progress detail")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	rootCmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the .quorum.yaml config file")

	rootCmd.AddCommand(newConfigCmd())
	setGroupedUsage(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return 0
}

func runReview(cmd *cobra.Command, _ []string) error {
	if noColor || !terminal.IsStdoutTTY() {
		terminal.DisableColors()
	}

	logger := terminal.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, shutting down...", terminal.StyleWarning)
		cancel()
	}()

	// Load config file from the repository root (unless --no-config).
	var cfg *config.Config
	if !noConfig {
		dir, err := gitdiff.Root(".")
		if err != nil {
			dir = "."
		}
		result, err := config.LoadFromDirWithWarnings(dir)
		if err != nil {
			logger.Logf(terminal.StyleError, "Config error: %v", err)
			return exitCode(domain.ExitError)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	flagState := config.FlagState{
		BaseSet:                cmd.Flags().Changed("base"),
		TimeoutSet:             cmd.Flags().Changed("timeout"),
		MinAgentsRequiredSet:   cmd.Flags().Changed("min-agents"),
		MaxParallelAgentsSet:   cmd.Flags().Changed("max-parallel"),
		RetriesSet:             cmd.Flags().Changed("retries"),
		SimilarityThresholdSet: cmd.Flags().Changed("threshold"),
		FailOnSet:              cmd.Flags().Changed("fail-on"),
		GitHubRepoSet:          cmd.Flags().Changed("repo"),
	}
	envState := config.LoadEnvState()
	flagValues := config.ResolvedConfig{
		Base:                baseRef,
		Timeout:             timeout,
		MinAgentsRequired:   minAgents,
		MaxParallelAgents:   maxParallel,
		Retries:             retries,
		SimilarityThreshold: threshold,
		FailOn:              failOn,
		GitHubRepo:          repoSlug,
	}

	resolved := config.Resolve(cfg, envState, flagState, flagValues)

	if resolved.SimilarityThreshold < 0 || resolved.SimilarityThreshold > 1 {
		logger.Logf(terminal.StyleError, "similarity threshold must be in [0, 1], got %g", resolved.SimilarityThreshold)
		return exitCode(domain.ExitError)
	}
	if _, err := domain.ParseSeverity(resolved.FailOn); err != nil {
		logger.Logf(terminal.StyleError, "Invalid fail-on severity: %v", err)
		return exitCode(domain.ExitError)
	}
	if post && (prNumber == 0 || resolved.GitHubRepo == "") {
		logger.Log("--post requires --pr and a repository (--repo or config)", terminal.StyleError)
		return exitCode(domain.ExitError)
	}

	opts := ReviewOpts{
		ResolvedConfig: resolved,
		Verbose:        verbose,
		PRNumber:       prNumber,
		Post:           post,
		JSON:           jsonOutput,
	}

	return exitCode(executeReview(ctx, opts, logger))
}
