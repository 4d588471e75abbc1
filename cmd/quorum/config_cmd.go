package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quorumlabs/quorum/internal/config"
	"github.com/quorumlabs/quorum/internal/gitdiff"
	"github.com/quorumlabs/quorum/internal/terminal"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage quorum configuration",
		Long:  "View, initialize, and validate quorum configuration files and environment variables.",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

// configDir returns the directory the config file is loaded from: the git
// repository root, falling back to the working directory.
func configDir() string {
	dir, err := gitdiff.Root(".")
	if err != nil {
		return "."
	}
	return dir
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display resolved configuration",
		Long:  "Show the fully resolved configuration from defaults, config file, and environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.LoadFromDirWithWarnings(configDir())
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			envState := config.LoadEnvState()
			resolved := config.Resolve(result.Config, envState, config.FlagState{}, config.Defaults)

			fmt.Println("Resolved configuration:")
			fmt.Println()
			fmt.Printf("  %-22s %s\n", "base:", resolved.Base)
			fmt.Printf("  %-22s %s\n", "timeout:", resolved.Timeout)
			fmt.Printf("  %-22s %d\n", "min_agents_required:", resolved.MinAgentsRequired)
			fmt.Printf("  %-22s %d\n", "max_parallel_agents:", resolved.MaxParallelAgents)
			fmt.Printf("  %-22s %d\n", "retries:", resolved.Retries)
			fmt.Printf("  %-22s %g\n", "similarity_threshold:", resolved.SimilarityThreshold)
			fmt.Printf("  %-22s %s\n", "fail_on:", resolved.FailOn)
			if resolved.GitHubRepo != "" {
				fmt.Printf("  %-22s %s\n", "github.repo:", resolved.GitHubRepo)
			}

			specs := resolved.ReviewerSpecs()
			names := make([]string, 0, len(specs))
			for _, s := range specs {
				names = append(names, s.Name)
			}
			fmt.Printf("  %-22s %s\n", "reviewers:", strings.Join(names, ", "))
			if len(resolved.Reviewers) == 0 {
				fmt.Printf("  %-22s %s\n", "", "(default panel; configure reviewers in .quorum.yaml)")
			}

			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a starter .quorum.yaml file",
		Long:  "Create a commented .quorum.yaml configuration file in the git repository root.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := gitdiff.Root(".")
			if err != nil {
				return fmt.Errorf("not in a git repository: %w", err)
			}
			configPath := filepath.Join(repoRoot, config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", configPath)
			}

			starter := `# quorum configuration file

# Base branch for diff comparison (default: main)
# base: main

# Timeout per reviewer, Go duration format or seconds (default: 2m)
# timeout: 2m

# Minimum successful reviewers for a valid consensus (default: 2)
# min_agents_required: 2

# Max concurrent reviewers, 0 = unbounded (default: 5)
# max_parallel_agents: 5

# Retry failed reviewers N times (default: 0)
# retries: 0

# Similarity threshold for merging findings, 0..1 (default: 0.85)
# similarity_threshold: 0.85

# Severity that makes the run exit nonzero (default: critical)
# fail_on: critical

# Consensus weight per severity
# severity_weights:
#   critical: 1.0
#   warning: 0.6
#   suggestion: 0.3
#   nitpick: 0.1

# Reviewer panel. Providers: anthropic, openai.
# Focus presets: architecture, general, performance, security, style.
# reviewers:
#   - name: security-reviewer
#     provider: anthropic
#     focus: security
#   - name: performance-reviewer
#     provider: openai
#     model: gpt-4o
#     focus: performance
#   - name: general-reviewer
#     provider: anthropic
#     focus: general

# GitHub repository for --pr context and --post
# github:
#   repo: owner/name
`
			if err := os.WriteFile(configPath, []byte(starter), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			fmt.Printf("Created %s with default settings (commented out).\n", configPath)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and environment variables",
		Long:  "Load and validate the config file and environment variables, reporting any warnings or errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !terminal.IsStdoutTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger()

			var problems []string
			var warnings []string

			result, err := config.LoadFromDirWithWarnings(configDir())
			cfg := &config.Config{}
			if err != nil {
				problems = append(problems, fmt.Sprintf("config file: %v", err))
			} else {
				cfg = result.Config
				warnings = append(warnings, result.Warnings...)
			}

			envState := config.LoadEnvState()
			resolved := config.Resolve(cfg, envState, config.FlagState{}, config.Defaults)

			if resolved.SimilarityThreshold < 0 || resolved.SimilarityThreshold > 1 {
				problems = append(problems, fmt.Sprintf("similarity_threshold must be in [0, 1], got %g", resolved.SimilarityThreshold))
			}
			if resolved.MinAgentsRequired < 1 {
				problems = append(problems, fmt.Sprintf("min_agents_required must be >= 1, got %d", resolved.MinAgentsRequired))
			}
			if resolved.MinAgentsRequired > len(resolved.ReviewerSpecs()) {
				problems = append(problems, fmt.Sprintf("min_agents_required (%d) exceeds reviewer count (%d)",
					resolved.MinAgentsRequired, len(resolved.ReviewerSpecs())))
			}
			if resolved.Timeout <= 0 {
				problems = append(problems, fmt.Sprintf("timeout must be > 0, got %s", resolved.Timeout))
			}

			for _, w := range warnings {
				logger.Logf(terminal.StyleWarning, "Config: %s", w)
			}
			for _, p := range problems {
				logger.Logf(terminal.StyleError, "Config: %s", p)
			}

			if len(problems) > 0 {
				return fmt.Errorf("configuration is invalid (%d problem(s))", len(problems))
			}
			logger.Log("Configuration is valid", terminal.StyleSuccess)
			return nil
		},
	}
}
