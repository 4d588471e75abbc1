// Package config provides configuration file support for quorum.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quorumlabs/quorum/internal/reviewer"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".quorum.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the quorum configuration file.
type Config struct {
	Base                *string            `yaml:"base"`
	Timeout             *Duration          `yaml:"timeout"`
	MinAgentsRequired   *int               `yaml:"min_agents_required"`
	MaxParallelAgents   *int               `yaml:"max_parallel_agents"`
	Retries             *int               `yaml:"retries"`
	SimilarityThreshold *float64           `yaml:"similarity_threshold"`
	FailOn              *string            `yaml:"fail_on"`
	SeverityWeights     map[string]float64 `yaml:"severity_weights"`
	Reviewers           []ReviewerConfig   `yaml:"reviewers"`
	GitHub              GitHubConfig       `yaml:"github"`
}

// ReviewerConfig describes one reviewer in the config file.
type ReviewerConfig struct {
	Name        string   `yaml:"name"`
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	Focus       string   `yaml:"focus"`
	MaxTokens   *int     `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
}

// GitHubConfig holds GitHub-related configuration.
type GitHubConfig struct {
	Repo *string `yaml:"repo"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromDirWithWarnings reads .quorum.yaml from the specified directory
// and returns warnings. Returns an empty config (not error) if the file
// doesn't exist.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFromPathWithWarnings(configPath)
}

// LoadFromPathWithWarnings reads a config file and returns warnings for
// unknown keys. Returns an empty config (not error) if the file doesn't
// exist. Returns an error if the file exists but is invalid.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// validSeverities are the accepted severity names in severity_weights and fail_on.
var validSeverities = []string{"critical", "warning", "suggestion", "nitpick"}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.MinAgentsRequired != nil && *c.MinAgentsRequired < 1 {
		return fmt.Errorf("min_agents_required must be >= 1, got %d", *c.MinAgentsRequired)
	}
	if c.MaxParallelAgents != nil && *c.MaxParallelAgents < 0 {
		return fmt.Errorf("max_parallel_agents must be >= 0, got %d", *c.MaxParallelAgents)
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", *c.Retries)
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.SimilarityThreshold != nil && (*c.SimilarityThreshold < 0 || *c.SimilarityThreshold > 1) {
		return fmt.Errorf("similarity_threshold must be in [0, 1], got %g", *c.SimilarityThreshold)
	}
	if c.FailOn != nil && !slices.Contains(validSeverities, *c.FailOn) {
		return fmt.Errorf("fail_on must be one of %v, got %q", validSeverities, *c.FailOn)
	}
	for name, weight := range c.SeverityWeights {
		if !slices.Contains(validSeverities, name) {
			return fmt.Errorf("severity_weights: unknown severity %q (valid: %v)", name, validSeverities)
		}
		if weight < 0 {
			return fmt.Errorf("severity_weights: weight for %q must be >= 0, got %g", name, weight)
		}
	}
	seen := make(map[string]bool, len(c.Reviewers))
	for i, r := range c.Reviewers {
		if r.Name == "" {
			return fmt.Errorf("reviewers[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("reviewers: duplicate name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Provider != "" && !slices.Contains(reviewer.SupportedProviders, r.Provider) {
			return fmt.Errorf("reviewers[%d]: provider must be one of %v, got %q",
				i, reviewer.SupportedProviders, r.Provider)
		}
		if r.Focus != "" {
			if _, err := reviewer.PresetByName(r.Focus); err != nil {
				return fmt.Errorf("reviewers[%d]: focus must be one of %v, got %q",
					i, reviewer.PresetNames(), r.Focus)
			}
		}
		if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 1) {
			return fmt.Errorf("reviewers[%d]: temperature must be in [0, 1], got %g", i, *r.Temperature)
		}
	}
	return nil
}

// knownTopLevelKeys are the valid top-level keys in the config file.
var knownTopLevelKeys = []string{
	"base", "timeout", "min_agents_required", "max_parallel_agents",
	"retries", "similarity_threshold", "fail_on", "severity_weights",
	"reviewers", "github",
}

// knownReviewerKeys are the valid keys of a reviewers list entry.
var knownReviewerKeys = []string{"name", "provider", "model", "focus", "max_tokens", "temperature"}

// knownGitHubKeys are the valid keys under the "github" section.
var knownGitHubKeys = []string{"repo"}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	for key := range raw {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	if reviewers, ok := raw["reviewers"].([]any); ok {
		for _, entry := range reviewers {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			for key := range m {
				if !slices.Contains(knownReviewerKeys, key) {
					warning := fmt.Sprintf("unknown key %q in reviewers entry of %s", key, ConfigFileName)
					if suggestion := findSimilar(key, knownReviewerKeys); suggestion != "" {
						warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
					}
					warnings = append(warnings, warning)
				}
			}
		}
	}

	if gh, ok := raw["github"].(map[string]any); ok {
		for key := range gh {
			if !slices.Contains(knownGitHubKeys, key) {
				warning := fmt.Sprintf("unknown key %q in github section of %s", key, ConfigFileName)
				if suggestion := findSimilar(key, knownGitHubKeys); suggestion != "" {
					warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
				}
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Base:                "main",
	Timeout:             120 * time.Second,
	MinAgentsRequired:   2,
	MaxParallelAgents:   5,
	Retries:             0,
	SimilarityThreshold: 0.85,
	FailOn:              "critical",
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Base                string
	Timeout             time.Duration
	MinAgentsRequired   int
	MaxParallelAgents   int
	Retries             int
	SimilarityThreshold float64
	FailOn              string
	SeverityWeights     map[string]float64
	Reviewers           []ReviewerConfig
	GitHubRepo          string
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	BaseSet                bool
	TimeoutSet             bool
	MinAgentsRequiredSet   bool
	MaxParallelAgentsSet   bool
	RetriesSet             bool
	SimilarityThresholdSet bool
	FailOnSet              bool
	GitHubRepoSet          bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Base                   string
	BaseSet                bool
	Timeout                time.Duration
	TimeoutSet             bool
	MinAgentsRequired      int
	MinAgentsRequiredSet   bool
	MaxParallelAgents      int
	MaxParallelAgentsSet   bool
	Retries                int
	RetriesSet             bool
	SimilarityThreshold    float64
	SimilarityThresholdSet bool
	FailOn                 string
	FailOnSet              bool
	GitHubRepo             string
	GitHubRepoSet          bool
}

// LoadEnvState reads environment variables and returns their state.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("QUORUM_BASE_REF"); v != "" {
		state.Base = v
		state.BaseSet = true
	}
	if v := os.Getenv("QUORUM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			state.Timeout = d
			state.TimeoutSet = true
		} else if secs, err := strconv.Atoi(v); err == nil {
			state.Timeout = time.Duration(secs) * time.Second
			state.TimeoutSet = true
		}
	}
	if v := os.Getenv("QUORUM_MIN_AGENTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.MinAgentsRequired = i
			state.MinAgentsRequiredSet = true
		}
	}
	if v := os.Getenv("QUORUM_MAX_PARALLEL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.MaxParallelAgents = i
			state.MaxParallelAgentsSet = true
		}
	}
	if v := os.Getenv("QUORUM_RETRIES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.Retries = i
			state.RetriesSet = true
		}
	}
	if v := os.Getenv("QUORUM_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			state.SimilarityThreshold = f
			state.SimilarityThresholdSet = true
		}
	}
	if v := os.Getenv("QUORUM_FAIL_ON"); v != "" {
		state.FailOn = v
		state.FailOnSet = true
	}
	if v := os.Getenv("QUORUM_GITHUB_REPO"); v != "" {
		state.GitHubRepo = v
		state.GitHubRepoSet = true
	}

	return state
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	// Apply config file values (if set)
	if cfg != nil {
		if cfg.Base != nil {
			result.Base = *cfg.Base
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.MinAgentsRequired != nil {
			result.MinAgentsRequired = *cfg.MinAgentsRequired
		}
		if cfg.MaxParallelAgents != nil {
			result.MaxParallelAgents = *cfg.MaxParallelAgents
		}
		if cfg.Retries != nil {
			result.Retries = *cfg.Retries
		}
		if cfg.SimilarityThreshold != nil {
			result.SimilarityThreshold = *cfg.SimilarityThreshold
		}
		if cfg.FailOn != nil {
			result.FailOn = *cfg.FailOn
		}
		if len(cfg.SeverityWeights) > 0 {
			result.SeverityWeights = cfg.SeverityWeights
		}
		if len(cfg.Reviewers) > 0 {
			result.Reviewers = cfg.Reviewers
		}
		if cfg.GitHub.Repo != nil {
			result.GitHubRepo = *cfg.GitHub.Repo
		}
	}

	// Apply env var values (if set)
	if envState.BaseSet {
		result.Base = envState.Base
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.MinAgentsRequiredSet {
		result.MinAgentsRequired = envState.MinAgentsRequired
	}
	if envState.MaxParallelAgentsSet {
		result.MaxParallelAgents = envState.MaxParallelAgents
	}
	if envState.RetriesSet {
		result.Retries = envState.Retries
	}
	if envState.SimilarityThresholdSet {
		result.SimilarityThreshold = envState.SimilarityThreshold
	}
	if envState.FailOnSet {
		result.FailOn = envState.FailOn
	}
	if envState.GitHubRepoSet {
		result.GitHubRepo = envState.GitHubRepo
	}

	// Apply flag values (if explicitly set)
	if flagState.BaseSet {
		result.Base = flagValues.Base
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.MinAgentsRequiredSet {
		result.MinAgentsRequired = flagValues.MinAgentsRequired
	}
	if flagState.MaxParallelAgentsSet {
		result.MaxParallelAgents = flagValues.MaxParallelAgents
	}
	if flagState.RetriesSet {
		result.Retries = flagValues.Retries
	}
	if flagState.SimilarityThresholdSet {
		result.SimilarityThreshold = flagValues.SimilarityThreshold
	}
	if flagState.FailOnSet {
		result.FailOn = flagValues.FailOn
	}
	if flagState.GitHubRepoSet {
		result.GitHubRepo = flagValues.GitHubRepo
	}

	return result
}

// ReviewerSpecs converts the configured reviewers into reviewer specs.
// When no reviewers are configured, a default panel is returned.
func (rc ResolvedConfig) ReviewerSpecs() []reviewer.Spec {
	if len(rc.Reviewers) == 0 {
		return reviewer.DefaultSpecs()
	}
	specs := make([]reviewer.Spec, 0, len(rc.Reviewers))
	for _, r := range rc.Reviewers {
		spec := reviewer.Spec{
			Name:     r.Name,
			Provider: r.Provider,
			Model:    r.Model,
			Focus:    r.Focus,
		}
		if r.MaxTokens != nil {
			spec.MaxTokens = *r.MaxTokens
		}
		if r.Temperature != nil {
			spec.Temperature = *r.Temperature
		}
		specs = append(specs, spec)
	}
	return specs
}

// SeverityWeightOverrides returns the configured severity weights keyed by
// severity name, or nil when none are configured.
func (rc ResolvedConfig) SeverityWeightOverrides() map[string]float64 {
	if len(rc.SeverityWeights) == 0 {
		return nil
	}
	return rc.SeverityWeights
}
