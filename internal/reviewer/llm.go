package reviewer

import (
	"context"
	"fmt"
	"time"

	"github.com/quorumlabs/quorum/internal/domain"
)

// LLMReviewer reviews code through an LLM provider with a focus preset.
// It implements Reviewer.
type LLMReviewer struct {
	identity    string
	preset      Preset
	provider    Provider
	maxTokens   int
	temperature float64
}

// Spec describes one reviewer variant as configuration data.
type Spec struct {
	Name        string
	Provider    string
	Model       string
	Focus       string
	MaxTokens   int
	Temperature float64
}

// DefaultCallTimeout bounds a single provider call inside the resilient
// wrapper; the task runner enforces the per-reviewer deadline on top.
const DefaultCallTimeout = 150 * time.Second

// NewLLMReviewer builds a reviewer from a spec, wiring the provider through
// the resilient wrapper.
func NewLLMReviewer(spec Spec) (*LLMReviewer, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("reviewer spec has no name")
	}
	if spec.Provider == "" {
		spec.Provider = "anthropic"
	}
	if spec.Focus == "" {
		spec.Focus = "general"
	}

	preset, err := PresetByName(spec.Focus)
	if err != nil {
		return nil, fmt.Errorf("reviewer %q: %w", spec.Name, err)
	}

	provider, err := NewProvider(spec.Provider, spec.Model)
	if err != nil {
		return nil, fmt.Errorf("reviewer %q: %w", spec.Name, err)
	}

	return &LLMReviewer{
		identity:    spec.Name,
		preset:      preset,
		provider:    NewResilientProvider(provider, DefaultCallTimeout),
		maxTokens:   spec.MaxTokens,
		temperature: spec.Temperature,
	}, nil
}

// newLLMReviewerWithProvider is the injectable constructor used by tests.
func newLLMReviewerWithProvider(name string, preset Preset, provider Provider) *LLMReviewer {
	return &LLMReviewer{identity: name, preset: preset, provider: provider}
}

func (r *LLMReviewer) Identity() string {
	return r.identity
}

func (r *LLMReviewer) FocusAreas() []string {
	return r.preset.FocusAreas
}

// Review sends the request to the provider and parses the structured
// response. A malformed response gets one repair pass before failing.
func (r *LLMReviewer) Review(ctx context.Context, req *domain.Request) (*domain.Review, error) {
	start := time.Now()

	completion := CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(req, r.preset.Addendum),
		MaxTokens:    r.maxTokens,
		Temperature:  r.temperature,
	}

	resp, err := r.provider.Complete(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	findings, summary, _, err := parseReview(resp.Content)
	if err != nil {
		// One repair pass: ask the model to fix its own malformed output.
		repair := completion
		repair.UserPrompt = buildRepairPrompt(err, resp.Content)

		resp2, err2 := r.provider.Complete(ctx, repair)
		if err2 != nil {
			return nil, fmt.Errorf("repair pass failed: %w (original parse error: %w)", err2, err)
		}
		findings, summary, _, err = parseReview(resp2.Content)
		if err != nil {
			return nil, fmt.Errorf("response unparseable after repair: %w", err)
		}
	}

	return &domain.Review{
		ReviewerID: r.identity,
		FocusAreas: r.preset.FocusAreas,
		Findings:   findings,
		Summary:    summary,
		Duration:   time.Since(start),
	}, nil
}

// DefaultSpecs returns the reviewer panel used when no reviewers are
// configured: three Anthropic reviewers with complementary focus areas.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "security-reviewer", Provider: "anthropic", Focus: "security"},
		{Name: "performance-reviewer", Provider: "anthropic", Focus: "performance"},
		{Name: "general-reviewer", Provider: "anthropic", Focus: "general"},
	}
}

// FromSpecs builds all reviewers for one orchestration, failing fast on
// the first invalid spec.
func FromSpecs(specs []Spec) ([]Reviewer, error) {
	reviewers := make([]Reviewer, 0, len(specs))
	for _, spec := range specs {
		r, err := NewLLMReviewer(spec)
		if err != nil {
			return nil, err
		}
		reviewers = append(reviewers, r)
	}
	return reviewers, nil
}
