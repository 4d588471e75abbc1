package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quorumlabs/quorum/internal/domain"
)

// DefaultSimilarityThreshold is the single-linkage merge threshold.
const DefaultSimilarityThreshold = 0.85

// DefaultSeverityWeights are the fixed priority weights per severity.
var DefaultSeverityWeights = map[domain.Severity]float64{
	domain.SeverityCritical:   1.0,
	domain.SeverityWarning:    0.6,
	domain.SeveritySuggestion: 0.3,
	domain.SeverityNitpick:    0.1,
}

// Config tunes the aggregator. Zero values fall back to defaults.
type Config struct {
	// SimilarityThreshold is the single-linkage merge threshold; nil means
	// DefaultSimilarityThreshold. An explicit 0 is honored and merges
	// every compatible pair.
	SimilarityThreshold *float64
	SeverityWeights     map[domain.Severity]float64
	Similarity          SimilarityFunc
	// NewID generates consolidated review IDs; injectable for tests.
	NewID func() string
	// Now supplies the creation timestamp; injectable for tests.
	Now func() time.Time
}

// Meta describes the request the reviews belong to.
type Meta struct {
	Repo     string
	PRNumber int
	// FailedReviewers lists reviewers excluded by timeout or failure.
	FailedReviewers []string
}

// Aggregator composes the clusterer and the merger/scorer. It is a pure
// function of the successful-reviews list: no shared state, safe for
// concurrent use.
type Aggregator struct {
	threshold float64
	weights   map[domain.Severity]float64
	sim       SimilarityFunc
	newID     func() string
	now       func() time.Time
}

// New builds an aggregator, filling in defaults for unset config fields.
func New(cfg Config) *Aggregator {
	a := &Aggregator{
		threshold: DefaultSimilarityThreshold,
		weights:   cfg.SeverityWeights,
		sim:       cfg.Similarity,
		newID:     cfg.NewID,
		now:       cfg.Now,
	}
	if cfg.SimilarityThreshold != nil {
		a.threshold = *cfg.SimilarityThreshold
	}
	if a.weights == nil {
		a.weights = DefaultSeverityWeights
	}
	if a.sim == nil {
		a.sim = LexicalSimilarity()
	}
	if a.newID == nil {
		a.newID = func() string { return "review-" + uuid.NewString()[:8] }
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Aggregate merges the successful reviews into one consolidated review.
// An empty findings set across all reviews is a valid, maximal-quality
// outcome, not an error. The caller (the orchestrator) is responsible for
// the minimum-success threshold.
func (a *Aggregator) Aggregate(reviews []domain.Review, meta Meta) *domain.ConsolidatedReview {
	// Canonical review order: output must not depend on completion order.
	ordered := make([]domain.Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReviewerID < ordered[j].ReviewerID
	})

	var members []member
	var totalDuration time.Duration
	for _, r := range ordered {
		totalDuration += r.Duration
		for _, f := range r.Findings {
			members = append(members, member{ReviewerID: r.ReviewerID, Finding: f})
		}
	}

	out := &domain.ConsolidatedReview{
		ID:              a.newID(),
		CreatedAt:       a.now(),
		Repo:            meta.Repo,
		PRNumber:        meta.PRNumber,
		ReviewCount:     len(ordered),
		TotalDuration:   totalDuration,
		Reviews:         ordered,
		FailedReviewers: meta.FailedReviewers,
	}

	if len(members) == 0 {
		out.Summary = cleanSummary(len(ordered))
		out.QualityScore = cleanQualityScore(len(ordered))
		return out
	}

	clusters := clusterFindings(members, a.sim, a.threshold)

	findings := make([]domain.ConsolidatedFinding, 0, len(clusters))
	for _, cluster := range clusters {
		findings = append(findings, mergeCluster(cluster, len(ordered)))
	}

	a.rank(findings)

	out.Findings = findings
	out.Summary = findingsSummary(out)
	out.QualityScore = qualityScore(len(ordered), findings)
	return out
}

// rank sorts by priority descending with deterministic tie-breaking:
// severity, consensus, then file path and line ascending, then title.
func (a *Aggregator) rank(findings []domain.ConsolidatedFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		fi, fj := &findings[i], &findings[j]
		pi, pj := fi.PriorityScore(a.weights), fj.PriorityScore(a.weights)
		if pi != pj {
			return pi > pj
		}
		if fi.Severity.Rank() != fj.Severity.Rank() {
			return fi.Severity.Rank() > fj.Severity.Rank()
		}
		if fi.ConsensusScore != fj.ConsensusScore {
			return fi.ConsensusScore > fj.ConsensusScore
		}
		if fi.FilePath != fj.FilePath {
			return fi.FilePath < fj.FilePath
		}
		if fi.LineStart != fj.LineStart {
			return fi.LineStart < fj.LineStart
		}
		return fi.Title < fj.Title
	})
}

func cleanSummary(reviewCount int) string {
	return fmt.Sprintf("No issues found by %d reviewers. LGTM!", reviewCount)
}

func findingsSummary(r *domain.ConsolidatedReview) string {
	bySev := r.FindingsBySeverity()

	var parts []string
	if n := bySev[domain.SeverityCritical]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", n))
	}
	if n := bySev[domain.SeverityWarning]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", n))
	}
	if n := bySev[domain.SeveritySuggestion]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d suggestions", n))
	}
	if n := bySev[domain.SeverityNitpick]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d nitpicks", n))
	}

	return fmt.Sprintf("Found %s across %d unique issues.", strings.Join(parts, ", "), len(r.Findings))
}

// cleanQualityScore rewards agreement on clean code: the more reviewers
// that found nothing, the more confident the verdict, capped at 0.95.
func cleanQualityScore(reviewCount int) float64 {
	score := 0.7 + float64(reviewCount)*0.1
	if score > 0.95 {
		return 0.95
	}
	return score
}

// optimalReviewerCount is where additional reviewers stop increasing the
// quality score's agent factor.
const optimalReviewerCount = 3

// qualityScore combines agreement breadth (mean consensus) with reviewer
// count. More agreeing reviewers never lower the score.
func qualityScore(reviewCount int, findings []domain.ConsolidatedFinding) float64 {
	if reviewCount == 0 {
		return 0
	}
	if len(findings) == 0 {
		return cleanQualityScore(reviewCount)
	}

	var sum float64
	for i := range findings {
		sum += findings[i].ConsensusScore
	}
	avgConsensus := sum / float64(len(findings))

	agentFactor := float64(reviewCount) / optimalReviewerCount
	if agentFactor > 1 {
		agentFactor = 1
	}

	return avgConsensus * agentFactor
}
