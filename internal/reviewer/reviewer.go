// Package reviewer provides the reviewer capability and its LLM-backed
// implementations.
package reviewer

import (
	"context"

	"github.com/quorumlabs/quorum/internal/domain"
)

// Reviewer is an opaque capability that analyzes a code change and returns
// structured findings. Implementations may be slow, may fail, and may hang;
// the task runner bounds their execution. Identities must be unique within
// one orchestration.
type Reviewer interface {
	// Identity returns the reviewer's unique identifier for this request.
	Identity() string

	// FocusAreas returns the categories this reviewer specializes in.
	FocusAreas() []string

	// Review analyzes the request and returns a complete review.
	// Implementations must honor ctx cancellation on a best-effort basis.
	Review(ctx context.Context, req *domain.Request) (*domain.Review, error)
}
