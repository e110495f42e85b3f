package repository

import (
	"context"

	"github.com/prepwise/interview-api/internal/domain"
)

// InterviewRepository defines the document store operations used for interviews.
// Implementations must be safe for concurrent use.
type InterviewRepository interface {
	// Create stores a new interview document and returns its generated id.
	Create(ctx context.Context, interview *domain.Interview) (string, error)

	// GetByID retrieves an interview by its document id.
	GetByID(ctx context.Context, id string) (*domain.Interview, error)

	// ListByUser returns a user's interviews, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Interview, error)

	// ListLatest returns finalized interviews, newest first, leaving out those
	// owned by excludeUserID. An empty excludeUserID leaves out nobody.
	ListLatest(ctx context.Context, excludeUserID string, limit int) ([]*domain.Interview, error)
}

// HealthChecker verifies that a backend is reachable before work is done against it.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// JobStore holds ledger entries keyed by job id.
// Implementations must be safe for concurrent use.
type JobStore interface {
	// Get returns the stored job or domain.ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Set inserts or replaces the job.
	Set(ctx context.Context, job *domain.Job) error

	// Delete removes the job. It reports false when nothing was removed,
	// which lets exactly one of several concurrent callers claim an entry.
	Delete(ctx context.Context, id string) (bool, error)
}

// TextGenerator is the external text-generation capability.
type TextGenerator interface {
	// Generate sends a single prompt and returns the model's text completion.
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthCheckFunc adapts a plain function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}
