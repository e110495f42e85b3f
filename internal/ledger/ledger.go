// Package ledger tracks asynchronous generation jobs from registration until
// their result is consumed by a poll.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/metrics"
	"github.com/prepwise/interview-api/internal/repository"
)

// Ledger is the pending-job table. State transitions are pending -> completed
// -> consumed, and a completed result never changes.
type Ledger struct {
	store  repository.JobStore
	logger *zap.Logger
	now    func() time.Time

	// mu serializes read-modify-write sequences within this process.
	mu sync.Mutex
}

// New creates a Ledger over the given job store.
func New(store repository.JobStore, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a pending entry carrying the raw request.
func (l *Ledger) Register(ctx context.Context, id string, params domain.GenerationRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.Get(ctx, id); err == nil {
		return domain.ErrJobExists
	} else if !errors.Is(err, domain.ErrJobNotFound) {
		return fmt.Errorf("ledger: register %s: %w", id, err)
	}

	job := &domain.Job{
		ID:        id,
		Status:    domain.JobPending,
		Params:    params,
		CreatedAt: l.now().UTC(),
	}
	if err := l.store.Set(ctx, job); err != nil {
		return fmt.Errorf("ledger: register %s: %w", id, err)
	}
	return nil
}

// Complete records the job's result. It succeeds once per job; later calls
// return domain.ErrJobAlreadyCompleted and leave the first result in place.
func (l *Ledger) Complete(ctx context.Context, id string, result *domain.JobResult) error {
	if result == nil {
		return fmt.Errorf("ledger: complete %s: nil result", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	job, err := l.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("ledger: complete %s: %w", id, err)
	}
	if job.Status.IsTerminal() {
		return domain.ErrJobAlreadyCompleted
	}

	completedAt := l.now().UTC()
	job.Status = domain.JobCompleted
	job.Result = result
	job.CompletedAt = &completedAt
	if err := l.store.Set(ctx, job); err != nil {
		return fmt.Errorf("ledger: complete %s: %w", id, err)
	}
	return nil
}

// Discard removes a job whatever its state. Later polls get domain.ErrJobNotFound.
func (l *Ledger) Discard(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("ledger: discard %s: %w", id, err)
	}
	return nil
}

// Poll reports a job's state. A completed job is returned once and removed;
// any later poll for the same id gets domain.ErrJobNotFound.
func (l *Ledger) Poll(ctx context.Context, id string) (*domain.PollView, error) {
	job, err := l.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			metrics.LedgerPolls.WithLabelValues("not_found").Inc()
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("ledger: poll %s: %w", id, err)
	}

	if !job.Status.IsTerminal() {
		metrics.LedgerPolls.WithLabelValues("processing").Inc()
		return &domain.PollView{Status: job.Status}, nil
	}

	removed, err := l.store.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ledger: consume %s: %w", id, err)
	}
	if !removed {
		// Another poll consumed it first.
		metrics.LedgerPolls.WithLabelValues("not_found").Inc()
		return nil, domain.ErrJobNotFound
	}

	metrics.LedgerPolls.WithLabelValues("completed").Inc()
	l.logger.Debug("Job result consumed",
		zap.String("job_id", id),
		zap.Bool("success", job.Result != nil && job.Result.Success),
	)
	return &domain.PollView{Status: job.Status, Result: job.Result}, nil
}
