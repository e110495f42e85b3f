package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/ledger"
)

// PollGenerationUsecase reports the state of an asynchronous generation job.
type PollGenerationUsecase struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewPollGenerationUsecase creates a new PollGenerationUsecase.
func NewPollGenerationUsecase(l *ledger.Ledger, logger *zap.Logger) *PollGenerationUsecase {
	return &PollGenerationUsecase{
		ledger: l,
		logger: logger,
	}
}

// Execute returns the job's pending state or its result. A returned result
// has been consumed; the next call for the same id yields domain.ErrJobNotFound.
func (uc *PollGenerationUsecase) Execute(ctx context.Context, jobID string) (*domain.PollView, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, domain.ErrJobNotFound
	}

	view, err := uc.ledger.Poll(ctx, jobID)
	if err != nil {
		uc.logger.Debug("Job not available", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return view, nil
}
