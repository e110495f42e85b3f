package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/ledger"
	"github.com/prepwise/interview-api/internal/metrics"
	"github.com/prepwise/interview-api/internal/pool"
)

// Dispatcher schedules background work without waiting for it.
type Dispatcher interface {
	Submit(task pool.Task) error
}

// SubmitGenerationUsecase validates generation requests and runs them either
// inline (sync) or in the background with the result parked in the ledger (async).
type SubmitGenerationUsecase struct {
	mode       domain.ExecutionMode
	ledger     *ledger.Ledger
	dispatcher Dispatcher
	worker     *GenerateInterviewUsecase
	logger     *zap.Logger
	now        func() time.Time

	// completeBackoff bounds how long a finished job may keep retrying its ledger write.
	completeBackoff func() retry.Backoff
}

func defaultCompleteBackoff() retry.Backoff {
	return retry.WithMaxRetries(4, retry.NewExponential(100*time.Millisecond))
}

// NewSubmitGenerationUsecase creates a new SubmitGenerationUsecase.
// ledger and dispatcher are only used in async mode.
func NewSubmitGenerationUsecase(
	mode domain.ExecutionMode,
	l *ledger.Ledger,
	dispatcher Dispatcher,
	worker *GenerateInterviewUsecase,
	logger *zap.Logger,
) *SubmitGenerationUsecase {
	return &SubmitGenerationUsecase{
		mode:       mode,
		ledger:     l,
		dispatcher: dispatcher,
		worker:     worker,
		logger:     logger,
		now:        time.Now,

		completeBackoff: defaultCompleteBackoff,
	}
}

// Mode returns the configured execution mode.
func (uc *SubmitGenerationUsecase) Mode() domain.ExecutionMode {
	return uc.mode
}

// Validate reports every missing required field at once.
func Validate(req *domain.GenerationRequest) error {
	if missing := req.MissingFields(); len(missing) > 0 {
		return &domain.MissingFieldsError{Fields: missing}
	}
	if req.Amount < 0 {
		return fmt.Errorf("%w: amount must be a positive number", domain.ErrInvalidField)
	}
	return nil
}

// Execute validates the request and starts generation.
func (uc *SubmitGenerationUsecase) Execute(ctx context.Context, req *domain.GenerationRequest) (*domain.SubmitResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if uc.mode == domain.ModeSync {
		return uc.executeSync(ctx, req)
	}
	return uc.executeAsync(ctx, req)
}

func (uc *SubmitGenerationUsecase) executeSync(ctx context.Context, req *domain.GenerationRequest) (*domain.SubmitResponse, error) {
	start := time.Now()
	metrics.JobsInFlight.Inc()
	docID, err := uc.worker.Execute(ctx, req)
	metrics.JobsInFlight.Dec()
	uc.observe(domain.ModeSync, err, start)

	if err != nil {
		uc.logger.Error("Interview generation failed",
			zap.String("mode", string(domain.ModeSync)),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	return &domain.SubmitResponse{
		Success:    true,
		Status:     domain.SubmitStatusCompleted,
		DocumentID: docID,
		Message:    "Interview questions generated and stored successfully",
	}, nil
}

func (uc *SubmitGenerationUsecase) executeAsync(ctx context.Context, req *domain.GenerationRequest) (*domain.SubmitResponse, error) {
	jobID := domain.NewJobID(uc.now())
	if err := uc.ledger.Register(ctx, jobID, *req); err != nil {
		uc.logger.Error("Failed to register job", zap.String("job_id", jobID), zap.Error(err))
		return nil, fmt.Errorf("register job: %w", err)
	}

	params := *req
	if err := uc.dispatcher.Submit(func(taskCtx context.Context) {
		uc.runJob(taskCtx, jobID, params)
	}); err != nil {
		uc.logger.Warn("Job rejected by dispatcher", zap.String("job_id", jobID), zap.Error(err))
		// Leave a terminal record so a poll for this id does not report processing forever.
		uc.complete(context.WithoutCancel(ctx), jobID, domain.FailureResult(err))
		metrics.GenerationsTotal.WithLabelValues(string(domain.ModeAsync), "rejected").Inc()
		if errors.Is(err, domain.ErrQueueFull) {
			return nil, domain.ErrQueueFull
		}
		return nil, fmt.Errorf("dispatch job: %w", err)
	}

	uc.logger.Info("Interview generation accepted",
		zap.String("job_id", jobID),
		zap.String("user_id", req.UserID),
	)

	return &domain.SubmitResponse{
		Success:     true,
		Status:      domain.SubmitStatusAccepted,
		InterviewID: jobID,
		Message:     "Interview generation started",
	}, nil
}

// runJob is the background task boundary. It records exactly one completion
// for the job, whether the worker succeeds, fails, or panics.
func (uc *SubmitGenerationUsecase) runJob(ctx context.Context, jobID string, req domain.GenerationRequest) {
	start := time.Now()
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	var (
		result *domain.JobResult
		runErr error
	)
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Generation worker panic recovered",
				zap.String("job_id", jobID),
				zap.Any("panic", r),
			)
			runErr = fmt.Errorf("worker panic: %v", r)
			result = domain.FailureResult(runErr)
		}
		uc.observe(domain.ModeAsync, runErr, start)
		uc.complete(ctx, jobID, result)
	}()

	docID, err := uc.worker.Execute(ctx, &req)
	if err != nil {
		uc.logger.Error("Interview generation failed",
			zap.String("job_id", jobID),
			zap.String("mode", string(domain.ModeAsync)),
			zap.Error(err),
		)
		runErr = err
		result = domain.FailureResult(err)
		return
	}
	result = domain.SuccessResult(docID)
}

// complete records the job's result, retrying transient store errors. When the
// write never lands the entry is discarded, so a poll reports not-found rather
// than processing until the entry expires.
func (uc *SubmitGenerationUsecase) complete(ctx context.Context, jobID string, result *domain.JobResult) {
	attempt := 0
	err := retry.Do(ctx, uc.completeBackoff(), func(ctx context.Context) error {
		attempt++
		err := uc.ledger.Complete(ctx, jobID, result)
		if err == nil || errors.Is(err, domain.ErrJobAlreadyCompleted) || errors.Is(err, domain.ErrJobNotFound) {
			return err
		}
		uc.logger.Warn("Recording job result failed, retrying",
			zap.String("job_id", jobID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		uc.logger.Debug("Job completed",
			zap.String("job_id", jobID),
			zap.Bool("success", result.Success),
			zap.String("document_id", result.DocumentID),
		)
		return
	case errors.Is(err, domain.ErrJobAlreadyCompleted):
		// An earlier attempt reported an error but the write landed.
		return
	case errors.Is(err, domain.ErrJobNotFound):
		uc.logger.Warn("Job vanished before its result was recorded",
			zap.String("job_id", jobID),
			zap.String("document_id", result.DocumentID),
		)
		return
	}

	uc.logger.Error("Failed to record job result",
		zap.String("job_id", jobID),
		zap.Bool("success", result.Success),
		zap.String("document_id", result.DocumentID),
		zap.Int("attempts", attempt),
		zap.Error(err),
	)

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if derr := uc.ledger.Discard(dctx, jobID); derr != nil {
		uc.logger.Error("Failed to discard unrecorded job",
			zap.String("job_id", jobID),
			zap.Error(derr),
		)
	}
}

func (uc *SubmitGenerationUsecase) observe(mode domain.ExecutionMode, err error, start time.Time) {
	outcome := Outcome(err)
	metrics.GenerationsTotal.WithLabelValues(string(mode), outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Outcome maps a worker error to a short metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, domain.ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, domain.ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, domain.ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "error"
	}
}
