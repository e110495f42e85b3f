package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

// GenerateInterviewUsecase turns a validated request into a stored Interview.
type GenerateInterviewUsecase struct {
	repo      repository.InterviewRepository
	generator repository.TextGenerator
	checker   repository.HealthChecker
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerateInterviewUsecase creates a new GenerateInterviewUsecase. checker
// may be nil, in which case the document store is not checked before generating.
func NewGenerateInterviewUsecase(
	repo repository.InterviewRepository,
	generator repository.TextGenerator,
	checker repository.HealthChecker,
	logger *zap.Logger,
) *GenerateInterviewUsecase {
	return &GenerateInterviewUsecase{
		repo:      repo,
		generator: generator,
		checker:   checker,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute generates questions, persists the interview, and returns its document id.
// Nothing is written unless every earlier step succeeded.
func (uc *GenerateInterviewUsecase) Execute(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	if uc.checker != nil {
		if err := uc.checker.Check(ctx); err != nil {
			uc.logger.Error("Document store connectivity check failed", zap.Error(err))
			return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
	}

	raw, err := uc.generator.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		uc.logger.Error("Model output could not be parsed",
			zap.String("user_id", req.UserID),
			zap.String("raw_output", raw),
			zap.Error(err),
		)
		return "", err
	}
	if len(questions) != int(req.Amount) {
		uc.logger.Warn("Model returned a different number of questions",
			zap.Int("requested", int(req.Amount)),
			zap.Int("received", len(questions)),
		)
	}

	interview := &domain.Interview{
		Role:       req.Role,
		Type:       req.Type,
		Level:      req.Level,
		TechStack:  req.TechStack.Tokens(),
		Questions:  questions,
		UserID:     req.UserID,
		Finalized:  true,
		CoverImage: domain.RandomInterviewCover(),
		CreatedAt:  uc.now().UTC().Format(time.RFC3339Nano),
	}

	docID, err := uc.repo.Create(ctx, interview)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	uc.logger.Info("Interview stored",
		zap.String("document_id", docID),
		zap.String("user_id", req.UserID),
		zap.Int("questions", len(questions)),
	)
	return docID, nil
}
