package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetInterviewUsecase handles reading stored interviews.
type GetInterviewUsecase struct {
	repo   repository.InterviewRepository
	logger *zap.Logger
}

// NewGetInterviewUsecase creates a new GetInterviewUsecase.
func NewGetInterviewUsecase(repo repository.InterviewRepository, logger *zap.Logger) *GetInterviewUsecase {
	return &GetInterviewUsecase{
		repo:   repo,
		logger: logger,
	}
}

// Execute retrieves an interview by its document id.
func (uc *GetInterviewUsecase) Execute(ctx context.Context, id string) (*domain.Interview, error) {
	interview, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrInterviewNotFound) {
			return nil, domain.ErrInterviewNotFound
		}
		uc.logger.Error("Failed to load interview", zap.String("document_id", id), zap.Error(err))
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return interview, nil
}

// ListByUser returns a user's interviews, newest first. limit is clamped to
// [1, 100] and defaults to 20.
func (uc *GetInterviewUsecase) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Interview, error) {
	if userID == "" {
		return nil, &domain.MissingFieldsError{Fields: []string{"userId"}}
	}

	interviews, err := uc.repo.ListByUser(ctx, userID, clampLimit(limit))
	if err != nil {
		uc.logger.Error("Failed to list interviews", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return interviews, nil
}

// ListLatest returns finalized interviews from everyone except excludeUserID,
// newest first. limit follows the same rules as ListByUser.
func (uc *GetInterviewUsecase) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]*domain.Interview, error) {
	interviews, err := uc.repo.ListLatest(ctx, excludeUserID, clampLimit(limit))
	if err != nil {
		uc.logger.Error("Failed to list latest interviews", zap.String("exclude_user_id", excludeUserID), zap.Error(err))
		return nil, fmt.Errorf("list latest interviews: %w", err)
	}
	return interviews, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}
