package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/usecase"
)

const processingMessage = "Your interview is still being generated"

// GenerateHandler handles interview generation requests and job polls.
type GenerateHandler struct {
	submitUC *usecase.SubmitGenerationUsecase
	pollUC   *usecase.PollGenerationUsecase
	logger   *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(submitUC *usecase.SubmitGenerationUsecase, pollUC *usecase.PollGenerationUsecase, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		submitUC: submitUC,
		pollUC:   pollUC,
		logger:   logger,
	}
}

// Submit handles POST /api/vapi/generate
func (h *GenerateHandler) Submit(c *gin.Context) {
	var req domain.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "Request body too large"})
			return
		}
		h.logger.Debug("Rejected malformed generation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrMalformedInput.Error()})
		return
	}

	resp, err := h.submitUC.Execute(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields), errors.Is(err, domain.ErrInvalidField):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, domain.ErrQueueFull):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		case h.submitUC.Mode() == domain.ModeSync:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"status":  domain.SubmitStatusFailed,
				"error":   domain.FailureResult(err).Error,
			})
		default:
			h.logger.Error("Submit generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		}
		return
	}

	if resp.InterviewID != "" {
		c.Set("job_id", resp.InterviewID)
		c.JSON(http.StatusAccepted, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Poll handles GET /api/vapi/generate?id=
func (h *GenerateHandler) Poll(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No interview ID provided"})
		return
	}
	c.Set("job_id", id)

	view, err := h.pollUC.Execute(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Interview not found"})
			return
		}
		h.logger.Error("Poll failed", zap.Error(err), zap.String("job_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	if !view.Status.IsTerminal() {
		c.JSON(http.StatusAccepted, processingBody())
		return
	}
	c.JSON(http.StatusOK, view.Result)
}

func processingBody() gin.H {
	return gin.H{
		"success": true,
		"status":  "processing",
		"message": processingMessage,
	}
}
