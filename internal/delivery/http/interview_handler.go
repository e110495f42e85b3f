package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/usecase"
)

// InterviewHandler serves stored interviews.
type InterviewHandler struct {
	getUC  *usecase.GetInterviewUsecase
	logger *zap.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(getUC *usecase.GetInterviewUsecase, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{getUC: getUC, logger: logger}
}

// GetByID handles GET /api/v1/interviews/:id
func (h *InterviewHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	interview, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInterviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Interview not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, interview)
}

// ListByUser handles GET /api/v1/users/:userId/interviews?limit=
func (h *InterviewHandler) ListByUser(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	interviews, err := h.getUC.ListByUser(c.Request.Context(), c.Param("userId"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"interviews": interviews,
	})
}

// Latest handles GET /api/v1/interviews/latest?exclude=&limit=
func (h *InterviewHandler) Latest(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	interviews, err := h.getUC.ListLatest(c.Request.Context(), c.Query("exclude"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"interviews": interviews,
	})
}

// parseLimit reads ?limit=, writing a 400 and reporting false when it is invalid.
// A missing limit is 0, which the use case replaces with its default.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
