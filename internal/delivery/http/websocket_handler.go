package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/usecase"
)

const defaultStreamInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	// Origin filtering is done by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes job state to a client until the job finishes.
type WebSocketHandler struct {
	pollUC   *usecase.PollGenerationUsecase
	logger   *zap.Logger
	interval time.Duration
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(pollUC *usecase.PollGenerationUsecase, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		pollUC:   pollUC,
		logger:   logger,
		interval: defaultStreamInterval,
	}
}

// Stream handles GET /api/vapi/generate/stream?id= (WebSocket upgrade).
// The terminal message consumes the job exactly like a poll would.
func (h *WebSocketHandler) Stream(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No interview ID provided"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.String("job_id", id))

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		view, err := h.pollUC.Execute(ctx, id)
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
			_ = conn.WriteJSON(gin.H{"success": false, "error": "Interview not found"})
			return
		case err != nil:
			h.logger.Error("Stream poll failed", zap.String("job_id", id), zap.Error(err))
			_ = conn.WriteJSON(gin.H{"success": false, "error": "Internal server error"})
			return
		case view.Status.IsTerminal():
			if err := conn.WriteJSON(view.Result); err != nil {
				h.logger.Warn("Terminal result not delivered over WebSocket", zap.String("job_id", id), zap.Error(err))
			}
			h.logger.Debug("Job reached terminal state, closing WebSocket", zap.String("job_id", id))
			return
		}

		if err := conn.WriteJSON(processingBody()); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
