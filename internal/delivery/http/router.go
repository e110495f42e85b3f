package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/delivery/http/middleware"
	"github.com/prepwise/interview-api/internal/repository"
	"github.com/prepwise/interview-api/internal/usecase"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	SubmitUC     *usecase.SubmitGenerationUsecase
	PollUC       *usecase.PollGenerationUsecase
	InterviewUC  *usecase.GetInterviewUsecase
	HealthChecks map[string]repository.HealthChecker
	Logger       *zap.Logger

	RateLimitPerMin int
	BodyLimit       int64
	CORSOrigins     []string
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(middleware.Logger(logger))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	genHandler := NewGenerateHandler(deps.SubmitUC, deps.PollUC, logger)
	wsHandler := NewWebSocketHandler(deps.PollUC, logger)

	// Voice-workflow endpoint
	vapi := router.Group("/api/vapi")
	{
		vapi.POST("/generate",
			middleware.RateLimiter(deps.RateLimitPerMin),
			middleware.BodySizeLimit(deps.BodyLimit),
			genHandler.Submit,
		)
		vapi.GET("/generate", genHandler.Poll)
		vapi.GET("/generate/stream", wsHandler.Stream)
	}

	v1 := router.Group("/api/v1")
	{
		// Health check (no rate limiting)
		healthHandler := NewHealthHandler(deps.HealthChecks, logger)
		v1.GET("/health", healthHandler.Health)

		interviewHandler := NewInterviewHandler(deps.InterviewUC, logger)
		v1.GET("/interviews/latest", interviewHandler.Latest)
		v1.GET("/interviews/:id", interviewHandler.GetByID)
		v1.GET("/users/:userId/interviews", interviewHandler.ListByUser)
	}

	return router
}
