package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	gradingHandler *GradingHandler
}

func NewHandlerManager(
	attemptService services.AttemptService,
	gradingService services.GradingService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(attemptService, logger),
		gradingHandler: NewGradingHandler(gradingService, exportService, logger),
	}
}

// SetupRoutes sets up all API routes. The paths match the submission and
// review contracts the client posts against, so they are mounted at the root
// rather than under a version prefix.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Learner-facing submission routes
	attempts := router.Group("/attempts")
	{
		attempts.POST("/:quiz_id", hm.attemptHandler.SubmitAnswer)
	}

	// Trainer-facing review routes
	assessments := router.Group("/assessments")
	{
		assessments.GET("/:attempt_id/progress", hm.attemptHandler.GetProgress)
		assessments.POST("/:attempt_id/answer", hm.gradingHandler.MarkAnswer)
		assessments.POST("/:attempt_id/feedback", hm.gradingHandler.SubmitFeedback)
		assessments.POST("/:attempt_id/return", hm.gradingHandler.ReturnToStudent)
		assessments.POST("/:attempt_id/email", hm.gradingHandler.EmailResults)
		assessments.GET("/:attempt_id/export", hm.gradingHandler.ExportResults)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "assessment-engine",
		})
	})
}
