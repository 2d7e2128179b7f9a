package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
)

// GradingHandler exposes the trainer-facing review endpoints under
// /assessments/:attempt_id.
type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	exportService  services.ExportService
}

func NewGradingHandler(gradingService services.GradingService, exportService services.ExportService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		exportService:  exportService,
	}
}

type markAnswerBody struct {
	QuestionID uint    `json:"question"`
	Status     string  `json:"status"`
	Comment    *string `json:"comment"`
	Assisted   int     `json:"assisted"`
}

// MarkAnswer handles POST /assessments/:attempt_id/answer. A body with a
// comment field is a comment action; otherwise it is a grade action.
func (h *GradingHandler) MarkAnswer(c *gin.Context) {
	attemptID, ok := h.attemptID(c)
	if !ok {
		return
	}

	var body markAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	graderID := h.reviewerID(c)

	if body.Comment != nil {
		result, err := h.gradingService.CommentAnswer(c.Request.Context(), attemptID, &services.CommentAnswerRequest{
			QuestionID: body.QuestionID,
			Comment:    *body.Comment,
			Assisted:   body.Assisted == 1,
			GraderID:   graderID,
		})
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		h.RespondWithSuccess(c, http.StatusOK, "comment saved", result)
		return
	}

	result, err := h.gradingService.MarkAnswer(c.Request.Context(), attemptID, &services.MarkAnswerRequest{
		QuestionID: body.QuestionID,
		Status:     gradeStatus(body.Status),
		Assisted:   body.Assisted == 1,
		GraderID:   graderID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "answer marked", result)
}

type feedbackBody struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
	Assisted int    `json:"assisted"`
}

// SubmitFeedback handles POST /assessments/:attempt_id/feedback.
func (h *GradingHandler) SubmitFeedback(c *gin.Context) {
	attemptID, ok := h.attemptID(c)
	if !ok {
		return
	}

	var body feedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.gradingService.SubmitFeedback(c.Request.Context(), attemptID, &services.FeedbackRequest{
		Status:     attemptStatus(body.Status),
		Feedback:   body.Feedback,
		Assisted:   body.Assisted == 1,
		ReviewerID: h.reviewerID(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "feedback saved", nil)
}

type reviewActionBody struct {
	Assisted int `json:"assisted"`
}

// ReturnToStudent handles POST /assessments/:attempt_id/return.
func (h *GradingHandler) ReturnToStudent(c *gin.Context) {
	h.reviewAction(c, "attempt returned", h.gradingService.ReturnToStudent)
}

// EmailResults handles POST /assessments/:attempt_id/email.
func (h *GradingHandler) EmailResults(c *gin.Context) {
	h.reviewAction(c, "results emailed", h.gradingService.EmailResults)
}

// ExportResults handles GET /assessments/:attempt_id/export and streams an
// Excel workbook.
func (h *GradingHandler) ExportResults(c *gin.Context) {
	attemptID, ok := h.attemptID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportAttemptResults(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("attempt-%d-results.xlsx", attemptID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *GradingHandler) reviewAction(c *gin.Context, message string, action func(ctx context.Context, attemptID uint, req *services.ReviewActionRequest) error) {
	attemptID, ok := h.attemptID(c)
	if !ok {
		return
	}

	var body reviewActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := action(c.Request.Context(), attemptID, &services.ReviewActionRequest{
		Assisted:   body.Assisted == 1,
		ReviewerID: h.reviewerID(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, message, nil)
}

func (h *GradingHandler) attemptID(c *gin.Context) (uint, bool) {
	attemptID, err := strconv.ParseUint(c.Param("attempt_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid attempt id", err)
		return 0, false
	}
	return uint(attemptID), true
}

// reviewerID reads the authenticated trainer's identity placed on the context
// by the auth middleware.
func (h *GradingHandler) reviewerID(c *gin.Context) uint {
	if id, exists := c.Get("user_id"); exists {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

func gradeStatus(s string) models.GradeStatus {
	return models.GradeStatus(strings.ToLower(s))
}

// attemptStatus accepts the review UI's uppercase status values.
func attemptStatus(s string) models.AttemptStatus {
	return models.AttemptStatus(strings.ToLower(s))
}
