package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
)

// AttemptHandler exposes the learner-facing submission endpoint. A JSON body
// carries a normal answer; a multipart body carries a file answer with the
// same fields as form values.
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

type submitAnswerBody struct {
	Answer     json.RawMessage `json:"answer"`
	QuestionID uint            `json:"question"`
	UserID     uint            `json:"user"`
	CourseID   *string         `json:"course_id"`
}

// SubmitAnswer handles POST /attempts/:quiz_id.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	quizID, err := strconv.ParseUint(c.Param("quiz_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	req, err := h.parseSubmitRequest(c, uint(quizID))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.attemptService.SubmitAnswer(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "answer submitted", resp)
}

// GetProgress handles GET /attempts/:attempt_id/progress.
func (h *AttemptHandler) GetProgress(c *gin.Context) {
	attemptID, err := strconv.ParseUint(c.Param("attempt_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid attempt id", err)
		return
	}

	submitted, err := h.attemptService.GetProgress(c.Request.Context(), uint(attemptID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "attempt progress", gin.H{
		"submitted_answers": submitted,
	})
}

func (h *AttemptHandler) parseSubmitRequest(c *gin.Context, quizID uint) (*services.SubmitAnswerRequest, error) {
	if isMultipart(c) {
		return h.parseMultipartSubmit(c, quizID)
	}

	var body submitAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}

	return &services.SubmitAnswerRequest{
		QuizID:     quizID,
		QuestionID: body.QuestionID,
		UserID:     body.UserID,
		CourseID:   body.CourseID,
		Answer:     []byte(body.Answer),
	}, nil
}

// parseMultipartSubmit reads a file-bearing submission. The uploaded file's
// base name becomes the stored answer value.
func (h *AttemptHandler) parseMultipartSubmit(c *gin.Context, quizID uint) (*services.SubmitAnswerRequest, error) {
	questionID, err := strconv.ParseUint(c.PostForm("question"), 10, 32)
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseUint(c.PostForm("user"), 10, 32)
	if err != nil {
		return nil, err
	}

	fileHeader, err := c.FormFile("answer")
	if err != nil {
		return nil, err
	}
	fileName := filepath.Base(fileHeader.Filename)

	value, err := json.Marshal(fileName)
	if err != nil {
		return nil, err
	}

	req := &services.SubmitAnswerRequest{
		QuizID:     quizID,
		QuestionID: uint(questionID),
		UserID:     uint(userID),
		Answer:     value,
		FileName:   &fileName,
	}
	if courseID := c.PostForm("course_id"); courseID != "" {
		req.CourseID = &courseID
	}
	return req, nil
}

func isMultipart(c *gin.Context) bool {
	mediaType := c.ContentType()
	return mediaType == "multipart/form-data"
}
