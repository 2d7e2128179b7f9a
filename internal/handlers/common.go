package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/traindesk/assessment-engine/internal/errors"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
)

// Envelope is the response shape every endpoint uses. Clients key off
// success first and only then read data; a false success with a 2xx status
// means the server understood the request but declined it.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// FieldErrorResponse carries structured validation failures, one message list
// per field, under a 422 status.
type FieldErrorResponse struct {
	Success bool                `json:"success"`
	Errors  map[string][]string `json:"errors"`
}

// BaseHandler provides common response and logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// RespondWithSuccess sends the success envelope.
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithError sends the failure envelope and logs it.
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", statusCode)
	} else {
		h.logger.Warn(message,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", statusCode)
	}

	c.JSON(statusCode, Envelope{
		Success: false,
		Message: message,
	})
}

// RespondWithValidationErrors renders field-level failures as 422 with one
// message list per field.
func (h *BaseHandler) RespondWithValidationErrors(c *gin.Context, ve apperrors.ValidationErrors) {
	fields := make(map[string][]string, len(ve))
	for _, e := range ve {
		fields[e.Field] = append(fields[e.Field], e.Message)
	}

	c.JSON(http.StatusUnprocessableEntity, FieldErrorResponse{
		Success: false,
		Errors:  fields,
	})
}

// handleServiceError maps service layer errors onto the response contract.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		h.RespondWithValidationErrors(c, ve)
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), nil)
	case services.IsBusinessRule(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrCommentRequired),
		errors.Is(err, services.ErrFeedbackRequired),
		errors.Is(err, services.ErrInvalidGradeStatus),
		errors.Is(err, services.ErrInvalidReviewOutcome),
		errors.Is(err, services.ErrQuestionNotInQuiz):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "internal server error", err)
	}
}
