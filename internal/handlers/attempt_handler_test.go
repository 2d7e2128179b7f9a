package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/traindesk/assessment-engine/internal/errors"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
)

type fakeAttemptService struct {
	lastRequest *services.SubmitAnswerRequest
	response    *services.SubmitAnswerResponse
	err         error
}

func (f *fakeAttemptService) SubmitAnswer(ctx context.Context, req *services.SubmitAnswerRequest) (*services.SubmitAnswerResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeAttemptService) GetProgress(ctx context.Context, attemptID uint) ([]uint, error) {
	return []uint{10}, nil
}

func discardLogger() utils.Logger {
	return utils.NewDevelopmentLogger()
}

func TestAttemptHandler_SubmitAnswer_JSON(t *testing.T) {
	service := &fakeAttemptService{
		response: &services.SubmitAnswerResponse{
			AttemptID:        1,
			SubmittedAnswers: []uint{10, 12},
			NextStep:         services.NextStep{Last: 1},
		},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(service, discardLogger())
	router.POST("/attempts/:quiz_id", handler.SubmitAnswer)

	body := `{"answer": "my essay", "question": 12, "user": 55, "course_id": "course-9"}`
	req := httptest.NewRequest(http.MethodPost, "/attempts/3", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, service.lastRequest)
	assert.Equal(t, uint(3), service.lastRequest.QuizID)
	assert.Equal(t, uint(12), service.lastRequest.QuestionID)
	assert.Equal(t, uint(55), service.lastRequest.UserID)
	require.NotNil(t, service.lastRequest.CourseID)
	assert.Equal(t, "course-9", *service.lastRequest.CourseID)
	assert.JSONEq(t, `"my essay"`, string(service.lastRequest.Answer))

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			SubmittedAnswers []uint `json:"submitted_answers"`
			NextStep         struct {
				Last int `json:"last"`
			} `json:"next_step"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, []uint{10, 12}, envelope.Data.SubmittedAnswers)
	assert.Equal(t, 1, envelope.Data.NextStep.Last)
}

func TestAttemptHandler_SubmitAnswer_Multipart(t *testing.T) {
	service := &fakeAttemptService{
		response: &services.SubmitAnswerResponse{AttemptID: 1, SubmittedAnswers: []uint{12}},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(service, discardLogger())
	router.POST("/attempts/:quiz_id", handler.SubmitAnswer)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("question", "12")
	form.WriteField("user", "55")
	part, err := form.CreateFormFile("answer", "evidence.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/attempts/3", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, service.lastRequest)
	require.NotNil(t, service.lastRequest.FileName)
	assert.Equal(t, "evidence.png", *service.lastRequest.FileName)
	assert.JSONEq(t, `"evidence.png"`, string(service.lastRequest.Answer))
}

func TestAttemptHandler_SubmitAnswer_ValidationErrors(t *testing.T) {
	service := &fakeAttemptService{
		err: apperrors.ValidationErrors{
			{Field: "answer", Message: "is required"},
		},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(service, discardLogger())
	router.POST("/attempts/:quiz_id", handler.SubmitAnswer)

	req := httptest.NewRequest(http.MethodPost, "/attempts/3",
		bytes.NewBufferString(`{"question": 12, "user": 55}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp FieldErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"is required"}, resp.Errors["answer"])
}

func TestAttemptHandler_SubmitAnswer_NotFound(t *testing.T) {
	service := &fakeAttemptService{err: services.ErrQuizNotFound}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(service, discardLogger())
	router.POST("/attempts/:quiz_id", handler.SubmitAnswer)

	req := httptest.NewRequest(http.MethodPost, "/attempts/404",
		bytes.NewBufferString(`{"question": 12, "user": 55, "answer": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "quiz not found", envelope.Message)
}

func TestAttemptHandler_SubmitAnswer_BadQuizID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(&fakeAttemptService{}, discardLogger())
	router.POST("/attempts/:quiz_id", handler.SubmitAnswer)

	req := httptest.NewRequest(http.MethodPost, "/attempts/abc",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
