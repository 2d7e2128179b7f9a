package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/traindesk/assessment-engine/internal/answers"
)

// DefaultTimeout is the fixed client-side request timeout; a timed-out
// request surfaces as a TransportError.
const DefaultTimeout = 30 * time.Second

// SubmitRequest carries one normalized answer to the attempt endpoint.
type SubmitRequest struct {
	QuizID     uint
	QuestionID uint
	UserID     uint
	CourseID   *string
	Answer     *answers.Value
}

// NextStep signals whether the submission completed the quiz. The server is
// the sole authority; the client never computes completion itself.
type NextStep struct {
	Last int `json:"last"`
}

// SubmitData is the success payload of an answer submission.
// SubmittedAnswers is the authoritative submitted set for the attempt; the
// client's local copy is a cache invalidated by every response.
type SubmitData struct {
	SubmittedAnswers []uint   `json:"submitted_answers"`
	NextStep         NextStep `json:"next_step"`
	IntendedURL      string   `json:"intended_url,omitempty"`
}

type submitEnvelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    SubmitData      `json:"data"`
}

// Client posts normalized answers to the attempt endpoint and interprets
// the response contract.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		logger: logger,
	}
}

// SubmitAnswer sends one question's answer. File-bearing answers switch the
// transport encoding to a multipart form; all other fields are identical.
func (c *Client) SubmitAnswer(ctx context.Context, req *SubmitRequest) (*SubmitData, error) {
	if req.Answer == nil {
		return nil, &TransportError{Err: fmt.Errorf("no answer payload")}
	}

	r := c.http.R().SetContext(ctx)

	if req.Answer.Upload != nil {
		fields := map[string]string{
			"question": strconv.FormatUint(uint64(req.QuestionID), 10),
			"quiz":     strconv.FormatUint(uint64(req.QuizID), 10),
			"user":     strconv.FormatUint(uint64(req.UserID), 10),
		}
		if req.CourseID != nil {
			fields["course_id"] = *req.CourseID
		}
		r.SetFormData(fields).
			SetFileReader("answer", req.Answer.Upload.Name, bytes.NewReader(req.Answer.Upload.Content))
	} else {
		body := map[string]any{
			"answer":   req.Answer.Data,
			"question": req.QuestionID,
			"quiz":     req.QuizID,
			"user":     req.UserID,
		}
		if req.CourseID != nil {
			body["course_id"] = *req.CourseID
		}
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := r.Post(fmt.Sprintf("/attempts/%d", req.QuizID))
	if err != nil {
		c.logger.Error("Answer submission failed",
			"quiz_id", req.QuizID,
			"question_id", req.QuestionID,
			"error", err)
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode() >= 400 {
		return nil, InterpretFailure(resp.StatusCode(), resp.Body())
	}

	var envelope submitEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response: %w", err)}
	}

	if !envelope.Success {
		var message string
		_ = json.Unmarshal(envelope.Message, &message)
		return nil, &RejectionError{Message: message}
	}

	c.logger.Debug("Answer submitted",
		"quiz_id", req.QuizID,
		"question_id", req.QuestionID,
		"submitted_count", len(envelope.Data.SubmittedAnswers),
		"last", envelope.Data.NextStep.Last)

	return &envelope.Data, nil
}
