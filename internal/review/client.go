// Package review implements the trainer-side marking workflow: per-answer
// grades and comments, attempt-level feedback, and the redirect policy back
// into the admin UI. It shares the submission protocol's response idioms.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/protocol"
	"github.com/traindesk/assessment-engine/internal/ui"
)

// ResultRenderer receives per-question grade results for optimistic
// rendering, without waiting for a full reload.
type ResultRenderer interface {
	RenderResult(result models.GradeResult)
}

// Client drives the review of one attempt.
type Client struct {
	http      *resty.Client
	attemptID uint
	studentID uint

	// currentURL is the page URL at the time an action completes; the
	// redirect policy reads its query parameters.
	currentURL string

	// assisted reflects the staff-assistance toggle, read at call time.
	assisted func() bool

	notifier ui.Notifier
	nav      ui.Navigator
	renderer ResultRenderer
	logger   *slog.Logger
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	AttemptID  uint
	StudentID  uint
	CurrentURL string
	Assisted   func() bool
	Notifier   ui.Notifier
	Navigator  ui.Navigator
	Renderer   ResultRenderer
	Logger     *slog.Logger
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = protocol.DefaultTimeout
	}
	assisted := cfg.Assisted
	if assisted == nil {
		assisted = func() bool { return false }
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout),
		attemptID:  cfg.AttemptID,
		studentID:  cfg.StudentID,
		currentURL: cfg.CurrentURL,
		assisted:   assisted,
		notifier:   cfg.Notifier,
		nav:        cfg.Navigator,
		renderer:   cfg.Renderer,
		logger:     cfg.Logger,
	}
}

type gradeEnvelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    struct {
		QuestionID uint               `json:"question_id"`
		Status     models.GradeStatus `json:"status"`
		Comment    *string            `json:"comment,omitempty"`
	} `json:"data"`
}

// MarkAnswer marks one answer correct or incorrect. Fire-and-forget: no
// comment required, no redirect.
func (c *Client) MarkAnswer(ctx context.Context, questionID uint, status models.GradeStatus) error {
	body := map[string]any{
		"question": questionID,
		"status":   status,
		"assisted": c.assistedFlag(),
	}
	return c.postGrade(ctx, "answer", body)
}

// SubmitComment attaches a comment to one answer. An empty trimmed comment
// blocks the call before it reaches the network and reveals an inline
// validation message instead.
func (c *Client) SubmitComment(ctx context.Context, questionID uint, comment string) error {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		c.notifier.Inline(questionID, "A comment is required")
		return errors.New("comment is required")
	}

	body := map[string]any{
		"question": questionID,
		"comment":  trimmed,
		"assisted": c.assistedFlag(),
	}
	return c.postGrade(ctx, "answer", body)
}

// MarkAttempt submits attempt-level feedback with an overall status and, on
// success, redirects back into the admin UI.
func (c *Client) MarkAttempt(ctx context.Context, status models.AttemptStatus, feedback string) error {
	trimmed := strings.TrimSpace(feedback)
	if trimmed == "" {
		c.notifier.Warn("Feedback is required")
		return errors.New("feedback is required")
	}

	body := map[string]any{
		"status":   status,
		"feedback": trimmed,
		"assisted": c.assistedFlag(),
	}
	if err := c.post(ctx, "feedback", body); err != nil {
		return err
	}

	c.nav.Redirect(RedirectTarget(c.currentURL, c.studentID))
	return nil
}

// EmailResults triggers the results email and redirects on success.
func (c *Client) EmailResults(ctx context.Context) error {
	if err := c.post(ctx, "email", map[string]any{"assisted": c.assistedFlag()}); err != nil {
		return err
	}
	c.nav.Redirect(RedirectTarget(c.currentURL, c.studentID))
	return nil
}

// ReturnToStudent hands the attempt back for resubmission and redirects on
// success.
func (c *Client) ReturnToStudent(ctx context.Context) error {
	if err := c.post(ctx, "return", map[string]any{"assisted": c.assistedFlag()}); err != nil {
		return err
	}
	c.nav.Redirect(RedirectTarget(c.currentURL, c.studentID))
	return nil
}

func (c *Client) assistedFlag() int {
	if c.assisted() {
		return 1
	}
	return 0
}

// postGrade posts a per-answer action and optimistically renders the
// returned result.
func (c *Client) postGrade(ctx context.Context, action string, body map[string]any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("/assessments/%d/%s", c.attemptID, action))
	if err != nil {
		return c.report(&protocol.TransportError{Err: err})
	}

	if resp.StatusCode() >= 400 {
		return c.report(protocol.InterpretFailure(resp.StatusCode(), resp.Body()))
	}

	var envelope gradeEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return c.report(&protocol.TransportError{Err: fmt.Errorf("malformed response: %w", err)})
	}
	if !envelope.Success {
		var message string
		_ = json.Unmarshal(envelope.Message, &message)
		return c.report(&protocol.RejectionError{Message: message})
	}

	if c.renderer != nil {
		c.renderer.RenderResult(models.GradeResult{
			QuestionID: envelope.Data.QuestionID,
			Status:     envelope.Data.Status,
			Comment:    envelope.Data.Comment,
		})
	}
	return nil
}

// post posts an attempt-level action, reporting failures through the
// notifier like every other call.
func (c *Client) post(ctx context.Context, action string, body map[string]any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("/assessments/%d/%s", c.attemptID, action))
	if err != nil {
		return c.report(&protocol.TransportError{Err: err})
	}

	if resp.StatusCode() >= 400 {
		return c.report(protocol.InterpretFailure(resp.StatusCode(), resp.Body()))
	}

	var envelope gradeEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return c.report(&protocol.TransportError{Err: fmt.Errorf("malformed response: %w", err)})
	}
	if !envelope.Success {
		var message string
		_ = json.Unmarshal(envelope.Message, &message)
		return c.report(&protocol.RejectionError{Message: message})
	}
	return nil
}

// report surfaces a failure as a warning and returns it so callers can
// short-circuit redirects. A failed action never blocks a retry.
func (c *Client) report(err error) error {
	var fields *protocol.FieldErrors
	if errors.As(err, &fields) {
		if fields.Status == http.StatusUnprocessableEntity {
			c.notifier.Warn(fields.First())
		} else {
			c.notifier.Warn(fields.Error())
		}
		return err
	}

	var rejection *protocol.RejectionError
	if errors.As(err, &rejection) {
		c.notifier.Warn(rejection.Error())
		return err
	}

	var transport *protocol.TransportError
	if errors.As(err, &transport) {
		c.logger.Error("Review action transport failure", "error", transport.Err)
		c.notifier.Warn("The action could not be completed. Please try again.")
		return err
	}

	c.logger.Error("Unexpected review failure", "error", err)
	c.notifier.Warn("The action could not be completed. Please try again.")
	return err
}
