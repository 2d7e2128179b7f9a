// Package session wires answer extraction, the submission protocol and the
// stepper into the learner-facing quiz flow.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/traindesk/assessment-engine/internal/answers"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/protocol"
	"github.com/traindesk/assessment-engine/internal/stepper"
	"github.com/traindesk/assessment-engine/internal/ui"
)

// Submitter is the protocol surface the session depends on.
type Submitter interface {
	SubmitAnswer(ctx context.Context, req *protocol.SubmitRequest) (*protocol.SubmitData, error)
}

// Session drives one learner through one quiz. All progress state lives in
// the stepper and is re-derived from every server response; the session
// never counts submissions locally.
type Session struct {
	quiz     *models.Quiz
	userID   uint
	client   Submitter
	steps    *stepper.Stepper
	notifier ui.Notifier
	nav      ui.Navigator
	logger   *slog.Logger

	seq atomic.Uint64
}

// New creates a session. submittedIDs is the server-flagged submitted set
// at load time; the stepper resumes at the first unanswered step rather
// than step 0.
func New(
	quiz *models.Quiz,
	userID uint,
	submittedIDs []uint,
	client Submitter,
	notifier ui.Notifier,
	nav ui.Navigator,
	logger *slog.Logger,
) *Session {
	steps := stepper.New(quiz.OrderedQuestionIDs())
	steps.Reconcile(submittedIDs)
	steps.JumpToFirstUnanswered()

	return &Session{
		quiz:     quiz,
		userID:   userID,
		client:   client,
		steps:    steps,
		notifier: notifier,
		nav:      nav,
		logger:   logger,
	}
}

// Steps exposes the navigation state machine for rendering.
func (s *Session) Steps() *stepper.Stepper {
	return s.steps
}

// Submit validates and submits the answer for one question, then moves the
// stepper or redirects. Every failure is reported through the notifier and
// leaves local progress untouched; the learner can always retry.
func (s *Session) Submit(ctx context.Context, questionID uint, in answers.Input) error {
	question := s.findQuestion(questionID)
	if question == nil {
		s.notifier.Warn("This question is no longer part of the quiz")
		return errors.New("unknown question")
	}

	value, extractErr := answers.Extract(question, in)
	if extractErr != nil {
		s.notifier.Inline(questionID, extractErr.Error())
		return extractErr
	}

	// The sequence number is taken before the request goes out, so a slow
	// response cannot overwrite the reconciliation of a later one.
	seq := s.seq.Add(1)

	data, err := s.client.SubmitAnswer(ctx, &protocol.SubmitRequest{
		QuizID:     s.quiz.ID,
		QuestionID: questionID,
		UserID:     s.userID,
		CourseID:   s.quiz.CourseID,
		Answer:     value,
	})
	if err != nil {
		s.report(err)
		return err
	}

	if !s.steps.Apply(seq, data.SubmittedAnswers) {
		// A newer response already reconciled; this one is stale.
		s.logger.Debug("Discarded stale submission response",
			"question_id", questionID, "seq", seq)
		return nil
	}

	if data.NextStep.Last == 1 {
		s.nav.Redirect(stepper.Destination(data.IntendedURL, s.quiz.TopicURL))
		return nil
	}

	// Answering the visually last step does not mean all steps are answered;
	// steps can be visited out of order.
	s.steps.JumpToFirstUnanswered()
	return nil
}

func (s *Session) findQuestion(questionID uint) *models.Question {
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == questionID {
			return &s.quiz.Questions[i]
		}
	}
	return nil
}

func (s *Session) report(err error) {
	var rejection *protocol.RejectionError
	if errors.As(err, &rejection) {
		s.notifier.Warn(rejection.Error())
		return
	}

	var fields *protocol.FieldErrors
	if errors.As(err, &fields) {
		if fields.Status == http.StatusUnprocessableEntity {
			s.notifier.Warn(fields.First())
		} else {
			s.notifier.Warn(fields.Error())
		}
		return
	}

	var transport *protocol.TransportError
	if errors.As(err, &transport) {
		s.logger.Error("Submission transport failure", "error", transport.Err)
		s.notifier.Warn("Could not submit your answer. Please try again.")
		return
	}

	s.logger.Error("Unexpected submission failure", "error", err)
	s.notifier.Warn("Could not submit your answer. Please try again.")
}
