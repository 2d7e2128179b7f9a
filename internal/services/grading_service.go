package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/traindesk/assessment-engine/internal/cache"
	"github.com/traindesk/assessment-engine/internal/events"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/repositories"
	"github.com/traindesk/assessment-engine/internal/validator"
)

// GradingService owns the trainer-side review workflow: per-question grades
// and comments, the attempt-level verdict, and the return/email actions.
type GradingService interface {
	MarkAnswer(ctx context.Context, attemptID uint, req *MarkAnswerRequest) (*models.GradeResult, error)
	CommentAnswer(ctx context.Context, attemptID uint, req *CommentAnswerRequest) (*models.GradeResult, error)
	SubmitFeedback(ctx context.Context, attemptID uint, req *FeedbackRequest) error
	ReturnToStudent(ctx context.Context, attemptID uint, req *ReviewActionRequest) error
	EmailResults(ctx context.Context, attemptID uint, req *ReviewActionRequest) error
}

type MarkAnswerRequest struct {
	QuestionID uint               `json:"question" validate:"required"`
	Status     models.GradeStatus `json:"status" validate:"required,grade_status"`
	Assisted   bool               `json:"assisted"`
	GraderID   uint               `json:"-"`
}

type CommentAnswerRequest struct {
	QuestionID uint   `json:"question" validate:"required"`
	Comment    string `json:"comment"`
	Assisted   bool   `json:"assisted"`
	GraderID   uint   `json:"-"`
}

type FeedbackRequest struct {
	Status     models.AttemptStatus `json:"status" validate:"required,attempt_status"`
	Feedback   string               `json:"feedback"`
	Assisted   bool                 `json:"assisted"`
	ReviewerID uint                 `json:"-"`
}

type ReviewActionRequest struct {
	Assisted   bool `json:"assisted"`
	ReviewerID uint `json:"-"`
}

type gradingService struct {
	repo      repositories.Repository
	cache     cache.ProgressCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradingService(repo repositories.Repository, progressCache cache.ProgressCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		cache:     progressCache,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *gradingService) MarkAnswer(ctx context.Context, attemptID uint, req *MarkAnswerRequest) (*models.GradeResult, error) {
	s.logger.Info("Marking answer",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"status", req.Status)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Status != models.GradeCorrect && req.Status != models.GradeIncorrect {
		return nil, ErrInvalidGradeStatus
	}

	answer, attempt, err := s.loadAnswer(ctx, attemptID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	answer.GradeStatus = req.Status
	answer.GradedBy = &req.GraderID
	answer.GradedAt = &now
	if err := s.repo.Attempt().UpdateAnswerGrade(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to store grade: %w", err)
	}

	s.recordAssisted(ctx, attempt, req.Assisted)

	return &models.GradeResult{
		QuestionID: req.QuestionID,
		Status:     req.Status,
		Comment:    answer.GradeComment,
	}, nil
}

// CommentAnswer attaches a trainer comment to one answer. An empty comment is
// rejected before anything is written.
func (s *gradingService) CommentAnswer(ctx context.Context, attemptID uint, req *CommentAnswerRequest) (*models.GradeResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}

	answer, attempt, err := s.loadAnswer(ctx, attemptID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	answer.GradeComment = &comment
	answer.GradedBy = &req.GraderID
	answer.GradedAt = &now
	if err := s.repo.Attempt().UpdateAnswerGrade(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	s.recordAssisted(ctx, attempt, req.Assisted)

	return &models.GradeResult{
		QuestionID: req.QuestionID,
		Status:     answer.GradeStatus,
		Comment:    &comment,
	}, nil
}

// SubmitFeedback closes the review with an attempt-level verdict. The status
// must be a terminal outcome and the feedback text is mandatory.
func (s *gradingService) SubmitFeedback(ctx context.Context, attemptID uint, req *FeedbackRequest) error {
	s.logger.Info("Submitting attempt feedback",
		"attempt_id", attemptID,
		"status", req.Status)

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if req.Status != models.AttemptPassed && req.Status != models.AttemptFailed {
		return ErrInvalidReviewOutcome
	}

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		return ErrFeedbackRequired
	}

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return err
	}

	now := time.Now()
	attempt.Status = req.Status
	attempt.Feedback = &feedback
	attempt.Assisted = attempt.Assisted || req.Assisted
	attempt.ReviewedAt = &now
	attempt.ReviewedBy = &req.ReviewerID
	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	s.invalidateProgress(ctx, attemptID)
	s.publish(ctx, events.EventAttemptReviewed, attempt)
	return nil
}

// ReturnToStudent reopens the attempt so the learner can revise answers.
func (s *gradingService) ReturnToStudent(ctx context.Context, attemptID uint, req *ReviewActionRequest) error {
	s.logger.Info("Returning attempt to student", "attempt_id", attemptID)

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return err
	}

	now := time.Now()
	attempt.Status = models.AttemptReturned
	attempt.Assisted = attempt.Assisted || req.Assisted
	attempt.ReviewedAt = &now
	attempt.ReviewedBy = &req.ReviewerID
	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to return attempt: %w", err)
	}

	s.invalidateProgress(ctx, attemptID)
	s.publish(ctx, events.EventAttemptReturned, attempt)
	return nil
}

// EmailResults notifies the learner of their results. Delivery happens in the
// notification consumer; this only records the action and emits the event.
func (s *gradingService) EmailResults(ctx context.Context, attemptID uint, req *ReviewActionRequest) error {
	s.logger.Info("Emailing attempt results", "attempt_id", attemptID)

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return err
	}

	s.recordAssisted(ctx, attempt, req.Assisted)
	s.publish(ctx, events.EventResultsEmailed, attempt)
	return nil
}

func (s *gradingService) getAttempt(ctx context.Context, attemptID uint) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

func (s *gradingService) loadAnswer(ctx context.Context, attemptID, questionID uint) (*models.Answer, *models.Attempt, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}

	answer, err := s.repo.Attempt().GetAnswer(ctx, attemptID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAnswerNotFound
		}
		return nil, nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return answer, attempt, nil
}

// recordAssisted latches the assisted flag on the attempt; once set it is
// never cleared by later grading actions.
func (s *gradingService) recordAssisted(ctx context.Context, attempt *models.Attempt, assisted bool) {
	if !assisted || attempt.Assisted {
		return
	}
	attempt.Assisted = true
	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		s.logger.Warn("Failed to record assisted flag", "attempt_id", attempt.ID, "error", err)
	}
}

func (s *gradingService) invalidateProgress(ctx context.Context, attemptID uint) {
	if err := s.cache.Invalidate(ctx, attemptID); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "attempt_id", attemptID, "error", err)
	}
}

func (s *gradingService) publish(ctx context.Context, eventType events.EventType, attempt *models.Attempt) {
	event := events.NewAttemptEvent(eventType, attempt)
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", eventType,
			"attempt_id", attempt.ID,
			"error", err)
	}
}
