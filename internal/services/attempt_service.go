package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/traindesk/assessment-engine/internal/cache"
	"github.com/traindesk/assessment-engine/internal/events"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/repositories"
	"github.com/traindesk/assessment-engine/internal/validator"
	"gorm.io/datatypes"
)

// AttemptService owns the learner-facing submission flow. Every call is
// idempotent per (attempt, question): re-submitting a question overwrites the
// stored answer and the response always carries the full submitted set.
type AttemptService interface {
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	GetProgress(ctx context.Context, attemptID uint) ([]uint, error)
}

type SubmitAnswerRequest struct {
	QuizID     uint    `json:"quiz" validate:"required"`
	QuestionID uint    `json:"question" validate:"required"`
	UserID     uint    `json:"user" validate:"required"`
	CourseID   *string `json:"course_id"`

	Answer   datatypes.JSON `json:"answer" validate:"required"`
	FileName *string        `json:"-"`
}

// NextStep tells the client whether the quiz is finished. Last is 1 only once
// every required question has a stored answer.
type NextStep struct {
	Last int `json:"last"`
}

type SubmitAnswerResponse struct {
	AttemptID        uint     `json:"attempt_id"`
	SubmittedAnswers []uint   `json:"submitted_answers"`
	NextStep         NextStep `json:"next_step"`
	IntendedURL      *string  `json:"intended_url,omitempty"`
}

type attemptService struct {
	repo      repositories.Repository
	cache     cache.ProgressCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttemptService(repo repositories.Repository, progressCache cache.ProgressCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		cache:     progressCache,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *attemptService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	s.logger.Info("Submitting answer",
		"quiz_id", req.QuizID,
		"question_id", req.QuestionID,
		"user_id", req.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	question := findQuestion(quiz, req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotInQuiz
	}

	attempt, err := s.repo.Attempt().GetOrCreate(ctx, req.QuizID, req.UserID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create attempt: %w", err)
	}

	answer := &models.Answer{
		AttemptID:  attempt.ID,
		QuestionID: req.QuestionID,
		Value:      req.Answer,
		FileName:   req.FileName,
	}
	if err := s.repo.Attempt().UpsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	submitted, err := s.repo.Attempt().SubmittedQuestionIDs(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitted set: %w", err)
	}

	if err := s.cache.SetSubmitted(ctx, attempt.ID, submitted); err != nil {
		s.logger.Warn("Failed to cache progress", "attempt_id", attempt.ID, "error", err)
	}

	last := allRequiredAnswered(quiz, submitted)
	if last && attempt.Status == models.AttemptInProgress {
		now := time.Now()
		attempt.Status = models.AttemptCompleted
		attempt.CompletedAt = &now
		if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
			return nil, fmt.Errorf("failed to complete attempt: %w", err)
		}
		s.publish(ctx, events.EventAttemptCompleted, attempt, nil)
	}

	s.publish(ctx, events.EventAnswerSubmitted, attempt, &req.QuestionID)

	resp := &SubmitAnswerResponse{
		AttemptID:        attempt.ID,
		SubmittedAnswers: submitted,
		IntendedURL:      quiz.RedirectURL,
	}
	if last {
		resp.NextStep.Last = 1
	}
	return resp, nil
}

// GetProgress returns the submitted question set for an attempt, served from
// the cache when hot.
func (s *attemptService) GetProgress(ctx context.Context, attemptID uint) ([]uint, error) {
	if submitted, ok, err := s.cache.GetSubmitted(ctx, attemptID); err == nil && ok {
		return submitted, nil
	} else if err != nil {
		s.logger.Warn("Progress cache read failed", "attempt_id", attemptID, "error", err)
	}

	if _, err := s.repo.Attempt().GetByID(ctx, attemptID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	submitted, err := s.repo.Attempt().SubmittedQuestionIDs(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitted set: %w", err)
	}

	if err := s.cache.SetSubmitted(ctx, attemptID, submitted); err != nil {
		s.logger.Warn("Failed to cache progress", "attempt_id", attemptID, "error", err)
	}
	return submitted, nil
}

func (s *attemptService) publish(ctx context.Context, eventType events.EventType, attempt *models.Attempt, questionID *uint) {
	event := events.NewAttemptEvent(eventType, attempt)
	event.QuestionID = questionID
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", eventType,
			"attempt_id", attempt.ID,
			"error", err)
	}
}

func findQuestion(quiz *models.Quiz, questionID uint) *models.Question {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			return &quiz.Questions[i]
		}
	}
	return nil
}

// allRequiredAnswered reports whether every required question in the quiz has
// a stored answer. Optional questions never hold the quiz open.
func allRequiredAnswered(quiz *models.Quiz, submitted []uint) bool {
	answered := make(map[uint]bool, len(submitted))
	for _, id := range submitted {
		answered[id] = true
	}
	for _, question := range quiz.Questions {
		if question.Required && !answered[question.ID] {
			return false
		}
	}
	return true
}
