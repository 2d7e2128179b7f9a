package repositories

import (
	"context"
	"errors"

	"github.com/traindesk/assessment-engine/internal/models"
	"gorm.io/gorm"
)

// QuizRepository provides access to authored quiz content.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	// GetByIDWithQuestions loads the quiz with its questions in quiz order.
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
}

// AttemptRepository provides access to per-learner attempt state. The
// attempt row is created implicitly by the first answer submission.
type AttemptRepository interface {
	GetOrCreate(ctx context.Context, quizID, userID uint, courseID *string) (*models.Attempt, error)
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error)
	Update(ctx context.Context, attempt *models.Attempt) error

	// UpsertAnswer writes one answer per (attempt, question); re-submission
	// overwrites the previous value.
	UpsertAnswer(ctx context.Context, answer *models.Answer) error
	GetAnswer(ctx context.Context, attemptID, questionID uint) (*models.Answer, error)
	SubmittedQuestionIDs(ctx context.Context, attemptID uint) ([]uint, error)
	UpdateAnswerGrade(ctx context.Context, answer *models.Answer) error
}

// Repository aggregates entity repositories behind one dependency.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
}

// IsNotFoundError checks if error represents a "record not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
