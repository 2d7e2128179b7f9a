package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

// GetOrCreate finds the learner's open attempt for a quiz, or creates one.
// Attempts come into existence with the first answer submission; a returned
// attempt is reopened for resubmission.
func (a AttemptPostgreSQL) GetOrCreate(ctx context.Context, quizID, userID uint, courseID *string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ? AND status IN ?", quizID, userID,
			[]models.AttemptStatus{models.AttemptInProgress, models.AttemptReturned}).
		First(&attempt).Error
	if err == nil {
		if attempt.Status == models.AttemptReturned {
			attempt.Status = models.AttemptInProgress
			if err := a.db.WithContext(ctx).Save(&attempt).Error; err != nil {
				return nil, err
			}
		}
		return &attempt, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt = models.Attempt{
		QuizID:    quizID,
		UserID:    userID,
		CourseID:  courseID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
	}
	if err := a.db.WithContext(ctx).Create(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}

	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Preload("Answers").
		Preload("Quiz").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

// UpsertAnswer keeps one row per (attempt, question); a re-submission
// overwrites the stored value and resets the grade to pending.
func (a AttemptPostgreSQL) UpsertAnswer(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":         answer.Value,
				"file_name":     answer.FileName,
				"grade_status":  models.GradePending,
				"grade_comment": nil,
				"updated_at":    time.Now(),
			}),
		}).
		Create(answer).Error
}

func (a AttemptPostgreSQL) GetAnswer(ctx context.Context, attemptID, questionID uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a AttemptPostgreSQL) SubmittedQuestionIDs(ctx context.Context, attemptID uint) ([]uint, error) {
	var questionIDs []uint
	if err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Pluck("question_id", &questionIDs).Error; err != nil {
		return nil, err
	}
	return questionIDs, nil
}

func (a AttemptPostgreSQL) UpdateAnswerGrade(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", answer.ID).
		Updates(map[string]interface{}{
			"grade_status":  answer.GradeStatus,
			"grade_comment": answer.GradeComment,
			"graded_by":     answer.GradedBy,
			"graded_at":     answer.GradedAt,
		}).Error
}
