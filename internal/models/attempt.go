package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptPassed     AttemptStatus = "passed"
	AttemptFailed     AttemptStatus = "failed"
	AttemptReturned   AttemptStatus = "returned"
)

// Attempt is one learner's submission session against a quiz. The learner
// never creates it explicitly; it comes into existence with the first answer
// submission and the server remains the sole owner of its state.
type Attempt struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	QuizID   uint          `json:"quiz_id" gorm:"not null;index:idx_attempts_quiz_user"`
	UserID   uint          `json:"user_id" gorm:"not null;index:idx_attempts_quiz_user"`
	CourseID *string       `json:"course_id" gorm:"size:50"`
	Status   AttemptStatus `json:"status" gorm:"not null;default:in_progress;index"`

	// Attempt-level review, set once per review action.
	Feedback *string `json:"feedback" gorm:"type:text"`
	Assisted bool    `json:"assisted" gorm:"default:false"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewedBy  *uint      `json:"reviewed_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Quiz    Quiz     `json:"-" gorm:"foreignKey:QuizID"`
	Answers []Answer `json:"answers" gorm:"foreignKey:AttemptID"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// SubmittedQuestionIDs derives the authoritative submitted set from the
// answers currently attached to the attempt.
func (a *Attempt) SubmittedQuestionIDs() []uint {
	ids := make([]uint, 0, len(a.Answers))
	for _, answer := range a.Answers {
		ids = append(ids, answer.QuestionID)
	}
	return ids
}

type GradeStatus string

const (
	GradeCorrect   GradeStatus = "correct"
	GradeIncorrect GradeStatus = "incorrect"
	GradePending   GradeStatus = "pending"
)

// Answer is the normalized value submitted for one question within an
// attempt. One row per (attempt, question); re-submission overwrites.
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`

	Value    datatypes.JSON `json:"value" gorm:"type:jsonb"`
	FileName *string        `json:"file_name" gorm:"size:255"`

	// Trainer-side grade, mutated only through the grading workflow.
	GradeStatus  GradeStatus `json:"grade_status" gorm:"default:pending"`
	GradeComment *string     `json:"grade_comment" gorm:"type:text"`
	GradedBy     *uint       `json:"graded_by"`
	GradedAt     *time.Time  `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Answer) TableName() string {
	return "answers"
}

// GradeResult is the per-question outcome a trainer returns while reviewing
// an attempt; rendered optimistically by the review UI.
type GradeResult struct {
	QuestionID uint        `json:"question_id"`
	Status     GradeStatus `json:"status"`
	Comment    *string     `json:"comment,omitempty"`
}

// AttemptFeedback is the attempt-level review outcome.
type AttemptFeedback struct {
	AttemptID uint          `json:"attempt_id"`
	Status    AttemptStatus `json:"status"`
	Feedback  string        `json:"feedback"`
	Assisted  bool          `json:"assisted"`
}
