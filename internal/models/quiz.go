package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is an ordered sequence of questions taken as one unit by a learner.
// TopicURL is the destination the learner is sent to once the quiz is
// complete, unless the server supplies an explicit override.
type Quiz struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Title    string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	TopicURL string  `json:"topic_url" gorm:"size:500"`
	CourseID *string `json:"course_id" gorm:"size:50;index"`

	// RedirectURL, when set, is returned to the client as intended_url and
	// takes priority over TopicURL.
	RedirectURL *string `json:"redirect_url" gorm:"size:500"`

	CreatedBy uint           `json:"created_by" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// OrderedQuestionIDs returns the question identifiers in quiz order.
func (q *Quiz) OrderedQuestionIDs() []uint {
	ids := make([]uint, len(q.Questions))
	for i, question := range q.Questions {
		ids[i] = question.ID
	}
	return ids
}
