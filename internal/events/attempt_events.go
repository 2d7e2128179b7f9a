package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/traindesk/assessment-engine/internal/models"
)

type EventType string

const (
	EventAnswerSubmitted  EventType = "attempt.answer_submitted"
	EventAttemptCompleted EventType = "attempt.completed"
	EventAttemptReviewed  EventType = "attempt.reviewed"
	EventAttemptReturned  EventType = "attempt.returned"
	EventResultsEmailed   EventType = "attempt.results_emailed"
)

// AttemptEvent is the message published to the event stream whenever an
// attempt changes state. Downstream consumers (notification service,
// reporting) subscribe to these.
type AttemptEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	AttemptID  uint  `json:"attempt_id"`
	QuizID     uint  `json:"quiz_id"`
	UserID     uint  `json:"user_id"`
	QuestionID *uint `json:"question_id,omitempty"`

	Status   models.AttemptStatus `json:"status,omitempty"`
	Assisted bool                 `json:"assisted,omitempty"`
}

// NewAttemptEvent creates an event with identity and envelope fields set.
func NewAttemptEvent(eventType EventType, attempt *models.Attempt) *AttemptEvent {
	return &AttemptEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    "assessment-engine",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		UserID:    attempt.UserID,
		Status:    attempt.Status,
		Assisted:  attempt.Assisted,
	}
}
