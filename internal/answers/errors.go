package answers

import (
	"fmt"
	"strings"
)

// Reason classifies why extraction rejected the current input. Callers use
// it to render a specific message instead of a generic failure.
type Reason string

const (
	ReasonEmptyRequired Reason = "empty-required-field"
	ReasonNoSelection   Reason = "no-selection"
	ReasonMissingFile   Reason = "missing-file"
	ReasonUnfilledSlots Reason = "unfilled-slots"
)

// ExtractionError is a structured client validation failure. It never
// reaches the network; the submission is blocked at the caller.
type ExtractionError struct {
	QuestionID uint
	Reason     Reason

	// Positions holds the 1-based positions of unfilled matrix slots when
	// Reason is ReasonUnfilledSlots.
	Positions []int
}

func (e *ExtractionError) Error() string {
	switch e.Reason {
	case ReasonEmptyRequired:
		return fmt.Sprintf("question %d: answer is required", e.QuestionID)
	case ReasonNoSelection:
		return fmt.Sprintf("question %d: no option selected", e.QuestionID)
	case ReasonMissingFile:
		return fmt.Sprintf("question %d: exactly one file must be selected", e.QuestionID)
	case ReasonUnfilledSlots:
		return fmt.Sprintf("question %d: slots %s are unfilled", e.QuestionID, joinPositions(e.Positions))
	default:
		return fmt.Sprintf("question %d: invalid answer", e.QuestionID)
	}
}

func joinPositions(positions []int) string {
	parts := make([]string, len(positions))
	for i, pos := range positions {
		parts[i] = fmt.Sprintf("%d", pos)
	}
	return strings.Join(parts, ", ")
}

func newExtractionError(questionID uint, reason Reason) *ExtractionError {
	return &ExtractionError{QuestionID: questionID, Reason: reason}
}
