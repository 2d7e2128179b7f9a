package answers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/traindesk/assessment-engine/internal/models"
)

// Value is the normalized answer payload for one question. Upload is set
// only for FILE answers carrying a fresh selection; it switches the
// transport encoding to multipart, everything else travels as JSON.
type Value struct {
	Data   any
	Upload *FileUpload
}

// Extract reads the current input state against the question's answer type
// and produces a normalized payload, or a structured reason for rejecting
// it. It is pure: no widget is consulted beyond the passed-in state.
func Extract(question *models.Question, in Input) (*Value, *ExtractionError) {
	switch question.AnswerType {
	case models.AnswerEssay:
		return extractText(question.ID, in.Text)
	case models.AnswerSingle:
		return extractText(question.ID, in.Text)
	case models.AnswerFile:
		return extractFile(question.ID, in)
	case models.AnswerSCQ, models.AnswerAssessment:
		return extractSingleChoice(question.ID, in.Choices)
	case models.AnswerMCQ:
		return extractMultiChoice(question.ID, in.Choices)
	case models.AnswerSort:
		return extractSort(question.ID, in.Order)
	case models.AnswerBlanks:
		return extractBlanks(question.ID, in.Blanks)
	case models.AnswerMatrix:
		return extractMatrix(question, in.Slots)
	case models.AnswerTable:
		return extractTable(question, in.Table)
	default:
		return nil, newExtractionError(question.ID, ReasonEmptyRequired)
	}
}

func extractText(questionID uint, text string) (*Value, *ExtractionError) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, newExtractionError(questionID, ReasonEmptyRequired)
	}
	return &Value{Data: trimmed}, nil
}

func extractFile(questionID uint, in Input) (*Value, *ExtractionError) {
	// A fresh selection replaces any file stored on a previous submission.
	if in.File != nil {
		return &Value{Data: in.File.Name, Upload: in.File}, nil
	}
	if in.StoredFileRef != "" {
		return &Value{Data: in.StoredFileRef}, nil
	}
	return nil, newExtractionError(questionID, ReasonMissingFile)
}

func extractSingleChoice(questionID uint, choices map[int]string) (*Value, *ExtractionError) {
	if len(choices) != 1 {
		return nil, newExtractionError(questionID, ReasonNoSelection)
	}
	for _, value := range choices {
		return &Value{Data: value}, nil
	}
	return nil, newExtractionError(questionID, ReasonNoSelection)
}

func extractMultiChoice(questionID uint, choices map[int]string) (*Value, *ExtractionError) {
	if len(choices) == 0 {
		return nil, newExtractionError(questionID, ReasonNoSelection)
	}
	checked := make(map[int]string, len(choices))
	for group, value := range choices {
		checked[group] = value
	}
	return &Value{Data: checked}, nil
}

func extractSort(questionID uint, order []string) (*Value, *ExtractionError) {
	// Order is always "valid"; correctness is judged server-side.
	if len(order) == 0 {
		return nil, newExtractionError(questionID, ReasonEmptyRequired)
	}
	return &Value{Data: append([]string(nil), order...)}, nil
}

func extractBlanks(questionID uint, blanks []string) (*Value, *ExtractionError) {
	// Empty-string entries pass through; there is no per-blank hard gate.
	if len(blanks) == 0 {
		return nil, newExtractionError(questionID, ReasonEmptyRequired)
	}
	return &Value{Data: append([]string(nil), blanks...)}, nil
}

func extractMatrix(question *models.Question, slots *SlotAssignments) (*Value, *ExtractionError) {
	var options models.MatrixOptions
	if err := json.Unmarshal(question.Options, &options); err != nil {
		return nil, newExtractionError(question.ID, ReasonEmptyRequired)
	}
	slotCount := len(options.Pairs)

	placed := map[int]string{}
	if slots != nil {
		placed = slots.Placed(slotCount)
	}

	var unfilled []int
	for slot := 0; slot < slotCount; slot++ {
		if _, ok := placed[slot]; !ok {
			unfilled = append(unfilled, slot+1)
		}
	}
	if len(unfilled) > 0 {
		return nil, &ExtractionError{
			QuestionID: question.ID,
			Reason:     ReasonUnfilledSlots,
			Positions:  unfilled,
		}
	}

	return &Value{Data: placed}, nil
}

func extractTable(question *models.Question, grid *TableGrid) (*Value, *ExtractionError) {
	var layout models.TableLayout
	if err := json.Unmarshal(question.Options, &layout); err != nil {
		return nil, newExtractionError(question.ID, ReasonEmptyRequired)
	}

	if grid == nil {
		grid = NewTableGrid()
	}

	switch layout.InputType {
	case models.TableInputText, models.TableInputTextarea:
		values := grid.textValues()
		if len(values) == 0 {
			return nil, newExtractionError(question.ID, ReasonEmptyRequired)
		}
		return &Value{Data: values}, nil
	case models.TableInputCheckbox:
		values := grid.checkedColumns()
		if len(values) == 0 {
			return nil, newExtractionError(question.ID, ReasonNoSelection)
		}
		return &Value{Data: values}, nil
	case models.TableInputRadio:
		values := grid.radioValues()
		if len(values) == 0 {
			return nil, newExtractionError(question.ID, ReasonNoSelection)
		}
		return &Value{Data: values}, nil
	default:
		return nil, newExtractionError(question.ID, ReasonEmptyRequired)
	}
}

// MarshalData serializes the JSON half of a payload, for transports and
// storage that need the raw bytes.
func (v *Value) MarshalData() ([]byte, error) {
	data, err := json.Marshal(v.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer payload: %w", err)
	}
	return data, nil
}
