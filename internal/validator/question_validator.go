package validator

import (
	"encoding/json"
	"fmt"

	"github.com/traindesk/assessment-engine/internal/models"
)

// QuestionValidator enforces the per-type options schema at authoring time.
// A quiz cannot be saved until every question passes; learner-time input is
// validated separately by the answers package.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateOptions validates the options payload against the question's
// answer type.
func (v *QuestionValidator) ValidateOptions(answerType models.AnswerType, options []byte) error {
	switch answerType {
	case models.AnswerSCQ, models.AnswerAssessment:
		return v.validateSingleChoiceOptions(options, answerType)
	case models.AnswerMCQ:
		return v.validateMultiChoiceOptions(options)
	case models.AnswerSort:
		return v.validateSortOptions(options)
	case models.AnswerMatrix:
		return v.validateMatrixOptions(options)
	case models.AnswerTable:
		return v.validateTableOptions(options)
	case models.AnswerEssay, models.AnswerSingle, models.AnswerBlanks, models.AnswerFile:
		// Scalar and list payload types carry no structured options.
		return nil
	default:
		return fmt.Errorf("unsupported answer type: %s", answerType)
	}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Content == "" {
		return fmt.Errorf("question content is required")
	}

	return v.ValidateOptions(question.AnswerType, question.Options)
}

// ValidateQuiz validates every question of a quiz before save.
func (v *QuestionValidator) ValidateQuiz(quiz *models.Quiz) error {
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("quiz must have at least 1 question")
	}

	for i := range quiz.Questions {
		if err := v.ValidateQuestion(&quiz.Questions[i]); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// Private validation methods for each answer type

func (v *QuestionValidator) validateSingleChoiceOptions(options []byte, answerType models.AnswerType) error {
	var content models.ChoiceOptions
	if err := json.Unmarshal(options, &content); err != nil {
		return fmt.Errorf("invalid %s options: %w", answerType, err)
	}

	if err := v.validateChoiceEntries(content.Options); err != nil {
		return err
	}

	if len(content.Correct) != 1 {
		return fmt.Errorf("must have exactly 1 correct option")
	}

	if !choiceIndexExists(content.Options, content.Correct[0]) {
		return fmt.Errorf("correct index %d does not match any option", content.Correct[0])
	}

	return nil
}

func (v *QuestionValidator) validateMultiChoiceOptions(options []byte) error {
	var content models.ChoiceOptions
	if err := json.Unmarshal(options, &content); err != nil {
		return fmt.Errorf("invalid MCQ options: %w", err)
	}

	if err := v.validateChoiceEntries(content.Options); err != nil {
		return err
	}

	if len(content.Correct) == 0 {
		return fmt.Errorf("must have at least 1 correct option")
	}

	seen := make(map[int]bool)
	for _, idx := range content.Correct {
		if !choiceIndexExists(content.Options, idx) {
			return fmt.Errorf("correct index %d does not match any option", idx)
		}
		if seen[idx] {
			return fmt.Errorf("correct indices contain duplicate: %d", idx)
		}
		seen[idx] = true
	}

	return nil
}

func (v *QuestionValidator) validateChoiceEntries(options []models.ChoiceOption) error {
	if len(options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}

	// Indices are stable identities and may contain gaps after removal,
	// but never duplicates.
	indices := make(map[int]bool)
	for _, option := range options {
		if option.Label == "" {
			return fmt.Errorf("option label cannot be empty")
		}
		if indices[option.Index] {
			return fmt.Errorf("duplicate option index: %d", option.Index)
		}
		indices[option.Index] = true
	}

	return nil
}

func (v *QuestionValidator) validateSortOptions(options []byte) error {
	var content models.SortOptions
	if err := json.Unmarshal(options, &content); err != nil {
		return fmt.Errorf("invalid SORT options: %w", err)
	}

	if len(content.Items) < 2 {
		return fmt.Errorf("must have at least 2 items")
	}

	indices := make(map[int]bool)
	for _, item := range content.Items {
		if item.Label == "" {
			return fmt.Errorf("item label cannot be empty")
		}
		if indices[item.Index] {
			return fmt.Errorf("duplicate item index: %d", item.Index)
		}
		indices[item.Index] = true
	}

	return nil
}

func (v *QuestionValidator) validateMatrixOptions(options []byte) error {
	var content models.MatrixOptions
	if err := json.Unmarshal(options, &content); err != nil {
		return fmt.Errorf("invalid MATRIX options: %w", err)
	}

	if len(content.Pairs) == 0 {
		return fmt.Errorf("must have at least 1 criterion/answer pair")
	}

	indices := make(map[int]bool)
	for _, pair := range content.Pairs {
		if pair.Criterion == "" {
			return fmt.Errorf("criterion cannot be empty")
		}
		if pair.CorrectAnswer == "" {
			return fmt.Errorf("correct answer cannot be empty for criterion '%s'", pair.Criterion)
		}
		if indices[pair.Index] {
			return fmt.Errorf("duplicate pair index: %d", pair.Index)
		}
		indices[pair.Index] = true
	}

	return nil
}

func (v *QuestionValidator) validateTableOptions(options []byte) error {
	var layout models.TableLayout
	if err := json.Unmarshal(options, &layout); err != nil {
		return fmt.Errorf("invalid TABLE options: %w", err)
	}

	switch layout.InputType {
	case models.TableInputRadio, models.TableInputCheckbox, models.TableInputText, models.TableInputTextarea:
	default:
		return fmt.Errorf("invalid table input type: %s", layout.InputType)
	}

	if len(layout.Columns) == 0 {
		return fmt.Errorf("must have at least 1 column")
	}

	if len(layout.Rows) == 0 {
		return fmt.Errorf("must have at least 1 row")
	}

	for i, column := range layout.Columns {
		if column.Heading == "" {
			return fmt.Errorf("column %d heading cannot be empty", i+1)
		}
	}

	for i, row := range layout.Rows {
		if row.Heading == "" {
			return fmt.Errorf("row %d heading cannot be empty", i+1)
		}
	}

	return nil
}

func choiceIndexExists(options []models.ChoiceOption, index int) bool {
	for _, option := range options {
		if option.Index == index {
			return true
		}
	}
	return false
}
