package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnswerType string

const (
	AnswerEssay      AnswerType = "ESSAY"
	AnswerFile       AnswerType = "FILE"
	AnswerSCQ        AnswerType = "SCQ"
	AnswerMCQ        AnswerType = "MCQ"
	AnswerSort       AnswerType = "SORT"
	AnswerMatrix     AnswerType = "MATRIX"
	AnswerBlanks     AnswerType = "BLANKS"
	AnswerAssessment AnswerType = "ASSESSMENT"
	AnswerSingle     AnswerType = "SINGLE"
	AnswerTable      AnswerType = "TABLE"
)

// AnswerTypes lists every supported answer type in a stable order.
var AnswerTypes = []AnswerType{
	AnswerEssay,
	AnswerFile,
	AnswerSCQ,
	AnswerMCQ,
	AnswerSort,
	AnswerMatrix,
	AnswerBlanks,
	AnswerAssessment,
	AnswerSingle,
	AnswerTable,
}

// Question is one step of a quiz. Options holds the type-specific structure
// as a JSON blob; its schema is enforced by validator.QuestionValidator
// before the quiz can be saved, never at answer time.
type Question struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	QuizID     uint       `json:"quiz_id" gorm:"not null;index"`
	AnswerType AnswerType `json:"answer_type" gorm:"not null;size:20" validate:"required,answer_type"`
	Required   bool       `json:"required" gorm:"default:true"`
	Content    string     `json:"content" gorm:"type:text" validate:"required"`
	Position   int        `json:"position" gorm:"not null;default:0"`

	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// ChoiceOption is one selectable entry of an SCQ/MCQ/ASSESSMENT question.
// Indices are stable identities: removing an option leaves a gap, it never
// renumbers the survivors.
type ChoiceOption struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// ChoiceOptions is the options payload for SCQ, MCQ and ASSESSMENT questions.
// Correct holds one index for SCQ/ASSESSMENT and one or more for MCQ.
type ChoiceOptions struct {
	Options []ChoiceOption `json:"options"`
	Correct []int          `json:"correct"`
}

// SortItem is one orderable entry of a SORT question; the authored order of
// the items is the canonical (correct) order.
type SortItem struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

type SortOptions struct {
	Items []SortItem `json:"items"`
}

// MatrixPair couples a criterion with the answer that must be dropped onto it.
type MatrixPair struct {
	Index         int    `json:"index"`
	Criterion     string `json:"criterion"`
	CorrectAnswer string `json:"correct_answer"`
}

type MatrixOptions struct {
	Pairs []MatrixPair `json:"pairs"`
}

type TableInputType string

const (
	TableInputRadio    TableInputType = "radio"
	TableInputCheckbox TableInputType = "checkbox"
	TableInputText     TableInputType = "text"
	TableInputTextarea TableInputType = "textarea"
)

type TableHeading struct {
	Heading string `json:"heading"`
}

// TableLayout is the options payload for TABLE questions, stored as a single
// blob kept in sync with the column/row editors: every heading edit rewrites
// the whole layout from current editor state rather than patching it.
type TableLayout struct {
	InputType TableInputType `json:"input_type"`
	Columns   []TableHeading `json:"columns"`
	Rows      []TableHeading `json:"rows"`
}

// RecomputeTableLayout rebuilds a TableLayout from the current heading lists.
// Full recompute keeps the serialized blob authoritative over any partial
// editor state.
func RecomputeTableLayout(inputType TableInputType, columns, rows []string) TableLayout {
	layout := TableLayout{
		InputType: inputType,
		Columns:   make([]TableHeading, len(columns)),
		Rows:      make([]TableHeading, len(rows)),
	}
	for i, heading := range columns {
		layout.Columns[i] = TableHeading{Heading: heading}
	}
	for i, heading := range rows {
		layout.Rows[i] = TableHeading{Heading: heading}
	}
	return layout
}

// NextOptionIndex returns the index a newly appended option should take:
// one past the highest existing index, so deleted indices are never reused.
func NextOptionIndex(existing []int) int {
	next := 0
	for _, idx := range existing {
		if idx >= next {
			next = idx + 1
		}
	}
	return next
}

// AppendChoiceOption appends a new option at the next integer index.
func (o *ChoiceOptions) AppendChoiceOption(label string) ChoiceOption {
	indices := make([]int, len(o.Options))
	for i, opt := range o.Options {
		indices[i] = opt.Index
	}
	opt := ChoiceOption{Index: NextOptionIndex(indices), Label: label}
	o.Options = append(o.Options, opt)
	return opt
}

// RemoveChoiceOption removes only the entry carrying the given index. Other
// options keep their indices; any correct-answer reference to the removed
// index is dropped as well.
func (o *ChoiceOptions) RemoveChoiceOption(index int) bool {
	removed := false
	kept := o.Options[:0]
	for _, opt := range o.Options {
		if opt.Index == index {
			removed = true
			continue
		}
		kept = append(kept, opt)
	}
	o.Options = kept
	if removed {
		correct := o.Correct[:0]
		for _, idx := range o.Correct {
			if idx != index {
				correct = append(correct, idx)
			}
		}
		o.Correct = correct
	}
	return removed
}

// AppendSortItem appends a new item at the next integer index.
func (o *SortOptions) AppendSortItem(label string) SortItem {
	indices := make([]int, len(o.Items))
	for i, item := range o.Items {
		indices[i] = item.Index
	}
	item := SortItem{Index: NextOptionIndex(indices), Label: label}
	o.Items = append(o.Items, item)
	return item
}

// RemoveSortItem removes only the entry carrying the given index.
func (o *SortOptions) RemoveSortItem(index int) bool {
	removed := false
	kept := o.Items[:0]
	for _, item := range o.Items {
		if item.Index == index {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	o.Items = kept
	return removed
}

// AppendMatrixPair appends a new criterion/answer pair at the next index.
func (o *MatrixOptions) AppendMatrixPair(criterion, correctAnswer string) MatrixPair {
	indices := make([]int, len(o.Pairs))
	for i, pair := range o.Pairs {
		indices[i] = pair.Index
	}
	pair := MatrixPair{Index: NextOptionIndex(indices), Criterion: criterion, CorrectAnswer: correctAnswer}
	o.Pairs = append(o.Pairs, pair)
	return pair
}

// RemoveMatrixPair removes only the entry carrying the given index.
func (o *MatrixOptions) RemoveMatrixPair(index int) bool {
	removed := false
	kept := o.Pairs[:0]
	for _, pair := range o.Pairs {
		if pair.Index == index {
			removed = true
			continue
		}
		kept = append(kept, pair)
	}
	o.Pairs = kept
	return removed
}
