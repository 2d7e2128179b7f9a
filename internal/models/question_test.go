package models

import (
	"reflect"
	"testing"
)

func TestNextOptionIndex(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"empty starts at zero", nil, 0},
		{"dense sequence", []int{0, 1, 2}, 3},
		{"gap is not reused", []int{0, 2}, 3},
		{"unordered input", []int{5, 1, 3}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOptionIndex(tt.existing); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestChoiceOptions_RemoveNeverRenumbers(t *testing.T) {
	opts := &ChoiceOptions{}
	opts.AppendChoiceOption("A") // index 0
	opts.AppendChoiceOption("B") // index 1
	opts.AppendChoiceOption("C") // index 2
	opts.Correct = []int{1, 2}

	if !opts.RemoveChoiceOption(1) {
		t.Fatal("expected removal to succeed")
	}

	indices := make([]int, len(opts.Options))
	for i, opt := range opts.Options {
		indices[i] = opt.Index
	}
	if !reflect.DeepEqual(indices, []int{0, 2}) {
		t.Errorf("survivors must keep their indices, got %v", indices)
	}
	if !reflect.DeepEqual(opts.Correct, []int{2}) {
		t.Errorf("correct reference to removed index must be dropped, got %v", opts.Correct)
	}

	// The next append lands past the highest surviving index; the freed
	// index is never reused.
	added := opts.AppendChoiceOption("D")
	if added.Index != 3 {
		t.Errorf("expected new index 3, got %d", added.Index)
	}
}

func TestChoiceOptions_RemoveUnknownIndex(t *testing.T) {
	opts := &ChoiceOptions{}
	opts.AppendChoiceOption("A")

	if opts.RemoveChoiceOption(9) {
		t.Error("removing an unknown index must report false")
	}
	if len(opts.Options) != 1 {
		t.Error("options must be untouched")
	}
}

func TestSortOptions_AppendRemove(t *testing.T) {
	opts := &SortOptions{}
	opts.AppendSortItem("first")
	opts.AppendSortItem("second")
	opts.RemoveSortItem(0)

	added := opts.AppendSortItem("third")
	if added.Index != 2 {
		t.Errorf("expected index 2, got %d", added.Index)
	}
	if len(opts.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(opts.Items))
	}
}

func TestMatrixOptions_AppendRemove(t *testing.T) {
	opts := &MatrixOptions{}
	opts.AppendMatrixPair("speed", "fast")
	opts.AppendMatrixPair("size", "small")

	if !opts.RemoveMatrixPair(0) {
		t.Fatal("expected removal to succeed")
	}
	if opts.Pairs[0].Index != 1 {
		t.Errorf("surviving pair must keep index 1, got %d", opts.Pairs[0].Index)
	}

	added := opts.AppendMatrixPair("cost", "cheap")
	if added.Index != 2 {
		t.Errorf("expected index 2, got %d", added.Index)
	}
}

func TestRecomputeTableLayout(t *testing.T) {
	layout := RecomputeTableLayout(TableInputRadio,
		[]string{"Yes", "No"}, []string{"Is fast", "Is cheap"})

	if layout.InputType != TableInputRadio {
		t.Errorf("unexpected input type: %s", layout.InputType)
	}
	if len(layout.Columns) != 2 || layout.Columns[1].Heading != "No" {
		t.Errorf("unexpected columns: %+v", layout.Columns)
	}
	if len(layout.Rows) != 2 || layout.Rows[0].Heading != "Is fast" {
		t.Errorf("unexpected rows: %+v", layout.Rows)
	}

	// A heading edit rebuilds the whole layout from editor state.
	layout = RecomputeTableLayout(TableInputRadio,
		[]string{"Yes", "Maybe", "No"}, []string{"Is fast"})
	if len(layout.Columns) != 3 || len(layout.Rows) != 1 {
		t.Errorf("recompute must reflect current editor state, got %+v", layout)
	}
}

func TestQuiz_OrderedQuestionIDs(t *testing.T) {
	quiz := &Quiz{Questions: []Question{{ID: 30}, {ID: 10}, {ID: 20}}}
	if got := quiz.OrderedQuestionIDs(); !reflect.DeepEqual(got, []uint{30, 10, 20}) {
		t.Errorf("ids must follow quiz order, got %v", got)
	}
}
