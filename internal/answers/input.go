package answers

import "sort"

// FileUpload is a freshly selected file, carried to the protocol client as a
// multipart part.
type FileUpload struct {
	Name    string
	Content []byte
}

// SlotAssignments tracks drag-and-drop placement for MATRIX questions as an
// explicit event stream: every drop is an Assign, every removal an Unassign.
// Extraction becomes a plain map read, with no widget introspection.
type SlotAssignments struct {
	placed map[int]string
}

func NewSlotAssignments() *SlotAssignments {
	return &SlotAssignments{placed: make(map[int]string)}
}

// Assign records the item dropped into a slot, replacing any prior item.
// Negative slot indices are ignored.
func (s *SlotAssignments) Assign(slot int, item string) {
	if slot < 0 {
		return
	}
	s.placed[slot] = item
}

// Unassign clears a slot.
func (s *SlotAssignments) Unassign(slot int) {
	delete(s.placed, slot)
}

// Item returns the item placed in a slot, if any.
func (s *SlotAssignments) Item(slot int) (string, bool) {
	item, ok := s.placed[slot]
	return item, ok
}

// Placed returns a copy of the assignments restricted to slots below
// slotCount, so stray indices never leak into a submission.
func (s *SlotAssignments) Placed(slotCount int) map[int]string {
	placed := make(map[int]string)
	for slot, item := range s.placed {
		if slot < slotCount {
			placed[slot] = item
		}
	}
	return placed
}

// TableGrid tracks per-cell input for TABLE questions. Which accessor the
// extractor reads depends on the question's configured input type.
type TableGrid struct {
	text   map[int]map[int]string
	radio  map[int]string
	checks map[int]map[int]bool
}

func NewTableGrid() *TableGrid {
	return &TableGrid{
		text:   make(map[int]map[int]string),
		radio:  make(map[int]string),
		checks: make(map[int]map[int]bool),
	}
}

// SetText records the value typed into a text/textarea cell.
func (g *TableGrid) SetText(row, col int, value string) {
	cells, ok := g.text[row]
	if !ok {
		cells = make(map[int]string)
		g.text[row] = cells
	}
	cells[col] = value
}

// SetRadio records the selected column value for a row's radio group.
func (g *TableGrid) SetRadio(row int, value string) {
	g.radio[row] = value
}

// ClearRadio removes a row's radio selection.
func (g *TableGrid) ClearRadio(row int) {
	delete(g.radio, row)
}

// SetCheck toggles a checkbox cell.
func (g *TableGrid) SetCheck(row, col int, checked bool) {
	cells, ok := g.checks[row]
	if !ok {
		if !checked {
			return
		}
		cells = make(map[int]bool)
		g.checks[row] = cells
	}
	if checked {
		cells[col] = true
	} else {
		delete(cells, col)
	}
}

func (g *TableGrid) textValues() map[int]map[int]string {
	values := make(map[int]map[int]string)
	for row, cells := range g.text {
		for col, value := range cells {
			if value == "" {
				continue
			}
			if values[row] == nil {
				values[row] = make(map[int]string)
			}
			values[row][col] = value
		}
	}
	return values
}

func (g *TableGrid) radioValues() map[int]string {
	values := make(map[int]string)
	for row, value := range g.radio {
		if value != "" {
			values[row] = value
		}
	}
	return values
}

func (g *TableGrid) checkedColumns() map[int][]int {
	values := make(map[int][]int)
	for row, cells := range g.checks {
		cols := make([]int, 0, len(cells))
		for col, checked := range cells {
			if checked {
				cols = append(cols, col)
			}
		}
		if len(cols) == 0 {
			continue
		}
		sort.Ints(cols)
		values[row] = cols
	}
	return values
}

// Input captures the current state of the answer widgets for one question.
// Only the fields matching the question's answer type are consulted.
type Input struct {
	// ESSAY (rich text) and SINGLE.
	Text string

	// FILE: a freshly selected upload, or a reference to a file stored on a
	// previous submission.
	File          *FileUpload
	StoredFileRef string

	// SCQ, MCQ, ASSESSMENT: checked value per option group index.
	Choices map[int]string

	// SORT: item labels in current on-screen order.
	Order []string

	// BLANKS: per-blank input values in blank order.
	Blanks []string

	// MATRIX.
	Slots *SlotAssignments

	// TABLE.
	Table *TableGrid
}
