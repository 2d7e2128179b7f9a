package stepper

// StepStatus is the client-visible state of one quiz step. There are only
// two: a step either has a server-acknowledged answer or it does not.
type StepStatus string

const (
	StepUnanswered StepStatus = "unanswered"
	StepSubmitted  StepStatus = "submitted"
)

// Stepper tracks per-question completion for one quiz attempt and decides
// which step to show next. Its submitted set is a cache of the server's
// authoritative list and is fully rebuilt on every reconciliation.
type Stepper struct {
	questionIDs []uint
	submitted   map[uint]bool
	current     int

	// lastApplied guards against out-of-order responses from rapid repeated
	// submissions: a reconciliation older than the newest applied one is
	// discarded.
	lastApplied uint64
}

// New creates a stepper over the quiz's questions in quiz order.
func New(questionIDs []uint) *Stepper {
	return &Stepper{
		questionIDs: append([]uint(nil), questionIDs...),
		submitted:   make(map[uint]bool),
	}
}

// Len returns the number of steps.
func (s *Stepper) Len() int {
	return len(s.questionIDs)
}

// Current returns the index of the step being shown.
func (s *Stepper) Current() int {
	return s.current
}

// Status reports the state of the step holding the given question.
func (s *Stepper) Status(questionID uint) StepStatus {
	if s.submitted[questionID] {
		return StepSubmitted
	}
	return StepUnanswered
}

// Reconcile rebuilds the submitted set from the server's authoritative
// list. Every id in the list is marked submitted, every id absent from it
// becomes unanswered again; calling it twice with the same list is a no-op.
func (s *Stepper) Reconcile(submittedIDs []uint) {
	known := make(map[uint]bool, len(s.questionIDs))
	for _, id := range s.questionIDs {
		known[id] = true
	}

	s.submitted = make(map[uint]bool, len(submittedIDs))
	for _, id := range submittedIDs {
		if known[id] {
			s.submitted[id] = true
		}
	}
}

// Apply reconciles a sequenced response. Responses are applied at most once
// and only in submission order; it reports whether the list was applied.
func (s *Stepper) Apply(seq uint64, submittedIDs []uint) bool {
	if seq <= s.lastApplied {
		return false
	}
	s.lastApplied = seq
	s.Reconcile(submittedIDs)
	return true
}

// FirstUnanswered scans steps in quiz order and returns the index of the
// first step without a submitted answer. When every step is submitted it
// returns the last step's index.
func (s *Stepper) FirstUnanswered() int {
	for i, id := range s.questionIDs {
		if !s.submitted[id] {
			return i
		}
	}
	return len(s.questionIDs) - 1
}

// JumpToFirstUnanswered moves the stepper to the first unanswered step and
// returns its index. Runs on initial load, so the learner resumes where
// they left off, and after every successful non-final submission.
func (s *Stepper) JumpToFirstUnanswered() int {
	s.current = s.FirstUnanswered()
	return s.current
}

// QuestionAt returns the question id shown at a step index.
func (s *Stepper) QuestionAt(index int) (uint, bool) {
	if index < 0 || index >= len(s.questionIDs) {
		return 0, false
	}
	return s.questionIDs[index], true
}
