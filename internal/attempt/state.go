package attempt

import "github.com/mind-engage/selfcheck/internal/question"

// Status is the resolution state of one question instance.
type Status string

const (
	Unanswered         Status = "unanswered"
	IncorrectRetryable Status = "incorrect_retryable"
	Correct            Status = "correct"
	Exhausted          Status = "exhausted"
)

// Terminal reports whether no further evaluation happens.
func (s Status) Terminal() bool { return s == Correct || s == Exhausted }

// State is the mutable guess state of one question instance. The zero
// value is the initial state.
type State struct {
	Attempts int    `json:"attempts"`
	Last     string `json:"last,omitempty"`
	HasLast  bool   `json:"has_last"`
	Status   Status `json:"status"`
}

// New returns the initial state.
func New() State { return State{Status: Unanswered} }

// Reset returns s to the initial state.
func (s *State) Reset() { *s = New() }

// Current returns the status, mapping the zero value to Unanswered.
func (s *State) Current() Status {
	if s.Status == "" {
		return Unanswered
	}
	return s.Status
}

// Record remembers the last raw submission without counting an attempt.
// It is ignored once the state is terminal.
func (s *State) Record(raw string) {
	if s.Current().Terminal() {
		return
	}
	s.Last, s.HasLast = raw, true
}

// Advance applies one evaluated submission and reports whether the state
// changed. Terminal states never change.
//
//	correct               -> Correct (attempt counted)
//	wrong, limit reached  -> Exhausted
//	wrong                 -> IncorrectRetryable
func Advance(s *State, correct bool, limit question.GuessLimit) bool {
	if s.Current().Terminal() {
		return false
	}
	s.Attempts++
	switch {
	case correct:
		s.Status = Correct
	case limit.Finite() && s.Attempts >= int(limit):
		s.Status = Exhausted
	default:
		s.Status = IncorrectRetryable
	}
	return true
}

// Remaining returns the attempts left under limit; unlimited is true when
// the limit is not finite.
func Remaining(s State, limit question.GuessLimit) (n int, unlimited bool) {
	if !limit.Finite() {
		return 0, true
	}
	n = int(limit) - s.Attempts
	if n < 0 {
		n = 0
	}
	return n, false
}
