package question

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalid is wrapped by every ConfigError.
var ErrInvalid = errors.New("invalid question")

// ConfigError reports a malformed authored question. It is fatal to the
// question instance.
type ConfigError struct {
	Question string
	Field    string
	Reason   string
}

func (e *ConfigError) Error() string {
	name := e.Question
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("question %s: %s: %s", name, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalid }

// New validates q and returns the immutable form: correct indices sorted
// and deduplicated, slices and maps copied. Tolerances are kept as given.
func New(q Question) (Question, error) {
	bad := func(field, format string, args ...any) (Question, error) {
		return Question{}, &ConfigError{Question: q.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	switch q.Kind {
	case NumericTolerance, SingleChoice, MultiChoice:
	case "":
		return bad("kind", "missing")
	default:
		return bad("kind", "unknown kind %q", q.Kind)
	}
	if q.MaxGuesses != Unlimited && q.MaxGuesses <= 0 {
		return bad("max_guesses", "must be positive or unlimited, got %d", int(q.MaxGuesses))
	}
	if q.Digits < 0 {
		return bad("digits", "must not be negative")
	}

	out := q
	out.Options = append([]Option(nil), q.Options...)
	out.Feedback.Conditional = append([]Condition(nil), q.Feedback.Conditional...)
	if len(q.Feedback.PerOption) > 0 {
		out.Feedback.PerOption = make(map[int]string, len(q.Feedback.PerOption))
		for k, v := range q.Feedback.PerOption {
			out.Feedback.PerOption[k] = v
		}
	}

	switch q.Kind {
	case NumericTolerance:
		if math.IsNaN(q.Answer) || math.IsInf(q.Answer, 0) {
			return bad("answer", "must be a finite number")
		}
		if q.Tolerance.RelErr < 0 || q.Tolerance.AbsErr < 0 {
			return bad("tolerance", "bounds must not be negative")
		}
		if len(q.Correct) > 0 || len(q.Feedback.PerOption) > 0 {
			return bad("correct", "option answers given for a numeric question")
		}
		if len(q.Options) > 0 {
			return bad("options", "a numeric question has no options")
		}
		out.Correct = nil

	case SingleChoice, MultiChoice:
		idx := dedupe(q.Correct)
		if len(idx) == 0 {
			return bad("correct", "no correct option")
		}
		if q.Kind == SingleChoice && len(idx) != 1 {
			return bad("correct", "single choice needs exactly one correct option, got %d", len(idx))
		}
		for _, i := range idx {
			if !inRange(i, len(q.Options)) {
				return bad("correct", "option index %d out of range", i)
			}
		}
		for i := range q.Feedback.PerOption {
			if !inRange(i, len(q.Options)) {
				return bad("feedback.per_option", "option index %d out of range", i)
			}
		}
		out.Correct = idx
		out.Answer = 0
	}

	for i, c := range q.Feedback.Conditional {
		if c.Equals == nil && c.Min == nil && c.Max == nil && c.Near == nil {
			return bad(fmt.Sprintf("feedback.conditional[%d]", i), "no predicate")
		}
		if c.Min != nil && c.Max != nil && *c.Min >= *c.Max {
			return bad(fmt.Sprintf("feedback.conditional[%d]", i), "empty range [%g, %g)", *c.Min, *c.Max)
		}
		if c.Tolerance.RelErr < 0 || c.Tolerance.AbsErr < 0 {
			return bad(fmt.Sprintf("feedback.conditional[%d].tolerance", i), "bounds must not be negative")
		}
	}
	return out, nil
}

// inRange accepts any non-negative index when no options are listed.
func inRange(i, n int) bool {
	if i < 0 {
		return false
	}
	return n == 0 || i < n
}

func dedupe(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// NewSet validates every question of s. Names must be unique.
func NewSet(s Set) (Set, error) {
	if s.ID == "" {
		return Set{}, fmt.Errorf("%w: set has no id", ErrInvalid)
	}
	out := Set{ID: s.ID, Title: s.Title, Questions: make([]Question, 0, len(s.Questions))}
	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		if q.Name == "" {
			q.Name = fmt.Sprintf("q%d", i+1)
		}
		if seen[q.Name] {
			return Set{}, &ConfigError{Question: q.Name, Field: "name", Reason: "duplicate in set " + s.ID}
		}
		seen[q.Name] = true
		vq, err := New(q)
		if err != nil {
			return Set{}, err
		}
		out.Questions = append(out.Questions, vq)
	}
	return out, nil
}
