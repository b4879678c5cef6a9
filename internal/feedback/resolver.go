// Package feedback picks the single feedback message shown for a question
// instance.
//
// Candidates are tried in a fixed order and the first hit wins:
//
//  1. the correct-answer message, once the instance is Correct
//  2. the per-option message of the selected option (choice kinds)
//  3. the first conditional rule whose predicate holds for the last value
//  4. the default message, after at least one wrong attempt
//  5. the revealed answer, when guesses ran out and reveal is enabled
//  6. nothing
package feedback

import (
	"fmt"
	"strings"

	"github.com/mind-engage/selfcheck/internal/attempt"
	"github.com/mind-engage/selfcheck/internal/grading"
	"github.com/mind-engage/selfcheck/internal/question"
)

// Source tells which rule produced a message.
type Source string

const (
	None        Source = ""
	Correct     Source = "correct"
	Option      Source = "option"
	Conditional Source = "conditional"
	Default     Source = "default"
	Reveal      Source = "reveal"
)

type Message struct {
	Text   string `json:"text,omitempty"`
	Source Source `json:"source,omitempty"`
}

// Empty reports whether there is nothing to display. An authored empty
// per-option message resolves to an empty Option message.
func (m Message) Empty() bool { return m.Text == "" }

// Input is everything the resolver looks at. Response is the parsed last
// submission; a zero Response means there is none.
type Input struct {
	Question question.Question
	State    attempt.State
	Response grading.Response
}

// Resolve returns exactly one message, possibly empty.
func Resolve(in Input) Message {
	q, st, r := in.Question, in.State, in.Response
	status := st.Current()

	if status == attempt.Correct {
		return Message{Text: q.Feedback.Correct, Source: Correct}
	}

	if q.Kind.IsChoice() && r.OK {
		for _, i := range r.Indices {
			if text, ok := q.Feedback.PerOption[i]; ok {
				return Message{Text: text, Source: Option}
			}
		}
	}

	if v, ok := r.Value(); ok {
		for _, c := range q.Feedback.Conditional {
			if Holds(c, v) {
				return Message{Text: c.Message, Source: Conditional}
			}
		}
	}

	if q.Feedback.Default != "" && st.Attempts > 0 {
		return Message{Text: q.Feedback.Default, Source: Default}
	}

	if status == attempt.Exhausted && q.Feedback.RevealOnExhaustion {
		return Message{Text: RevealText(q), Source: Reveal}
	}
	return Message{}
}

// Holds evaluates one conditional rule against v. Ranges are half-open,
// [Min, Max); a missing bound is unbounded on that side.
func Holds(c question.Condition, v float64) bool {
	if c.Equals != nil && v == *c.Equals {
		return true
	}
	if c.Min != nil || c.Max != nil {
		lo := c.Min == nil || v >= *c.Min
		hi := c.Max == nil || v < *c.Max
		if lo && hi {
			return true
		}
	}
	if c.Near != nil && grading.WithinTolerance(v, *c.Near, c.Tolerance) {
		return true
	}
	return false
}

// RevealText states the canonical answer of q.
func RevealText(q question.Question) string {
	var ans string
	switch q.Kind {
	case question.NumericTolerance:
		ans = fmt.Sprintf("%.*f", q.Digits, q.Answer)
		if q.InputLabel != "" {
			ans += " " + q.InputLabel
		}
	default:
		letters := make([]string, 0, len(q.Correct))
		for _, i := range q.Correct {
			letters = append(letters, grading.OptionLetter(i))
		}
		ans = strings.Join(letters, ", ")
	}
	return "Incorrect. The correct answer is " + ans + "."
}
