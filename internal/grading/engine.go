package grading

import (
	"errors"
	"fmt"

	"github.com/mind-engage/selfcheck/internal/question"
)

// ErrUnparseable marks a raw value that cannot be read for the question's
// kind. Callers treat it as a non-matching value, never as a failure.
var ErrUnparseable = errors.New("unparseable response")

// Response is a parsed submission.
type Response struct {
	Kind    question.Kind
	Raw     string
	Number  float64 // NumericTolerance
	Indices []int   // choice kinds, sorted and unique
	OK      bool    // false when Raw could not be parsed
}

// Value returns the numeric view of the response used by conditional
// feedback: the number itself, or the index of a single selected option.
func (r Response) Value() (float64, bool) {
	if !r.OK {
		return 0, false
	}
	switch r.Kind {
	case question.NumericTolerance:
		return r.Number, true
	case question.SingleChoice:
		return float64(r.Indices[0]), true
	}
	return 0, false
}

// Strategy parses and matches one answer kind.
type Strategy interface {
	Parse(q question.Question, raw string) (Response, error)
	Match(q question.Question, r Response) bool
}

// Matcher routes by answer kind to the right Strategy.
type Matcher interface {
	Parse(q question.Question, raw string) (Response, error)
	Match(q question.Question, r Response) bool
}

type defaultMatcher struct {
	strategies map[question.Kind]Strategy
}

func (m *defaultMatcher) Parse(q question.Question, raw string) (Response, error) {
	s, ok := m.strategies[q.Kind]
	if !ok {
		return Response{Kind: q.Kind, Raw: raw}, fmt.Errorf("no strategy for kind %q", q.Kind)
	}
	return s.Parse(q, raw)
}

// Match is false for unparsed responses and unknown kinds.
func (m *defaultMatcher) Match(q question.Question, r Response) bool {
	if !r.OK {
		return false
	}
	s, ok := m.strategies[q.Kind]
	if !ok {
		return false
	}
	return s.Match(q, r)
}

// Matcher options

type Option func(*config)

type config struct {
	LooseNumbers bool // accept a trailing unit, e.g. "41.5 mol"
	Letters      bool // accept option letters (A, B, ...) for choice kinds
}

func WithLooseNumbers(b bool) Option { return func(c *config) { c.LooseNumbers = b } }
func WithLetters(b bool) Option      { return func(c *config) { c.Letters = b } }

// NewMatcher installs the built-in strategies.
func NewMatcher(opts ...Option) Matcher {
	cfg := &config{
		LooseNumbers: true,
		Letters:      true,
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultMatcher{
		strategies: map[question.Kind]Strategy{
			question.NumericTolerance: numericStrategy{loose: cfg.LooseNumbers},
			question.SingleChoice:     singleStrategy{letters: cfg.Letters},
			question.MultiChoice:      multiStrategy{letters: cfg.Letters},
		},
	}
}

// Matches is the one-shot form: parse raw for q and match it.
// Parse failures are reported as a miss.
func Matches(q question.Question, raw string) bool {
	m := NewMatcher()
	r, err := m.Parse(q, raw)
	if err != nil {
		return false
	}
	return m.Match(q, r)
}
