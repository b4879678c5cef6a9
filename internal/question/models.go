package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind selects how a submitted value is parsed and matched.
type Kind string

const (
	NumericTolerance Kind = "numeric"
	SingleChoice     Kind = "single_choice"
	MultiChoice      Kind = "multi_choice"
)

// IsChoice reports whether answers are option indices.
func (k Kind) IsChoice() bool { return k == SingleChoice || k == MultiChoice }

// Default tolerance bounds applied by content providers when a document
// omits them. A Tolerance value itself is always taken as given.
const (
	DefaultRelErr = 0.015
	DefaultAbsErr = 1e-12
)

// Tolerance is the combined relative+absolute error margin for numeric
// answers. The zero value asks for an exact match.
type Tolerance struct {
	RelErr float64 `json:"rel_err"`
	AbsErr float64 `json:"abs_err"`
}

// DefaultTolerance is the margin used when an author gives none.
func DefaultTolerance() Tolerance {
	return Tolerance{RelErr: DefaultRelErr, AbsErr: DefaultAbsErr}
}

// GuessLimit is the maximum number of attempts, or Unlimited.
// The zero value is not a valid limit.
type GuessLimit int

const Unlimited GuessLimit = -1

func (g GuessLimit) Finite() bool { return g > 0 }

func (g GuessLimit) String() string {
	if g == Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(int(g))
}

func (g GuessLimit) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText accepts "unlimited" or a decimal integer.
func (g *GuessLimit) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(strings.ToLower(string(b)))
	if s == "unlimited" || s == "inf" {
		*g = Unlimited
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("guess limit %q: want integer or \"unlimited\"", s)
	}
	*g = GuessLimit(n)
	return nil
}

func (g GuessLimit) MarshalJSON() ([]byte, error) {
	if g == Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(int(g))), nil
}

func (g *GuessLimit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return g.UnmarshalText([]byte(s))
	}
	return g.UnmarshalText(b)
}

// Option is one selectable answer of a choice question.
type Option struct {
	Text string `json:"text"`
}

// Condition is a conditional feedback rule. It fires when the submitted
// value equals Equals, lies in [Min, Max), or is within Tolerance of Near.
// Any of the predicates may be combined; one hit is enough.
type Condition struct {
	Equals    *float64  `json:"equals,omitempty"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	Near      *float64  `json:"near,omitempty"`
	Tolerance Tolerance `json:"tolerance,omitempty"`
	Message   string    `json:"message"`
}

// Rules holds the authored feedback of a question.
// Conditional is ordered: authoring order is priority order.
type Rules struct {
	Correct            string         `json:"correct,omitempty"`
	PerOption          map[int]string `json:"per_option,omitempty"`
	Conditional        []Condition    `json:"conditional,omitempty"`
	Default            string         `json:"default,omitempty"`
	RevealOnExhaustion bool           `json:"reveal_on_exhaustion,omitempty"`
}

// Question is an authored question. Build it with New; it is not
// modified afterwards.
type Question struct {
	Name       string     `json:"name"`
	Prompt     string     `json:"prompt,omitempty"`
	Kind       Kind       `json:"kind"`
	Answer     float64    `json:"answer,omitempty"`  // NumericTolerance
	Correct    []int      `json:"correct,omitempty"` // choice kinds, 0-based
	Options    []Option   `json:"options,omitempty"`
	Tolerance  Tolerance  `json:"tolerance,omitempty"`
	MaxGuesses GuessLimit `json:"max_guesses"`
	Digits     int        `json:"digits,omitempty"`
	InputLabel string     `json:"input_label,omitempty"`
	Hidden     bool       `json:"hidden,omitempty"`
	Feedback   Rules      `json:"feedback"`
}

// Public returns a copy that is safe to hand to the page: no expected
// answer and no feedback text.
func (q Question) Public() Question {
	return Question{
		Name:       q.Name,
		Prompt:     q.Prompt,
		Kind:       q.Kind,
		Options:    append([]Option(nil), q.Options...),
		MaxGuesses: q.MaxGuesses,
		InputLabel: q.InputLabel,
	}
}

// Set is a page worth of questions.
type Set struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Public strips every question in the set, dropping hidden ones.
func (s Set) Public() Set {
	out := Set{ID: s.ID, Title: s.Title, Questions: make([]Question, 0, len(s.Questions))}
	for _, q := range s.Questions {
		if q.Hidden {
			continue
		}
		out.Questions = append(out.Questions, q.Public())
	}
	return out
}

// Lookup finds a question by name.
func (s Set) Lookup(name string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Name == name {
			return q, true
		}
	}
	return Question{}, false
}
