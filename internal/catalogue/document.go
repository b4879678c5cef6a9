package catalogue

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/selfcheck/internal/question"
)

// Defaults applied to fields a document leaves out. They mirror what the
// course-page widgets did when a prop was omitted.
const (
	DefaultMaxGuesses      question.GuessLimit = 3
	DefaultDigits                              = 2
	DefaultCorrectFeedback                     = "Correct!"
	DefaultUnlimitedWrong                      = "Incorrect."
)

// Document is the authored form of a question set (YAML, or JSON since
// JSON is valid YAML).
type Document struct {
	ID        string        `yaml:"id" validate:"required,max=128"`
	Title     string        `yaml:"title"`
	Questions []QuestionDoc `yaml:"questions" validate:"required,min=1,dive"`
}

type QuestionDoc struct {
	Name       string               `yaml:"name" validate:"omitempty,max=128"`
	Kind       string               `yaml:"kind" validate:"required,oneof=numeric single_choice multi_choice"`
	Prompt     string               `yaml:"prompt"`
	Answer     *float64             `yaml:"answer" validate:"required_if=Kind numeric"`
	Options    []OptionDoc          `yaml:"options" validate:"required_unless=Kind numeric,dive"`
	Tolerance  ToleranceDoc         `yaml:"tolerance"`
	MaxGuesses *question.GuessLimit `yaml:"max_guesses"`
	Digits     *int                 `yaml:"digits" validate:"omitempty,gte=0,lte=15"`
	InputLabel string               `yaml:"input_label"`
	Hidden     bool                 `yaml:"hidden"`
	Feedback   FeedbackDoc          `yaml:"feedback"`
}

type OptionDoc struct {
	Text     string  `yaml:"text" validate:"required"`
	Correct  bool    `yaml:"correct"`
	Feedback *string `yaml:"feedback"`
}

type FeedbackDoc struct {
	Correct    *string        `yaml:"correct"`
	Default    *string        `yaml:"default"`
	Reveal     *bool          `yaml:"reveal_on_exhaustion"`
	Conditions []ConditionDoc `yaml:"conditions" validate:"dive"`
}

// ToleranceDoc holds authored bounds. An omitted bound takes the default;
// an explicit 0 is kept, so rel_err: 0 with abs_err: 0 asks for equality.
type ToleranceDoc struct {
	RelErr *float64 `yaml:"rel_err" validate:"omitempty,gte=0"`
	AbsErr *float64 `yaml:"abs_err" validate:"omitempty,gte=0"`
}

func (t ToleranceDoc) resolve() question.Tolerance {
	tol := question.DefaultTolerance()
	if t.RelErr != nil {
		tol.RelErr = *t.RelErr
	}
	if t.AbsErr != nil {
		tol.AbsErr = *t.AbsErr
	}
	return tol
}

type ConditionDoc struct {
	Equals  *float64 `yaml:"equals"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Near    *float64 `yaml:"near"`
	RelErr  *float64 `yaml:"rel_err" validate:"omitempty,gte=0"`
	AbsErr  *float64 `yaml:"abs_err" validate:"omitempty,gte=0"`
	Message string   `yaml:"message" validate:"required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func docValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode parses and validates an authored document and returns the
// validated set. Every problem is reported as a question.ErrInvalid.
func Decode(b []byte) (question.Set, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return question.Set{}, fmt.Errorf("%w: decode: %v", question.ErrInvalid, err)
	}
	if err := docValidator().Struct(doc); err != nil {
		return question.Set{}, fmt.Errorf("%w: %s", question.ErrInvalid, describe(err))
	}
	return question.NewSet(doc.toSet())
}

func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		msg := ns + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

func (d Document) toSet() question.Set {
	s := question.Set{ID: d.ID, Title: d.Title, Questions: make([]question.Question, 0, len(d.Questions))}
	for _, qd := range d.Questions {
		s.Questions = append(s.Questions, qd.toQuestion())
	}
	return s
}

func (qd QuestionDoc) toQuestion() question.Question {
	q := question.Question{
		Name:       qd.Name,
		Prompt:     qd.Prompt,
		Kind:       question.Kind(qd.Kind),
		MaxGuesses: DefaultMaxGuesses,
		Digits:     DefaultDigits,
		InputLabel: qd.InputLabel,
		Hidden:     qd.Hidden,
	}
	if qd.Answer != nil {
		q.Answer = *qd.Answer
	}
	if q.Kind == question.NumericTolerance {
		q.Tolerance = qd.Tolerance.resolve()
	}
	if qd.MaxGuesses != nil {
		q.MaxGuesses = *qd.MaxGuesses
	}
	if qd.Digits != nil {
		q.Digits = *qd.Digits
	}

	for i, o := range qd.Options {
		q.Options = append(q.Options, question.Option{Text: o.Text})
		if o.Correct {
			q.Correct = append(q.Correct, i)
		}
		if o.Feedback != nil {
			if q.Feedback.PerOption == nil {
				q.Feedback.PerOption = map[int]string{}
			}
			q.Feedback.PerOption[i] = *o.Feedback
		}
	}

	fb := qd.Feedback
	q.Feedback.Correct = DefaultCorrectFeedback
	if fb.Correct != nil {
		q.Feedback.Correct = *fb.Correct
	}
	// Bounded questions end with the revealed answer; unbounded numeric
	// questions just say "Incorrect." after a miss.
	q.Feedback.RevealOnExhaustion = q.MaxGuesses.Finite()
	if fb.Reveal != nil {
		q.Feedback.RevealOnExhaustion = *fb.Reveal
	}
	if q.Kind == question.NumericTolerance && !q.MaxGuesses.Finite() {
		q.Feedback.Default = DefaultUnlimitedWrong
	}
	if fb.Default != nil {
		q.Feedback.Default = *fb.Default
	}
	for _, c := range fb.Conditions {
		q.Feedback.Conditional = append(q.Feedback.Conditional, question.Condition{
			Equals:    c.Equals,
			Min:       c.Min,
			Max:       c.Max,
			Near:      c.Near,
			Tolerance: ToleranceDoc{RelErr: c.RelErr, AbsErr: c.AbsErr}.resolve(),
			Message:   c.Message,
		})
	}
	return q
}
