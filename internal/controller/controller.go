package controller

import (
	"github.com/mind-engage/selfcheck/internal/attempt"
	"github.com/mind-engage/selfcheck/internal/feedback"
	"github.com/mind-engage/selfcheck/internal/grading"
	"github.com/mind-engage/selfcheck/internal/question"
)

// Outcome classifies what one Submit call did.
type Outcome string

const (
	Matched   Outcome = "matched"
	Missed    Outcome = "missed"
	NoMatch   Outcome = "no_match"   // raw value could not be parsed
	InertNoOp Outcome = "inert_noop" // instance already terminal
)

// UnparsedPolicy decides whether an unparseable value consumes an attempt.
type UnparsedPolicy string

const (
	CountWellFormedOnly UnparsedPolicy = "well_formed"
	CountAlways         UnparsedPolicy = "always"
)

// ParsePolicy maps a config string to a policy, defaulting to
// CountWellFormedOnly.
func ParsePolicy(s string) UnparsedPolicy {
	if UnparsedPolicy(s) == CountAlways {
		return CountAlways
	}
	return CountWellFormedOnly
}

// Snapshot is what the rendering side reads after every call.
type Snapshot struct {
	Question          string           `json:"question"`
	Status            attempt.Status   `json:"status"`
	Feedback          feedback.Message `json:"feedback"`
	Attempts          int              `json:"attempts"`
	AttemptsRemaining int              `json:"attempts_remaining"`
	Unlimited         bool             `json:"unlimited"`
	InputDisabled     bool             `json:"input_disabled"`
	Last              string           `json:"last,omitempty"`
}

// Config is the variant a controller runs as.
type Config struct {
	Controlled bool // guess state owned by the caller
	MaxGuesses question.GuessLimit
}

// Controller evaluates submissions for one question instance. It is not
// safe for concurrent use; submissions for one instance are sequential.
type Controller struct {
	q          question.Question
	matcher    grading.Matcher
	policy     UnparsedPolicy
	state      *attempt.State
	controlled bool
}

type Option func(*options)

type options struct {
	state      *attempt.State
	maxGuesses *question.GuessLimit
	policy     UnparsedPolicy
	matcher    grading.Matcher
}

// WithState runs the controller in controlled mode: st is owned by the
// caller and mutated in place.
func WithState(st *attempt.State) Option { return func(o *options) { o.state = st } }

// WithMaxGuesses overrides the authored guess limit.
func WithMaxGuesses(n question.GuessLimit) Option {
	return func(o *options) { o.maxGuesses = &n }
}

func WithUnparsedPolicy(p UnparsedPolicy) Option { return func(o *options) { o.policy = p } }
func WithMatcher(m grading.Matcher) Option       { return func(o *options) { o.matcher = m } }

// New validates q and builds a controller. A malformed question returns a
// *question.ConfigError and no controller.
func New(q question.Question, opts ...Option) (*Controller, error) {
	o := &options{policy: CountWellFormedOnly}
	for _, fn := range opts {
		fn(o)
	}
	if o.maxGuesses != nil {
		q.MaxGuesses = *o.maxGuesses
	}
	vq, err := question.New(q)
	if err != nil {
		return nil, err
	}
	if o.matcher == nil {
		o.matcher = grading.NewMatcher()
	}
	c := &Controller{q: vq, matcher: o.matcher, policy: o.policy, state: o.state}
	if c.state != nil {
		c.controlled = true
	} else {
		st := attempt.New()
		c.state = &st
	}
	return c, nil
}

func (c *Controller) Question() question.Question { return c.q }

func (c *Controller) Config() Config {
	return Config{Controlled: c.controlled, MaxGuesses: c.q.MaxGuesses}
}

// State returns a copy of the current guess state.
func (c *Controller) State() attempt.State { return *c.state }

// Submit evaluates one raw value. Calls on a terminal instance are inert
// and return the unchanged snapshot.
func (c *Controller) Submit(raw string) (Snapshot, Outcome) {
	st := c.state
	if st.Current().Terminal() {
		return c.Snapshot(), InertNoOp
	}
	st.Record(raw)

	r, err := c.matcher.Parse(c.q, raw)
	if err != nil {
		if c.policy == CountAlways {
			attempt.Advance(st, false, c.q.MaxGuesses)
		}
		return c.Snapshot(), NoMatch
	}
	ok := c.matcher.Match(c.q, r)
	attempt.Advance(st, ok, c.q.MaxGuesses)
	if ok {
		return c.Snapshot(), Matched
	}
	return c.Snapshot(), Missed
}

// Reset returns the guess state to its initial value.
func (c *Controller) Reset() Snapshot {
	c.state.Reset()
	return c.Snapshot()
}

// Snapshot resolves feedback for the current state without changing it.
func (c *Controller) Snapshot() Snapshot {
	st := *c.state
	var r grading.Response
	if st.HasLast {
		r, _ = c.matcher.Parse(c.q, st.Last)
	}
	status := st.Current()
	remaining, unlimited := attempt.Remaining(st, c.q.MaxGuesses)
	return Snapshot{
		Question:          c.q.Name,
		Status:            status,
		Feedback:          feedback.Resolve(feedback.Input{Question: c.q, State: st, Response: r}),
		Attempts:          st.Attempts,
		AttemptsRemaining: remaining,
		Unlimited:         unlimited,
		InputDisabled:     status.Terminal(),
		Last:              st.Last,
	}
}
