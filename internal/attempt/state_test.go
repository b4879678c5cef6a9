package attempt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/selfcheck/internal/question"
)

func TestZeroValueIsUnanswered(t *testing.T) {
	var s State
	assert.Equal(t, Unanswered, s.Current())
	assert.False(t, s.Current().Terminal())
}

func TestAdvance_CorrectIsTerminal(t *testing.T) {
	s := New()
	assert.True(t, Advance(&s, true, 3))
	assert.Equal(t, Correct, s.Status)
	assert.Equal(t, 1, s.Attempts)

	assert.False(t, Advance(&s, false, 3))
	assert.False(t, Advance(&s, true, 3))
	assert.Equal(t, Correct, s.Status)
	assert.Equal(t, 1, s.Attempts)
}

func TestAdvance_Exhausts(t *testing.T) {
	s := New()
	Advance(&s, false, 2)
	assert.Equal(t, IncorrectRetryable, s.Status)
	n, unl := Remaining(s, 2)
	assert.Equal(t, 1, n)
	assert.False(t, unl)

	Advance(&s, false, 2)
	assert.Equal(t, Exhausted, s.Status)
	assert.Equal(t, 2, s.Attempts)

	assert.False(t, Advance(&s, true, 2), "exhausted is terminal")
	assert.Equal(t, Exhausted, s.Status)
	n, _ = Remaining(s, 2)
	assert.Equal(t, 0, n)
}

func TestAdvance_UnlimitedNeverExhausts(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		Advance(&s, false, question.Unlimited)
		assert.Equal(t, IncorrectRetryable, s.Status)
	}
	assert.Equal(t, 100, s.Attempts)
	_, unl := Remaining(s, question.Unlimited)
	assert.True(t, unl)

	Advance(&s, true, question.Unlimited)
	assert.Equal(t, Correct, s.Status)
}

func TestAdvance_MonotonicAndBounded(t *testing.T) {
	// every pattern of right/wrong answers over five submissions
	for mask := 0; mask < 1<<5; mask++ {
		for _, limit := range []question.GuessLimit{1, 2, 3, 5} {
			s := New()
			prev := 0
			for i := 0; i < 5; i++ {
				terminal := s.Current().Terminal()
				before := s
				Advance(&s, mask&(1<<i) != 0, limit)
				assert.GreaterOrEqual(t, s.Attempts, prev)
				assert.LessOrEqual(t, s.Attempts, int(limit))
				if terminal {
					assert.Equal(t, before, s)
				}
				if s.Status == Exhausted {
					assert.GreaterOrEqual(t, s.Attempts, int(limit))
				}
				prev = s.Attempts
			}
		}
	}
}

func TestRecordAndReset(t *testing.T) {
	s := New()
	s.Record("abc")
	assert.True(t, s.HasLast)
	assert.Equal(t, "abc", s.Last)
	assert.Equal(t, 0, s.Attempts)

	Advance(&s, true, 1)
	s.Record("later")
	assert.Equal(t, "abc", s.Last, "terminal state keeps its last value")

	s.Reset()
	assert.Equal(t, New(), s)
}
