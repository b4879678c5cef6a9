package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/mind-engage/selfcheck/internal/question"
)

// numericStrategy matches a number within the question's tolerance.
//
//	|v - a| <= |a|*RelErr + AbsErr
//
// The margin scales with the expected value a, not the guess.
type numericStrategy struct{ loose bool }

func (s numericStrategy) Parse(q question.Question, raw string) (Response, error) {
	res := Response{Kind: question.NumericTolerance, Raw: raw}
	var (
		v  float64
		ok bool
	)
	if s.loose {
		v, ok = parseFloatLoose(raw, q.InputLabel)
	} else {
		v, ok = parseFloatStrict(raw)
	}
	if !ok {
		return res, fmt.Errorf("%w: %q is not a number", ErrUnparseable, raw)
	}
	res.Number = v
	res.OK = true
	return res, nil
}

func (numericStrategy) Match(q question.Question, r Response) bool {
	return WithinTolerance(r.Number, q.Answer, q.Tolerance)
}

// WithinTolerance reports whether v matches expected a under tol exactly as
// given; a zero Tolerance means equality. Non-finite values never match.
func WithinTolerance(v, a float64, tol question.Tolerance) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(a) || math.IsInf(a, 0) {
		return false
	}
	return math.Abs(v-a) <= math.Abs(a)*tol.RelErr+tol.AbsErr
}

func parseFloatStrict(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseFloatLoose also accepts a number followed by a unit: the question's
// input label, or a single word of letters. "42 or 50" is not a number.
func parseFloatLoose(s, label string) (float64, bool) {
	if v, ok := parseFloatStrict(s); ok {
		return v, true
	}
	sp := strings.Fields(s)
	if len(sp) < 2 {
		return 0, false
	}
	unit := strings.Join(sp[1:], " ")
	if !strings.EqualFold(unit, strings.TrimSpace(label)) && !isWord(unit) {
		return 0, false
	}
	return parseFloatStrict(sp[0])
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
