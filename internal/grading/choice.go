package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mind-engage/selfcheck/internal/question"
)

type singleStrategy struct{ letters bool }

// Parse accepts an index, a letter, or the option text itself.
func (s singleStrategy) Parse(q question.Question, raw string) (Response, error) {
	res := Response{Kind: question.SingleChoice, Raw: raw}
	i, ok := parseIndex(raw, s.letters)
	if !ok {
		i, ok = optionByText(q, raw)
	}
	if !ok {
		return res, fmt.Errorf("%w: %q is not an option", ErrUnparseable, raw)
	}
	res.Indices = []int{i}
	res.OK = true
	return res, nil
}

func (singleStrategy) Match(q question.Question, r Response) bool {
	if len(r.Indices) != 1 || len(q.Correct) != 1 {
		return false
	}
	return r.Indices[0] == q.Correct[0]
}

// multiStrategy requires the selected set to equal the correct set.
// Order is irrelevant and there is no partial credit.
type multiStrategy struct{ letters bool }

// Parse reads a comma, semicolon or space separated list. An empty list is
// a valid submission with nothing selected.
func (s multiStrategy) Parse(_ question.Question, raw string) (Response, error) {
	res := Response{Kind: question.MultiChoice, Raw: raw}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	idx := make([]int, 0, len(fields))
	for _, f := range fields {
		i, ok := parseIndex(f, s.letters)
		if !ok {
			return res, fmt.Errorf("%w: %q is not an option", ErrUnparseable, f)
		}
		idx = append(idx, i)
	}
	res.Indices = toSortedSet(idx)
	res.OK = true
	return res, nil
}

func (multiStrategy) Match(q question.Question, r Response) bool {
	return SetEqual(r.Indices, q.Correct)
}

// SetEqual compares two index lists as sets.
func SetEqual(a, b []int) bool {
	sa, sb := toSet(a), toSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

// OptionLetter labels option i the way pages print it: 0 -> "A".
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return strconv.Itoa(i)
	}
	return string(rune('A' + i))
}

// parseIndex accepts a 0-based index or, when letters is set, a single
// option letter in either case.
func parseIndex(s string, letters bool) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}
	if letters && len(s) == 1 {
		c := unicode.ToUpper(rune(s[0]))
		if c >= 'A' && c <= 'Z' {
			return int(c - 'A'), true
		}
	}
	return 0, false
}

func toSet(arr []int) map[int]struct{} {
	m := make(map[int]struct{}, len(arr))
	for _, i := range arr {
		m[i] = struct{}{}
	}
	return m
}

func toSortedSet(arr []int) []int {
	m := toSet(arr)
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
