package grading

import (
	"unicode"

	"github.com/mind-engage/selfcheck/internal/question"
)

// normalize does simple casefolding and drops punctuation and extra spaces.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// optionByText finds the option whose text equals s after normalising
// both. Ambiguous text (two options normalising alike) does not match.
func optionByText(q question.Question, s string) (int, bool) {
	want := normalize(s)
	if want == "" {
		return 0, false
	}
	found := -1
	for i, o := range q.Options {
		if normalize(o.Text) != want {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = i
	}
	return found, found >= 0
}
