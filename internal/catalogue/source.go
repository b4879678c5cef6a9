package catalogue

import (
	"context"
	"errors"

	"github.com/mind-engage/selfcheck/internal/question"
)

// ErrNotFound is returned for an unknown set id.
var ErrNotFound = errors.New("question set not found")

// Summary describes a set without its questions.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
}

// Source supplies validated question sets to the engine.
type Source interface {
	Get(ctx context.Context, id string) (question.Set, error)
	List(ctx context.Context) ([]Summary, error)
}

func summarize(s question.Set) Summary {
	return Summary{ID: s.ID, Title: s.Title, Questions: len(s.Questions)}
}
