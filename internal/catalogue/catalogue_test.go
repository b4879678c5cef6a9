package catalogue

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/selfcheck/internal/db"
	"github.com/mind-engage/selfcheck/internal/question"
	"github.com/mind-engage/selfcheck/internal/storage"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "pchem-ch1.yaml"))
	require.NoError(t, err)
	return b
}

func newFileSource(t *testing.T) *FileSource {
	t.Helper()
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = bs.Put("sets/pchem-ch1.yaml", bytes.NewReader(readFixture(t)))
	require.NoError(t, err)
	_, err = bs.Put("sets/README.md", bytes.NewReader([]byte("not a set")))
	require.NoError(t, err)
	return NewFileSource(bs)
}

func TestDecode_AppliesDefaults(t *testing.T) {
	set, err := Decode(readFixture(t))
	require.NoError(t, err)
	require.Len(t, set.Questions, 5)

	pd := set.Questions[0]
	assert.Equal(t, question.NumericTolerance, pd.Kind)
	assert.Equal(t, DefaultMaxGuesses, pd.MaxGuesses)
	assert.Equal(t, DefaultDigits, pd.Digits)
	assert.Equal(t, "Correct!", pd.Feedback.Correct)
	assert.True(t, pd.Feedback.RevealOnExhaustion)
	assert.Empty(t, pd.Feedback.Default)
	assert.Equal(t, question.Tolerance{RelErr: question.DefaultRelErr, AbsErr: question.DefaultAbsErr}, pd.Tolerance)

	tm := set.Questions[1]
	assert.Equal(t, question.GuessLimit(2), tm.MaxGuesses)
	assert.Equal(t, "mol", tm.InputLabel)
	require.Len(t, tm.Feedback.Conditional, 2)
	assert.Equal(t, 6.0, *tm.Feedback.Conditional[0].Near)

	meaning := set.Questions[2]
	assert.Equal(t, question.Unlimited, meaning.MaxGuesses)
	assert.False(t, meaning.Feedback.RevealOnExhaustion)
	assert.Equal(t, DefaultUnlimitedWrong, meaning.Feedback.Default)

	cls := set.Questions[3]
	assert.Equal(t, []int{1}, cls.Correct)
	assert.Len(t, cls.Feedback.PerOption, 2)

	gases := set.Questions[4]
	assert.Equal(t, []int{0, 2}, gases.Correct)
	assert.Equal(t, "Check the phase labels.", gases.Feedback.Default)
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing id":         "questions:\n  - kind: numeric\n    answer: 1\n",
		"no questions":       "id: x\n",
		"unknown kind":       "id: x\nquestions:\n  - kind: essay\n",
		"numeric answer":     "id: x\nquestions:\n  - kind: numeric\n",
		"unknown field":      "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    colour: red\n",
		"zero guesses":       "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    max_guesses: 0\n",
		"bad guesses":        "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    max_guesses: lots\n",
		"no correct":         "id: x\nquestions:\n  - kind: single_choice\n    options:\n      - text: a\n",
		"choice w/o opts":    "id: x\nquestions:\n  - kind: multi_choice\n",
		"options on numeric": "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    options:\n      - text: a\n",
		"negative rel_err":   "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    tolerance:\n      rel_err: -0.1\n",
		"rule w/o message":   "id: x\nquestions:\n  - kind: numeric\n    answer: 1\n    feedback:\n      conditions:\n        - equals: 1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.ErrorIs(t, err, question.ErrInvalid)
		})
	}
}

func TestDecode_ToleranceDefaultsOnlyWhenOmitted(t *testing.T) {
	doc := `
id: tol
questions:
  - name: exact
    kind: numeric
    answer: 100
    tolerance: {rel_err: 0, abs_err: 0}
  - name: abs-only
    kind: numeric
    answer: 100
    tolerance: {abs_err: 0.5}
    feedback:
      conditions:
        - near: 50
          message: half
        - near: 10
          rel_err: 0
          abs_err: 0
          message: tenth
`
	set, err := Decode([]byte(doc))
	require.NoError(t, err)

	exact := set.Questions[0]
	assert.Equal(t, question.Tolerance{}, exact.Tolerance)

	abs := set.Questions[1]
	assert.Equal(t, question.Tolerance{RelErr: question.DefaultRelErr, AbsErr: 0.5}, abs.Tolerance)
	assert.Equal(t, question.DefaultTolerance(), abs.Feedback.Conditional[0].Tolerance)
	assert.Equal(t, question.Tolerance{}, abs.Feedback.Conditional[1].Tolerance)
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"id":"j","questions":[{"kind":"single_choice","options":[{"text":"a"},{"text":"b","correct":true}],"max_guesses":"unlimited"}]}`
	set, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, question.Unlimited, set.Questions[0].MaxGuesses)
	assert.Equal(t, "q1", set.Questions[0].Name)
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	src := newFileSource(t)

	list, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Summary{{ID: "pchem-ch1", Title: "Isotope statistics", Questions: 5}}, list)

	set, err := src.Get(ctx, "pchem-ch1")
	require.NoError(t, err)
	assert.Equal(t, "pchem-ch1", set.ID)

	_, err = src.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = src.Get(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSource_IDMustMatchFileName(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = bs.Put("sets/other.yaml", bytes.NewReader(readFixture(t)))
	require.NoError(t, err)
	_, err = NewFileSource(bs).Get(context.Background(), "other")
	assert.ErrorIs(t, err, question.ErrInvalid)
}

func TestFileSource_Add(t *testing.T) {
	ctx := context.Background()
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	src := NewFileSource(bs)

	set, err := src.Add(ctx, "/tmp/upload/whatever.yml", readFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "pchem-ch1", set.ID)

	keys, err := bs.List(SetsPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"sets/pchem-ch1.yml"}, keys, "stored under the set id, keeping the extension")
	got, err := src.Get(ctx, "pchem-ch1")
	require.NoError(t, err)
	assert.Equal(t, set, got)

	_, err = src.Add(ctx, "notes.txt", []byte("id: x\ntitle: no questions\n"))
	assert.ErrorIs(t, err, question.ErrInvalid)
	keys, err = bs.List(SetsPrefix)
	require.NoError(t, err)
	assert.Len(t, keys, 1, "a rejected document is not written")
}

func TestSQLStore_ImportAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:catalogue_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer h.Close()
	store := NewSQLStore(h)

	n, err := Import(ctx, newFileSource(t), store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// importing twice upserts
	_, err = Import(ctx, newFileSource(t), store)
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Summary{{ID: "pchem-ch1", Title: "Isotope statistics", Questions: 5}}, list)

	want, err := Decode(readFixture(t))
	require.NoError(t, err)
	got, err := store.Get(ctx, "pchem-ch1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(ctx, "pchem-ch1"))
	_, err = store.Get(ctx, "pchem-ch1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "pchem-ch1"), ErrNotFound)
}

func TestSQLStore_PutRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:catalogue_invalid_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer h.Close()
	err = NewSQLStore(h).Put(ctx, question.Set{ID: "bad", Questions: []question.Question{{Kind: question.NumericTolerance}}})
	assert.ErrorIs(t, err, question.ErrInvalid)
}
