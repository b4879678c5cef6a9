package catalogue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/selfcheck/internal/question"
)

// SQLStore keeps validated sets in the question_sets table.
// The upsert syntax is shared by SQLite and Postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Put validates s and upserts it.
func (s *SQLStore) Put(ctx context.Context, set question.Set) error {
	vs, err := question.NewSet(set)
	if err != nil {
		return err
	}
	sj, err := json.Marshal(vs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO question_sets (id,title,set_json,question_count,updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, set_json=EXCLUDED.set_json,
			question_count=EXCLUDED.question_count, updated_at=EXCLUDED.updated_at`,
		vs.ID, vs.Title, string(sj), len(vs.Questions), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put set %s: %w", vs.ID, err)
	}
	return nil
}

// Get re-validates the stored set so a hand-edited row cannot mount.
func (s *SQLStore) Get(ctx context.Context, id string) (question.Set, error) {
	row := s.db.QueryRowContext(ctx, `SELECT set_json FROM question_sets WHERE id=$1`, id)
	var sj string
	if err := row.Scan(&sj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Set{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return question.Set{}, err
	}
	var set question.Set
	if err := json.Unmarshal([]byte(sj), &set); err != nil {
		return question.Set{}, fmt.Errorf("set %s: %w", id, err)
	}
	return question.NewSet(set)
}

func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,question_count FROM question_sets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Questions); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question_sets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// Import copies every document of src into s and returns how many sets
// were written.
func Import(ctx context.Context, src *FileSource, dst *SQLStore) (int, error) {
	sets, err := src.All(ctx)
	if err != nil {
		return 0, err
	}
	for _, set := range sets {
		if err := dst.Put(ctx, set); err != nil {
			return 0, err
		}
	}
	return len(sets), nil
}
