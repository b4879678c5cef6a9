package catalogue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mind-engage/selfcheck/internal/question"
	"github.com/mind-engage/selfcheck/internal/storage"
)

// SetsPrefix is where set documents live in the blob store.
const SetsPrefix = "sets/"

var docExts = []string{".yaml", ".yml", ".json"}

// FileSource reads set documents from a blob store. The key
// "sets/<id>.yaml" holds set <id>.
type FileSource struct {
	blobs storage.BlobStore
}

func NewFileSource(blobs storage.BlobStore) *FileSource { return &FileSource{blobs: blobs} }

func (s *FileSource) Get(ctx context.Context, id string) (question.Set, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return question.Set{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	for _, ext := range docExts {
		set, err := s.load(SetsPrefix + id + ext)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		return set, err
	}
	return question.Set{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// List skips keys that are not set documents. A document that fails to
// decode fails the whole listing.
func (s *FileSource) List(ctx context.Context) ([]Summary, error) {
	keys, err := s.blobs.List(SetsPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		if !isDoc(k) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		set, err := s.load(k)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(set))
	}
	return out, nil
}

// All loads every set document.
func (s *FileSource) All(ctx context.Context) ([]question.Set, error) {
	keys, err := s.blobs.List(SetsPrefix)
	if err != nil {
		return nil, err
	}
	var out []question.Set
	for _, k := range keys {
		if !isDoc(k) {
			continue
		}
		set, err := s.load(k)
		if err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, nil
}

// Add validates an authored document and stores it as sets/<id><ext>,
// where ext follows name (".yaml" when name has none of the known ones).
func (s *FileSource) Add(ctx context.Context, name string, b []byte) (question.Set, error) {
	if err := ctx.Err(); err != nil {
		return question.Set{}, err
	}
	set, err := Decode(b)
	if err != nil {
		return question.Set{}, fmt.Errorf("%s: %w", name, err)
	}
	if strings.ContainsAny(set.ID, `/\`) {
		return question.Set{}, fmt.Errorf("%s: %w: id %q must not contain a path separator", name, question.ErrInvalid, set.ID)
	}
	ext := path.Ext(name)
	if !isDoc(SetsPrefix + "x" + ext) {
		ext = ".yaml"
	}
	if _, err := s.blobs.Put(SetsPrefix+set.ID+ext, bytes.NewReader(b)); err != nil {
		return question.Set{}, err
	}
	return set, nil
}

func (s *FileSource) load(key string) (question.Set, error) {
	rc, err := s.blobs.Get(key)
	if err != nil {
		return question.Set{}, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return question.Set{}, err
	}
	set, err := Decode(b)
	if err != nil {
		return question.Set{}, fmt.Errorf("%s: %w", key, err)
	}
	if want := strings.TrimSuffix(path.Base(key), path.Ext(key)); set.ID != want {
		return question.Set{}, fmt.Errorf("%s: %w: id %q does not match file name", key, question.ErrInvalid, set.ID)
	}
	return set, nil
}

func isDoc(key string) bool {
	rest := strings.TrimPrefix(key, SetsPrefix)
	if strings.Contains(rest, "/") {
		return false
	}
	ext := path.Ext(key)
	for _, e := range docExts {
		if ext == e {
			return true
		}
	}
	return false
}
