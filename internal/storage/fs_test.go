package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGetList(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, k := range []string{"sets/b.yaml", "sets/a.yaml", "other/x.txt"} {
		_, err := s.Put(k, strings.NewReader("body of "+k))
		require.NoError(t, err)
	}

	rc, err := s.Get("sets/a.yaml")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "body of sets/a.yaml", string(b))

	keys, err := s.List("sets/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sets/a.yaml", "sets/b.yaml"}, keys)
}

func TestFSStore_Missing(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get("sets/none.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_KeyStaysInside(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base)
	require.NoError(t, err)
	_, err = s.Put("../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	keys, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.txt"}, keys)

	_, err = s.Put("", strings.NewReader("x"))
	assert.Error(t, err)
}
