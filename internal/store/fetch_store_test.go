package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FetchStore {
	t.Helper()
	s, err := NewFetchStore(filepath.Join(t.TempDir(), "cache", "fetch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFetchStore_PutIfAbsent(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get("catalogue/v1.2.1//")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("catalogue/v1.2.1//", []byte("first")))
	require.NoError(t, s.Put("catalogue/v1.2.1//", []byte("second")))

	body, ok, err := s.Get("catalogue/v1.2.1//")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", string(body), "entries are read-only after the first write")
}

func TestFetchStore_EvictAndClear(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"options/v1.2.1/English/a_b", "options/v1.2.1/French/a_b", "options/v1.2.0/English/a_b", "options/v1_2_1x"} {
		require.NoError(t, s.Put(k, []byte(k)))
	}

	n, err := s.Evict("options/v1.2.1/")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.Evict("options/v1_")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "underscore is matched literally")

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Clear())
	count, err = s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFetchStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetch.db")
	s, err := NewFetchStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = NewFetchStore(path)
	require.NoError(t, err)
	defer s.Close()
	body, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(body))
	assert.Equal(t, path, s.Path())
}
