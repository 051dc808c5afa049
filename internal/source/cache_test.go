package source

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge/internal/store"
)

// countingSource counts document fetches and can be made to fail.
type countingSource struct {
	Source
	fetches atomic.Int32
	fail    atomic.Bool
	release chan struct{}
}

func (s *countingSource) Catalogue(ctx context.Context, version string) ([]byte, error) {
	s.fetches.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.fail.Load() {
		return nil, errors.New("offline")
	}
	return []byte("catalogue " + version), nil
}

func (s *countingSource) OptionTable(ctx context.Context, version, language, ref string) ([]byte, error) {
	s.fetches.Add(1)
	return []byte(language + ":" + ref), nil
}

func TestCached_FetchesOnce(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{Source: NewFS(mirror(), "test")}
	src := Cached(inner, NewCache(nil))

	for range 3 {
		body, err := src.Catalogue(ctx, "v1.2.1")
		require.NoError(t, err)
		assert.Equal(t, "catalogue v1.2.1", string(body))
	}
	assert.Equal(t, int32(1), inner.fetches.Load())

	_, err := src.OptionTable(ctx, "v1.2.1", "English", "a_b")
	require.NoError(t, err)
	_, err = src.OptionTable(ctx, "v1.2.1", "French", "a_b")
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.fetches.Load(), "language is part of the key")
}

func TestCached_ConcurrentMissesShareFetch(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{Source: NewFS(mirror(), "test"), release: make(chan struct{})}
	src := Cached(inner, NewCache(nil))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.Catalogue(ctx, "v1.2.1")
			assert.NoError(t, err)
		}()
	}
	assert.Eventually(t, func() bool { return inner.fetches.Load() == 1 }, time2s, tick)
	close(inner.release)
	wg.Wait()
	assert.Equal(t, int32(1), inner.fetches.Load())
}

func TestCached_FailuresAreNotStored(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{Source: NewFS(mirror(), "test")}
	cache := NewCache(nil)
	src := Cached(inner, cache)

	inner.fail.Store(true)
	_, err := src.Catalogue(ctx, "v1.2.1")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	inner.fail.Store(false)
	_, err = src.Catalogue(ctx, "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestCached_VersionsReadThrough(t *testing.T) {
	cache := NewCache(nil)
	src := Cached(NewFS(mirror(), "test"), cache)
	_, err := src.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())

	langs, err := src.Languages(context.Background(), "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "French"}, langs)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_PersistentTier(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fetch.db")

	durable, err := store.NewFetchStore(path)
	require.NoError(t, err)
	inner := &countingSource{Source: NewFS(mirror(), "test")}
	_, err = Cached(inner, NewCache(durable)).Catalogue(ctx, "v1.2.1")
	require.NoError(t, err)
	require.NoError(t, durable.Close())

	durable, err = store.NewFetchStore(path)
	require.NoError(t, err)
	defer durable.Close()
	body, err := Cached(inner, NewCache(durable)).Catalogue(ctx, "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, "catalogue v1.2.1", string(body))
	assert.Equal(t, int32(1), inner.fetches.Load(), "second process reads the persisted copy")
}

func TestCache_EvictVersion(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil)
	src := Cached(&countingSource{Source: NewFS(mirror(), "test")}, cache)
	for _, v := range []string{"v1.2.1", "v1.1.0"} {
		_, err := src.Catalogue(ctx, v)
		require.NoError(t, err)
		_, err = src.OptionTable(ctx, v, "English", "a_b")
		require.NoError(t, err)
	}
	require.Equal(t, 4, cache.Len())

	n, err := cache.EvictVersion("v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Clear())
	assert.Equal(t, 0, cache.Len())
}
