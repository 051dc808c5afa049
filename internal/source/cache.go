package source

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"bridge/internal/logging"
)

// Persistent is a durable tier behind the in-memory cache.
// store.FetchStore satisfies it.
type Persistent interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, body []byte) error
	Evict(prefix string) (int64, error)
	Clear() error
}

// Cache memoises fetched documents. Concurrent misses on one key share a
// single fetch. Failed fetches are never stored.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	durable Persistent
	group   singleflight.Group
}

// NewCache returns a cache; durable may be nil.
func NewCache(durable Persistent) *Cache {
	return &Cache{entries: make(map[string][]byte), durable: durable}
}

// Key builds the cache key of a document.
func Key(kind, version, language, ref string) string {
	return strings.Join([]string{kind, version, language, ref}, "/")
}

// VersionPrefix returns the key prefix matching every document of version.
func VersionPrefix(kind, version string) string {
	return kind + "/" + version + "/"
}

// Get returns the cached body for key, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	if body, ok := c.lookup(key); ok {
		return body, nil
	}
	v, err, shared := c.group.Do(key, func() (any, error) {
		if body, ok := c.lookup(key); ok {
			return body, nil
		}
		body, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.CacheDebug("shared fetch for %s", key)
	}
	return v.([]byte), nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	body, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return body, true
	}
	if c.durable == nil {
		return nil, false
	}
	body, ok, err := c.durable.Get(key)
	if err != nil {
		logging.CacheWarn("persistent cache read %s: %v", key, err)
		return nil, false
	}
	if ok {
		c.mu.Lock()
		c.entries[key] = body
		c.mu.Unlock()
	}
	return body, ok
}

func (c *Cache) store(key string, body []byte) {
	c.mu.Lock()
	c.entries[key] = body
	c.mu.Unlock()
	if c.durable != nil {
		if err := c.durable.Put(key, body); err != nil {
			logging.CacheWarn("persistent cache write %s: %v", key, err)
		}
	}
}

// Evict drops every entry whose key starts with prefix.
func (c *Cache) Evict(prefix string) (int, error) {
	c.mu.Lock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	c.mu.Unlock()
	if c.durable != nil {
		m, err := c.durable.Evict(prefix)
		if err != nil {
			return n, err
		}
		n = max(n, int(m))
	}
	logging.Cache("evicted %d entries under %q", n, prefix)
	return n, nil
}

// Clear drops every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	if c.durable != nil {
		return c.durable.Clear()
	}
	return nil
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Document kinds used in cache keys.
const (
	kindCatalogue   = "catalogue"
	kindTranslation = "translation"
	kindOptions     = "options"
	kindLanguages   = "languages"
)

// Cached wraps src so immutable documents are fetched once. Versions and
// commits are always read through, since tags and branch heads move.
func Cached(src Source, cache *Cache) Source {
	return cachedSource{src: src, cache: cache}
}

type cachedSource struct {
	src   Source
	cache *Cache
}

func (s cachedSource) Versions(ctx context.Context) ([]string, error) {
	return s.src.Versions(ctx)
}

func (s cachedSource) Commit(ctx context.Context, version string) (string, error) {
	return s.src.Commit(ctx, version)
}

func (s cachedSource) Languages(ctx context.Context, version string) ([]string, error) {
	body, err := s.cache.Get(ctx, Key(kindLanguages, version, "", ""), func(ctx context.Context) ([]byte, error) {
		langs, err := s.src.Languages(ctx, version)
		if err != nil {
			return nil, err
		}
		return json.Marshal(langs)
	})
	if err != nil {
		return nil, err
	}
	var langs []string
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

func (s cachedSource) Catalogue(ctx context.Context, version string) ([]byte, error) {
	return s.cache.Get(ctx, Key(kindCatalogue, version, English, ""), func(ctx context.Context) ([]byte, error) {
		return s.src.Catalogue(ctx, version)
	})
}

func (s cachedSource) Translation(ctx context.Context, version, language string) ([]byte, error) {
	return s.cache.Get(ctx, Key(kindTranslation, version, language, ""), func(ctx context.Context) ([]byte, error) {
		return s.src.Translation(ctx, version, language)
	})
}

func (s cachedSource) OptionTable(ctx context.Context, version, language, ref string) ([]byte, error) {
	return s.cache.Get(ctx, Key(kindOptions, version, language, ref), func(ctx context.Context) ([]byte, error) {
		return s.src.OptionTable(ctx, version, language, ref)
	})
}

// EvictVersion drops every cached document of version.
func (c *Cache) EvictVersion(version string) (int, error) {
	total := 0
	for _, kind := range []string{kindCatalogue, kindTranslation, kindOptions, kindLanguages} {
		n, err := c.Evict(VersionPrefix(kind, version))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
