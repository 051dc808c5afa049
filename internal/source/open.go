package source

import (
	"context"
	"fmt"

	"bridge/internal/config"
	"bridge/internal/logging"
	"bridge/internal/store"
)

// Handle is an opened source with its cache.
type Handle struct {
	Source Source
	Cache  *Cache // nil when caching is disabled

	durable *store.FetchStore
}

// Open builds the source described by cfg. A local mirror wins over S3,
// which wins over GitHub. When cfg.Source.Watch is set the local mirror is
// watched until ctx is done.
func Open(ctx context.Context, cfg *config.Config) (*Handle, error) {
	var (
		src Source
		err error
	)
	switch {
	case cfg.Source.LocalDir != "":
		logging.Source("using local mirror %s", cfg.Source.LocalDir)
		src = NewDir(cfg.Source.LocalDir)
	case cfg.Source.S3.Bucket != "":
		logging.Source("using S3 mirror %s/%s", cfg.Source.S3.Bucket, cfg.Source.S3.Prefix)
		src, err = NewS3(cfg.Source.S3.Region, cfg.Source.S3.Bucket, cfg.Source.S3.Prefix)
		if err != nil {
			return nil, err
		}
	default:
		logging.Source("using GitHub repository %s (%s)", cfg.Source.Repository, cfg.Source.Mode)
		src = NewGitHub(GitHubOptions{
			Repository:  cfg.Source.Repository,
			APIBaseURL:  cfg.Source.APIBaseURL,
			RawBaseURL:  cfg.Source.RawBaseURL,
			Development: cfg.IsDevelopment(),
			Branch:      cfg.Source.Branch,
			Token:       cfg.Source.Token,
			Timeout:     cfg.GetSourceTimeout(),
		})
	}

	h := &Handle{Source: src}
	if !cfg.Cache.Enabled {
		return h, nil
	}

	var durable Persistent
	if cfg.Cache.Path != "" {
		h.durable, err = store.NewFetchStore(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		durable = h.durable
	}
	h.Cache = NewCache(durable)
	h.Source = Cached(src, h.Cache)

	if cfg.Source.Watch && cfg.Source.LocalDir != "" {
		if err := WatchDir(ctx, cfg.Source.LocalDir, h.Cache); err != nil {
			h.Close()
			return nil, err
		}
	}
	return h, nil
}

// Close releases the persistent cache.
func (h *Handle) Close() error {
	if h.durable == nil {
		return nil
	}
	return h.durable.Close()
}
