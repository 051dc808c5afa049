package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bridge/internal/logging"
)

// GitHubOptions configures a GitHub source.
type GitHubOptions struct {
	Repository  string // owner/name
	APIBaseURL  string
	RawBaseURL  string
	Development bool   // read the branch head instead of release tags
	Branch      string // development ref
	Token       string
	Timeout     time.Duration
	Client      *http.Client
}

// NewGitHub returns a source reading the catalogue repository on GitHub.
// In production documents are read at the version's tag; in development at
// the head of Branch.
func NewGitHub(opts GitHubOptions) Source {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return layoutSource{b: &github{
		opts:   opts,
		client: client,
		api:    strings.TrimSuffix(opts.APIBaseURL, "/"),
		raw:    strings.TrimSuffix(opts.RawBaseURL, "/"),
	}}
}

type github struct {
	opts   GitHubOptions
	client *http.Client
	api    string
	raw    string

	mu   sync.Mutex
	tags map[string]string // tag name -> commit sha
}

type githubTag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type githubCommit struct {
	SHA string `json:"sha"`
}

type githubEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (g *github) name() string { return "github:" + g.opts.Repository }

func (g *github) versions(ctx context.Context) ([]string, error) {
	tags, err := g.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tags))
	for name := range tags {
		out = append(out, name)
	}
	return out, nil
}

func (g *github) loadTags(ctx context.Context) (map[string]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tags != nil {
		return g.tags, nil
	}

	tags := map[string]string{}
	for page := 1; ; page++ {
		var batch []githubTag
		u := fmt.Sprintf("%s/repos/%s/tags?per_page=100&page=%d", g.api, g.opts.Repository, page)
		if err := g.getJSON(ctx, u, &batch); err != nil {
			return nil, err
		}
		for _, t := range batch {
			tags[t.Name] = t.Commit.SHA
		}
		if len(batch) < 100 {
			break
		}
	}
	logging.SourceDebug("github %s: %d tags", g.opts.Repository, len(tags))
	g.tags = tags
	return tags, nil
}

func (g *github) commit(ctx context.Context, version string) (string, error) {
	if g.opts.Development {
		var c githubCommit
		u := fmt.Sprintf("%s/repos/%s/commits/%s", g.api, g.opts.Repository, url.PathEscape(g.opts.Branch))
		if err := g.getJSON(ctx, u, &c); err != nil {
			return "", err
		}
		return c.SHA, nil
	}
	tags, err := g.loadTags(ctx)
	if err != nil {
		return "", err
	}
	sha, ok := tags[version]
	if !ok {
		return "", fmt.Errorf("tag %s: %w", version, ErrNotFound)
	}
	return sha, nil
}

func (g *github) ref(version string) string {
	if g.opts.Development {
		return g.opts.Branch
	}
	return version
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func (g *github) read(ctx context.Context, version, p string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s/%s", g.raw, g.opts.Repository, url.PathEscape(g.ref(version)), escapePath(p))
	return g.get(ctx, u)
}

func (g *github) dirs(ctx context.Context, version, p string) ([]string, error) {
	var entries []githubEntry
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", g.api, g.opts.Repository, escapePath(p), url.QueryEscape(g.ref(version)))
	if err := g.getJSON(ctx, u, &entries); err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type == "dir" {
			out = append(out, e.Name)
		}
	}
	return out, nil
}

func (g *github) getJSON(ctx context.Context, u string, v any) error {
	body, err := g.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func (g *github) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if g.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.opts.Token)
	}
	req.Header.Set("User-Agent", "bridge")

	logging.SourceDebug("GET %s", u)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", u, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	return body, nil
}
