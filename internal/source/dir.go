package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	"bridge/internal/arc"
)

// CommitFile holds the commit a mirrored version was taken from.
const CommitFile = "COMMIT"

// NewDir returns a source over a local mirror laid out as
// {root}/{version}/{repository layout}.
func NewDir(root string) Source {
	return NewFS(os.DirFS(root), "dir:"+root)
}

// NewFS returns a source over fsys, which holds one directory per version.
func NewFS(fsys fs.FS, name string) Source {
	return layoutSource{b: &fsBackend{fsys: fsys, label: name}}
}

type fsBackend struct {
	fsys  fs.FS
	label string
}

func (f *fsBackend) name() string { return f.label }

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(err, ErrNotFound)
	}
	return err
}

func (f *fsBackend) versions(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(f.fsys, ".")
	if err != nil {
		return nil, notFound(err)
	}
	var out []string
	for _, e := range entries {
		if _, ok := arc.CanonicalVersion(e.Name()); e.IsDir() && ok {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (f *fsBackend) commit(ctx context.Context, version string) (string, error) {
	if _, err := fs.Stat(f.fsys, version); err != nil {
		return "", notFound(err)
	}
	b, err := fs.ReadFile(f.fsys, path.Join(version, CommitFile))
	if errors.Is(err, fs.ErrNotExist) {
		return version, nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *fsBackend) read(ctx context.Context, version, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(f.fsys, path.Join(version, p))
	return b, notFound(err)
}

func (f *fsBackend) dirs(ctx context.Context, version, p string) ([]string, error) {
	entries, err := fs.ReadDir(f.fsys, path.Join(version, p))
	if err != nil {
		return nil, notFound(err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
