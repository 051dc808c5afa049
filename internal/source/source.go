// Package source fetches raw ARC documents: the version list, commits,
// variable tables, translations and list option tables. Implementations
// read from GitHub, a local mirror or an S3 mirror; all share one
// repository layout.
package source

import (
	"context"
	"errors"
	"path"
	"strings"

	"bridge/internal/arc"
)

// ErrNotFound marks a document missing from the source. It is always
// wrapped in an arc.UnavailableError; the loader uses it to fall back from
// a translated option table to the English one.
var ErrNotFound = errors.New("document not found")

// English is the language of the untranslated repository root.
const English = "English"

// Source is the catalogue source capability.
type Source interface {
	// Versions lists release tags, in no particular order.
	Versions(ctx context.Context) ([]string, error)
	// Commit returns the commit a version's documents are read from.
	Commit(ctx context.Context, version string) (string, error)
	// Languages lists the languages available for version, English included.
	Languages(ctx context.Context, version string) ([]string, error)
	// Catalogue returns the English variable table.
	Catalogue(ctx context.Context, version string) ([]byte, error)
	// Translation returns the translated variable overlay of language.
	Translation(ctx context.Context, version, language string) ([]byte, error)
	// OptionTable returns the option table of a list reference in language.
	OptionTable(ctx context.Context, version, language, ref string) ([]byte, error)
}

// Repository layout.
const (
	cataloguePath   = "ARC.csv"
	translationsDir = "Translations"
	listsDir        = "Lists"
)

// CataloguePath is the path of the English variable table.
func CataloguePath() string { return cataloguePath }

// TranslationPath is the path of a translated variable table.
func TranslationPath(language string) string {
	return path.Join(translationsDir, language, "ARC_"+language+".csv")
}

// ListPath is the path of the option table for ref ("{dir}_{Name}") in
// language.
func ListPath(language, ref string) string {
	dir, name, ok := strings.Cut(ref, "_")
	if !ok {
		dir, name = ref, ref
	}
	if language == "" || strings.EqualFold(language, English) {
		return path.Join(listsDir, dir, name+".csv")
	}
	return path.Join(translationsDir, language, listsDir, dir, name+".csv")
}

// TranslationsDir is the directory holding one child per translation.
func TranslationsDir() string { return translationsDir }

// backend is the transport a layoutSource reads through.
type backend interface {
	name() string
	versions(ctx context.Context) ([]string, error)
	commit(ctx context.Context, version string) (string, error)
	read(ctx context.Context, version, p string) ([]byte, error)
	// dirs lists the child directories of p.
	dirs(ctx context.Context, version, p string) ([]string, error)
}

// layoutSource implements Source over a backend.
type layoutSource struct {
	b backend
}

func (s layoutSource) Versions(ctx context.Context) ([]string, error) {
	v, err := s.b.versions(ctx)
	return v, arc.Unavailable("list versions", s.b.name(), err)
}

func (s layoutSource) Commit(ctx context.Context, version string) (string, error) {
	c, err := s.b.commit(ctx, version)
	return c, arc.Unavailable("resolve commit", s.b.name()+"@"+version, err)
}

func (s layoutSource) Languages(ctx context.Context, version string) ([]string, error) {
	dirs, err := s.b.dirs(ctx, version, translationsDir)
	if errors.Is(err, ErrNotFound) {
		return []string{English}, nil
	}
	if err != nil {
		return nil, arc.Unavailable("list languages", s.b.name()+"@"+version, err)
	}
	out := []string{English}
	for _, d := range dirs {
		if d != English {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s layoutSource) Catalogue(ctx context.Context, version string) ([]byte, error) {
	return s.fetch(ctx, version, cataloguePath)
}

func (s layoutSource) Translation(ctx context.Context, version, language string) ([]byte, error) {
	return s.fetch(ctx, version, TranslationPath(language))
}

func (s layoutSource) OptionTable(ctx context.Context, version, language, ref string) ([]byte, error) {
	return s.fetch(ctx, version, ListPath(language, ref))
}

func (s layoutSource) fetch(ctx context.Context, version, p string) ([]byte, error) {
	body, err := s.b.read(ctx, version, p)
	if err != nil {
		return nil, arc.Unavailable("fetch", s.b.name()+"@"+version+":"+p, err)
	}
	return body, nil
}
