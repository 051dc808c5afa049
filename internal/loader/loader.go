// Package loader assembles a session-ready catalogue for one (version,
// language): fetch, parse, derive, translate, then expand lists.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"bridge/internal/arc"
	"bridge/internal/branch"
	"bridge/internal/lists"
	"bridge/internal/logging"
	"bridge/internal/phrases"
	"bridge/internal/source"
	"bridge/internal/units"
)

// DefaultParallelism bounds concurrent option-table fetches when none is set.
const DefaultParallelism = 8

// Loader reads catalogues from a source.
type Loader struct {
	src         source.Source
	parallelism int
}

// New returns a loader over src fetching at most parallelism option
// tables at once.
func New(src source.Source, parallelism int) *Loader {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Loader{src: src, parallelism: parallelism}
}

// Loaded is the output of Load. Nothing is shared with the loader, so a
// Loaded value can be handed to a session as is.
type Loaded struct {
	Catalogue *arc.Catalogue
	Presets   []arc.Preset
	Commit    string
	Choices   lists.Choices
	Phrases   phrases.Pair
	Rules     units.Rules
}

// Versions returns the supported versions of the source, newest first.
func (l *Loader) Versions(ctx context.Context) ([]string, error) {
	tags, err := l.src.Versions(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, v := range arc.SortVersionsDesc(tags) {
		if arc.CompareVersions(v, arc.OldestSupportedVersion) >= 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// Latest returns the newest supported version.
func (l *Loader) Latest(ctx context.Context) (string, error) {
	versions, err := l.Versions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", arc.Unavailable("list versions", "", errors.New("no supported versions"))
	}
	return versions[0], nil
}

// Languages returns the languages available for version that the phrase
// dictionary also supports.
func (l *Loader) Languages(ctx context.Context, version string) ([]string, error) {
	langs, err := l.src.Languages(ctx, version)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, lang := range langs {
		if _, err := phrases.For(lang); err != nil {
			logging.LoaderDebug("%s: no phrase dictionary for %s, skipping", version, lang)
			continue
		}
		out = append(out, lang)
	}
	return out, nil
}

// Load fetches and assembles the catalogue of version in language.
// On any error, including cancellation, no partial result is returned.
func (l *Loader) Load(ctx context.Context, version, language string) (*Loaded, error) {
	timer := logging.StartTimer(logging.CategoryLoader, "Load")
	defer timer.Stop()

	if language == "" || strings.EqualFold(language, phrases.English) {
		language = phrases.English
	}
	rules, err := units.RulesFor(version)
	if err != nil {
		return nil, err
	}
	ph, err := phrases.PairFor(language)
	if err != nil {
		return nil, err
	}

	commit, err := l.src.Commit(ctx, version)
	if err != nil {
		return nil, err
	}
	base, err := l.readCatalogue(ctx, version)
	if err != nil {
		return nil, err
	}
	base.Version = version
	base.Language = phrases.English
	base.Commit = commit

	cat, err := l.translate(ctx, base, version, language)
	if err != nil {
		return nil, err
	}
	cat = arc.Derive(cat)

	tables, err := l.optionTables(ctx, cat, version, cat.Language)
	if err != nil {
		return nil, err
	}
	cat, choices, err := lists.Expand(cat, tables, ph)
	if err != nil {
		return nil, err
	}
	cat = branch.RewriteAll(cat)

	if err := arc.VerifyDependencies("loader", cat.Rows); err != nil {
		return nil, err
	}
	if err := arc.VerifyOptions("loader", cat.Rows); err != nil {
		return nil, err
	}
	if err := lists.Verify(cat, choices); err != nil {
		return nil, err
	}

	logging.Loader("loaded ARC %s (%s, %s): %d rows, %d lists, epoch %s",
		version, cat.Language, commit, len(cat.Rows), len(choices), rules.Epoch())
	return &Loaded{
		Catalogue: cat,
		Presets:   cat.Presets(),
		Commit:    commit,
		Choices:   choices,
		Phrases:   ph,
		Rules:     rules,
	}, nil
}

func (l *Loader) readCatalogue(ctx context.Context, version string) (*arc.Catalogue, error) {
	body, err := l.src.Catalogue(ctx, version)
	if err != nil {
		return nil, err
	}
	cat, err := arc.ReadCatalogue(bytes.NewReader(body))
	if err != nil {
		return nil, arc.Unavailable("parse", source.CataloguePath()+"@"+version, err)
	}
	return cat, nil
}

func (l *Loader) translate(ctx context.Context, base *arc.Catalogue, version, language string) (*arc.Catalogue, error) {
	if language == phrases.English {
		return branch.Overlay(base, nil, language)
	}
	langs, err := l.src.Languages(ctx, version)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(langs, func(l string) bool { return strings.EqualFold(l, language) })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s has no %s translation", arc.ErrLanguageNotSupported, version, language)
	}
	language = langs[i]
	body, err := l.src.Translation(ctx, version, language)
	if err != nil {
		return nil, err
	}
	overlay, err := arc.ReadCatalogue(bytes.NewReader(body))
	if err != nil {
		return nil, arc.Unavailable("parse", source.TranslationPath(language)+"@"+version, err)
	}
	return branch.Overlay(base, overlay, language)
}

// listRefs returns the distinct list references of cat's list parents.
func listRefs(cat *arc.Catalogue) []string {
	var refs []string
	for _, r := range cat.Rows {
		if !r.IsParent() {
			continue
		}
		switch r.Type {
		case arc.TypeList, arc.TypeUserList, arc.TypeMultiList:
			if r.List != "" && !slices.Contains(refs, r.List) {
				refs = append(refs, r.List)
			}
		}
	}
	return refs
}

// optionTables fetches every referenced option table concurrently. A
// translated table missing from the source falls back to English.
func (l *Loader) optionTables(ctx context.Context, cat *arc.Catalogue, version, language string) (lists.Tables, error) {
	refs := listRefs(cat)
	tables := make(lists.Tables, len(refs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for _, ref := range refs {
		g.Go(func() error {
			rows, err := l.optionTable(gctx, version, language, ref)
			if err != nil {
				return err
			}
			mu.Lock()
			tables[ref] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.LoaderDebug("%s: fetched %d option tables", version, len(tables))
	return tables, nil
}

func (l *Loader) optionTable(ctx context.Context, version, language, ref string) ([]arc.OptionRow, error) {
	body, err := l.src.OptionTable(ctx, version, language, ref)
	if errors.Is(err, source.ErrNotFound) && language != phrases.English {
		logging.LoaderDebug("%s: no %s table for %s, using English", version, language, ref)
		body, err = l.src.OptionTable(ctx, version, phrases.English, ref)
	}
	if err != nil {
		return nil, err
	}
	rows, err := arc.ReadOptionTable(bytes.NewReader(body))
	if err != nil {
		return nil, arc.Unavailable("parse", source.ListPath(language, ref)+"@"+version, err)
	}
	return rows, nil
}
