package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bridge/internal/arc"
	"bridge/internal/loader"
	"bridge/internal/logging"
	"bridge/internal/session"
)

// selectionFlags describe which catalogue to load and what to check in it.
type selectionFlags struct {
	version  string
	language string
	presets  []string
	vars     []string
	choices  []string
	template string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.version, "version", "", "ARC version (default: latest)")
	cmd.Flags().StringVar(&f.language, "language", "English", "Catalogue language")
	cmd.Flags().StringArrayVar(&f.presets, "preset", nil, "Preset to check, as group/name (repeatable)")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Variable to check (repeatable)")
	cmd.Flags().StringArrayVar(&f.choices, "choice", nil, "List selection, as variable=label|label (repeatable)")
	cmd.Flags().StringVar(&f.template, "template", "", "Session template to start from")
}

// resolveVersion returns version, or the newest supported version when empty.
func resolveVersion(ctx context.Context, l *loader.Loader, version string) (string, error) {
	if version != "" {
		v, ok := arc.CanonicalVersion(version)
		if !ok {
			return "", fmt.Errorf("%w: %q is not a version", arc.ErrUnsupportedSchemaEpoch, version)
		}
		return v, nil
	}
	return l.Latest(ctx)
}

// buildSession loads the catalogue and applies the template, presets,
// variables and choices in that order.
func (f *selectionFlags) buildSession(ctx context.Context, l *loader.Loader) (*session.Session, error) {
	version, language := f.version, f.language
	if f.template != "" {
		name, err := session.ParseTemplateName(f.template)
		if err != nil {
			return nil, err
		}
		if version == "" {
			version = name.Version
		}
		if language == "" || strings.EqualFold(language, "English") {
			language = name.Language
		}
	}
	version, err := resolveVersion(ctx, l, version)
	if err != nil {
		return nil, err
	}
	loaded, err := l.Load(ctx, version, language)
	if err != nil {
		return nil, err
	}
	s := session.New(loaded)

	if f.template != "" {
		file, err := os.Open(f.template)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		if err := s.Upload(f.template, file); err != nil {
			return nil, err
		}
	}
	for _, p := range f.presets {
		group, name, _ := strings.Cut(p, "/")
		if err := s.ApplyPreset(group, name); err != nil {
			return nil, err
		}
	}
	if err := s.Check(f.vars...); err != nil {
		return nil, err
	}
	for _, c := range f.choices {
		variable, labels, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("--choice %q: want variable=label|label", c)
		}
		var selected []string
		if labels != "" {
			selected = strings.Split(labels, "|")
		}
		if err := s.SetChoices(strings.TrimSpace(variable), selected); err != nil {
			return nil, err
		}
	}
	logging.SessionDebug("session %s: %d variables checked", s.ID(), len(s.Checked()))
	return s, nil
}
