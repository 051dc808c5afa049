package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// versionsCmd lists the supported catalogue versions
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List supported ARC versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  listVersions,
}

// languagesCmd lists the languages of a version
var languagesCmd = &cobra.Command{
	Use:   "languages [version]",
	Short: "List the languages available for a version (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listLanguages,
}

// presetsCmd lists the presets of a version
var presetsCmd = &cobra.Command{
	Use:   "presets [version]",
	Short: "List the presets (templates) of a version (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listPresets,
}

func listVersions(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	versions, err := l.Versions(ctx)
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}

func listLanguages(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	version := ""
	if len(args) == 1 {
		version = args[0]
	}
	if version, err = resolveVersion(ctx, l, version); err != nil {
		return err
	}
	langs, err := l.Languages(ctx, version)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		fmt.Fprintln(cmd.OutOrStdout(), lang)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	version := ""
	if len(args) == 1 {
		version = args[0]
	}
	if version, err = resolveVersion(ctx, l, version); err != nil {
		return err
	}
	loaded, err := l.Load(ctx, version, "")
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tNAME\tVARIABLES")
	for _, p := range loaded.Presets {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Group, p.Name, len(loaded.Catalogue.PresetVariables(p.Column)))
	}
	return tw.Flush()
}
