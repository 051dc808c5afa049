package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bridge/internal/session"
)

var (
	templateSaveFlags selectionFlags
	templateCRF       string
	templateOut       string

	templateLoadFlags selectionFlags
)

// templateCmd groups the session template commands
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Save and inspect session templates",
}

var templateSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a selection as a session template",
	Args:  cobra.NoArgs,
	RunE:  saveTemplate,
}

var templateLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a session template and summarise it",
	Args:  cobra.ExactArgs(1),
	RunE:  loadTemplate,
}

func init() {
	templateSaveFlags.register(templateSaveCmd)
	templateSaveCmd.Flags().StringVar(&templateCRF, "crf", "", "CRF name (required)")
	templateSaveCmd.Flags().StringVarP(&templateOut, "out", "o", "", "Output directory (default: output.dir)")
	templateSaveCmd.MarkFlagRequired("crf")

	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateLoadCmd)
}

func saveTemplate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := templateSaveFlags.buildSession(ctx, l)
	if err != nil {
		return err
	}
	dir := templateOut
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, s.SaveName(templateCRF, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func loadTemplate(cmd *cobra.Command, args []string) error {
	name, err := session.ParseTemplateName(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	flags := templateLoadFlags
	flags.template = args[0]
	s, err := flags.buildSession(ctx, l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "CRF:       %s\n", name.CRF)
	fmt.Fprintf(out, "Version:   %s (%s)\n", s.Version(), s.Commit())
	fmt.Fprintf(out, "Language:  %s\n", s.Language())
	fmt.Fprintf(out, "Saved:     %s\n", name.Date.Format(session.DateLayout))
	fmt.Fprintf(out, "Variables: %d\n", len(s.Checked()))
	choices := s.Choices()
	for _, v := range s.Checked() {
		if labels := choices.SelectedLabels(v); len(labels) > 0 {
			fmt.Fprintf(out, "  %s: %v\n", v, labels)
		}
	}
	return nil
}
