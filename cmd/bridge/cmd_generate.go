package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bridge/internal/bundle"
)

var (
	resolveFlags selectionFlags

	generateFlags selectionFlags
	generateCRF   string
	generateOut   string
	generateZip   bool
)

// resolveCmd shows the resolved selection
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a selection and list the variables it expands to",
	Args:  cobra.NoArgs,
	RunE:  runResolve,
}

// generateCmd writes every artefact of a CRF
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the data dictionary, paper form, guide and bundle of a CRF",
	Long: `Resolves the selection and writes, under --out:
  {crf}_DataDictionary.csv   REDCap data dictionary
  {crf}_paper.json           paper-form layout
  {crf}_guide.md             completion guide
  template_...csv            session template (reload with --template)
  {crf}_{version}_bundle.zip all of the above behind a manifest`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	resolveFlags.register(resolveCmd)

	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVar(&generateCRF, "crf", "", "CRF name (required)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output directory (default: output.dir)")
	generateCmd.Flags().BoolVar(&generateZip, "bundle", true, "Also write the configuration bundle")
	generateCmd.MarkFlagRequired("crf")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := resolveFlags.buildSession(ctx, l)
	if err != nil {
		return err
	}
	res, err := s.Resolve()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tTYPE\tQUESTION")
	for _, r := range res.Catalogue.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Variable, r.Type, r.Question)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	if len(res.Unknown) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "ignored unknown variables:", res.Unknown)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := generateFlags.buildSession(ctx, l)
	if err != nil {
		return err
	}
	a, err := s.Generate(generateCRF, cfg.Paper.TableWidth)
	if err != nil {
		return err
	}

	dir := generateOut
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	templateName := s.SaveName(generateCRF, a.Generated)
	files := a.Files(templateName)
	if generateZip {
		var buf bytes.Buffer
		m := bundle.NewManifest(generateCRF, a.Result.Catalogue, s.Presets(), a.Generated)
		bundled := a.Files(templateName)
		delete(bundled, templateName)
		if err := bundle.Write(&buf, m, bundled); err != nil {
			return err
		}
		files[bundle.FileName(generateCRF, s.Version())] = buf.Bytes()
	}
	return writeFiles(cmd, dir, files)
}

func writeFiles(cmd *cobra.Command, dir string, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
