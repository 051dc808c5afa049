package main

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"bridge/internal/guide"
)

var (
	guideFlags selectionFlags
	guideCRF   string
	guideRaw   bool
	guideWidth int
)

// guideCmd renders the completion guide in the terminal
var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Render the completion guide of a selection",
	Args:  cobra.NoArgs,
	RunE:  showGuide,
}

func init() {
	guideFlags.register(guideCmd)
	guideCmd.Flags().StringVar(&guideCRF, "crf", "CRF", "CRF name used in the guide header")
	guideCmd.Flags().BoolVar(&guideRaw, "raw", false, "Print the Markdown source")
	guideCmd.Flags().IntVar(&guideWidth, "width", 100, "Word-wrap width")
}

func showGuide(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := guideFlags.buildSession(ctx, l)
	if err != nil {
		return err
	}
	res, err := s.Resolve()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := guide.Write(&buf, guideCRF, res.Catalogue); err != nil {
		return err
	}
	if guideRaw {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(guideWidth),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(buf.String())
	if err != nil {
		return fmt.Errorf("failed to render guide: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
