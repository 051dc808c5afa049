package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bridge/internal/tree"
)

var (
	treeFlags selectionFlags
	treePlain bool
)

// treeCmd prints the catalogue tree
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the catalogue as a form/section/variable tree",
	Long: `Prints the tree a picker would show. Variables checked through --preset,
--var or --template are marked.`,
	Args: cobra.NoArgs,
	RunE: printTree,
}

func init() {
	treeFlags.register(treeCmd)
	treeCmd.Flags().BoolVar(&treePlain, "plain", false, "Print without colour")
}

func printTree(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	l, h, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := treeFlags.buildSession(ctx, l)
	if err != nil {
		return err
	}
	root := tree.Build(s.Catalogue(), s.Loaded().Rules)
	checked := map[string]bool{}
	for _, v := range s.Checked() {
		checked[v] = true
	}
	if treePlain {
		fmt.Fprint(cmd.OutOrStdout(), tree.Text(root, checked))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTree(root, checked, defaultTreeStyles()))
	return nil
}
