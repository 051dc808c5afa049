package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bridge/internal/tree"
)

// treeStyles styles the printed catalogue tree.
type treeStyles struct {
	Root    lipgloss.Style
	Form    lipgloss.Style
	Section lipgloss.Style
	Group   lipgloss.Style
	Checked lipgloss.Style
	Leaf    lipgloss.Style
	Key     lipgloss.Style
}

func defaultTreeStyles() treeStyles {
	return treeStyles{
		Root:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Form:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Section: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Group:   lipgloss.NewStyle().Italic(true),
		Checked: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Leaf:    lipgloss.NewStyle(),
		Key:     lipgloss.NewStyle().Faint(true),
	}
}

// renderTree prints n with checked leaves highlighted.
func renderTree(n *tree.Node, checked map[string]bool, st treeStyles) string {
	var b strings.Builder
	tree.Walk(n, func(c *tree.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		switch {
		case depth == 0:
			b.WriteString(st.Root.Render(c.Title))
		case depth == 1:
			b.WriteString(st.Form.Render(c.Title))
		case depth == 2:
			b.WriteString(st.Section.Render(c.Title))
		case !c.IsLeaf():
			b.WriteString(st.Group.Render(c.Title))
		case checked[c.Key]:
			b.WriteString(st.Checked.Render("[x] " + c.Title))
			b.WriteString(" " + st.Key.Render(c.Key))
		default:
			b.WriteString(st.Leaf.Render("[ ] " + c.Title))
			b.WriteString(" " + st.Key.Render(c.Key))
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
