// Package tree builds the form / section / variable hierarchy shown to the
// user for picking variables.
package tree

import (
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
	"bridge/internal/units"
)

// RootKey is the key of the root node.
const RootKey = "ARC"

// Title prefixes of list leaves.
const (
	UserListPrefix  = "↳ "
	MultiListPrefix = "⇉ "
)

// hiddenMods are modifiers never offered for picking; they follow their
// parent in.
var hiddenMods = map[string]bool{
	"otherl3": true, "otherl2": true, "route": true, "route2": true,
	"agent": true, "agent2": true, "warn": true, "warn2": true, "warn3": true,
	"add": true, "vol": true, "txt": true, "calc": true,
}

// Node is a tree node. Leaf keys are variable keys.
type Node struct {
	Title    string  `json:"title"`
	Key      string  `json:"key"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Hidden reports whether r is left out of the tree.
func Hidden(r arc.Row, rules units.Rules) bool {
	if hiddenMods[r.Mod] {
		return true
	}
	return rules.Epoch() == arc.EpochDynamicUnits && r.Mod == units.ModUnits
}

type groupKey struct{ form, section, vari string }

// Build returns the tree of cat: root, forms, sections, then variables, with
// variable groups of three or more rows and units groups nested one level
// deeper.
func Build(cat *arc.Catalogue, rules units.Rules) *Node {
	root := &Node{Title: cat.Version, Key: RootKey}
	forms := map[string]*Node{}
	sections := map[string]*Node{}
	var order []groupKey
	groups := map[groupKey][]arc.Row{}

	for _, r := range cat.Rows {
		if Hidden(r, rules) {
			continue
		}
		k := groupKey{form: r.Form, section: sectionName(r), vari: r.Vari}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	for _, k := range order {
		formKey := strings.ToUpper(k.form)
		form, ok := forms[formKey]
		if !ok {
			form = &Node{Title: k.form, Key: formKey}
			forms[formKey] = form
			root.Children = append(root.Children, form)
		}
		sectionKey := formKey + "-" + strings.ToUpper(k.section)
		section, ok := sections[sectionKey]
		if !ok {
			section = &Node{Title: k.section, Key: sectionKey}
			sections[sectionKey] = section
			form.Children = append(form.Children, section)
		}
		section.Children = append(section.Children, groupNodes(sectionKey, k.vari, groups[k], rules)...)
	}
	logging.TreeDebug("built tree for %s: %d forms", cat.Version, len(root.Children))
	return root
}

func sectionName(r arc.Row) string {
	if r.SecName != "" {
		return r.SecName
	}
	return r.Section
}

func groupNodes(sectionKey, vari string, rows []arc.Row, rules units.Rules) []*Node {
	prefix := sectionKey + "-VARI-" + vari
	for _, r := range rows {
		if !rules.IsUnitsParent(r) {
			continue
		}
		var out []*Node
		for _, o := range rows {
			switch {
			case o.Variable == r.Variable:
				node := &Node{Title: r.Question, Key: prefix + "-UNITS"}
				for _, u := range rows {
					if u.SecVari() == r.SecVari() && u.Mod != "" && u.Mod != units.ModUnits {
						node.Children = append(node.Children, leaf(u))
					}
				}
				out = append(out, node)
			case o.SecVari() == r.SecVari() && o.Mod != "" && o.Mod != units.ModUnits:
			default:
				out = append(out, leaf(o))
			}
		}
		return out
	}

	if len(rows) >= 3 {
		node := &Node{Title: rows[0].Question + " (Group)", Key: prefix + "-GROUP"}
		for _, r := range rows {
			node.Children = append(node.Children, leaf(r))
		}
		return []*Node{node}
	}
	out := make([]*Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, leaf(r))
	}
	return out
}

func leaf(r arc.Row) *Node {
	title := r.Question
	switch r.Type {
	case arc.TypeUserList:
		title = UserListPrefix + title
	case arc.TypeMultiList:
		title = MultiListPrefix + title
	}
	return &Node{Title: title, Key: r.Variable}
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Leaves returns the keys of every leaf under n, in order.
func Leaves(n *Node) []string {
	var out []string
	Walk(n, func(c *Node, _ int) bool {
		if c.IsLeaf() && c != n {
			out = append(out, c.Key)
		}
		return true
	})
	return out
}

// Find returns the node with key.
func Find(n *Node, key string) (*Node, bool) {
	var found *Node
	Walk(n, func(c *Node, _ int) bool {
		if found != nil {
			return false
		}
		if c.Key == key {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// Text renders the tree as indented lines, marking checked leaves.
func Text(n *Node, checked map[string]bool) string {
	var b strings.Builder
	Walk(n, func(c *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		if c.IsLeaf() && depth > 0 {
			if checked[c.Key] {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		}
		b.WriteString(c.Title)
		if c.IsLeaf() && depth > 0 {
			b.WriteString("  (" + c.Key + ")")
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
