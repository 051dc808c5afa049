// Package selection turns a set of checked variables into the ordered,
// closed sub-catalogue that the emitters consume.
package selection

import (
	"slices"

	"bridge/internal/arc"
	"bridge/internal/branch"
	"bridge/internal/lists"
	"bridge/internal/logging"
	"bridge/internal/phrases"
	"bridge/internal/units"
)

// IncludeNotShow are the sibling suffixes pulled in with a variable even
// though the picker never shows them.
var IncludeNotShow = []string{
	"otherl2", "otherl3", "agent", "agent2", "warn", "warn2", "warn3",
	"units", "add", "vol", "txt",
	"0item", "1item", "2item", "3item", "4item",
	"0otherl2", "1otherl2", "2otherl2", "3otherl2", "4otherl2",
	"0addi", "1addi", "2addi", "3addi", "4addi",
}

// Result is a resolved selection.
type Result struct {
	// Checked is the checked set after units normalisation.
	Checked []string
	// Catalogue holds the resolved rows in catalogue order.
	Catalogue *arc.Catalogue
	// Deleted lists unit rows replaced by a synthesised pair.
	Deleted []string
	// Unknown lists checked keys absent from the catalogue.
	Unknown  []string
	Warnings []string
}

// Variables returns the resolved variable keys in order.
func (r *Result) Variables() []string { return r.Catalogue.Variables() }

// Contains reports whether variable is in the resolved selection.
func (r *Result) Contains(variable string) bool {
	return slices.Contains(r.Variables(), variable)
}

// Resolve closes checked over dependencies, parents and hidden siblings,
// applies the choice state and collapses units groups. cat is the full
// catalogue of the session and is not modified.
func Resolve(checked []string, cat *arc.Catalogue, choices lists.Choices, ph phrases.Pair) (*Result, error) {
	timer := logging.StartTimer(logging.CategorySelection, "Resolve")
	defer timer.Stop()

	rules, err := units.RulesFor(cat.Version)
	if err != nil {
		return nil, err
	}
	res := &Result{}

	var known []string
	for _, v := range checked {
		if cat.Has(v) {
			known = append(known, v)
		} else {
			res.Unknown = append(res.Unknown, v)
		}
	}
	if len(res.Unknown) > 0 {
		logging.SelectionDebug("ignoring %d unknown checked variables: %v", len(res.Unknown), res.Unknown)
	}
	res.Checked = rules.Normalize(known, cat)

	included := closure(res.Checked, cat)
	rows := make([]arc.Row, 0, len(included))
	for _, r := range cat.Rows {
		if included[r.Variable] {
			rows = append(rows, r.Clone())
		}
	}

	resolved := lists.ApplyChoices(cat.WithRows(rows), choices)
	synth := units.Synthesize(rules, resolved.Rows, cat, ph)
	res.Deleted = synth.Deleted
	res.Warnings = append(res.Warnings, synth.Warnings...)

	rows = synth.Rows
	arc.ComputeDependencies(rows)
	rewriteBranches(rows, cat)

	exempt := func(r arc.Row) bool { return units.IsSynthesised(r, synth.Synthesised) }
	if err := arc.VerifyParents("selection", rows, exempt); err != nil {
		logging.SelectionError("resolve failed: %v", err)
		return nil, err
	}
	if err := arc.VerifyDependencies("selection", rows); err != nil {
		logging.SelectionError("resolve failed: %v", err)
		return nil, err
	}

	res.Catalogue = cat.WithRows(rows)
	logging.Selection("resolved %d checked into %d rows (%d unit rows collapsed)", len(checked), len(rows), len(res.Deleted))
	return res, nil
}

// closure returns checked plus every dependency, the parent of every
// modifier, and every include-not-show sibling. One pass each: dependencies
// are one hop by construction.
func closure(checked []string, cat *arc.Catalogue) map[string]bool {
	idx := cat.Index()
	set := make(map[string]bool, len(checked)*4)
	for _, v := range checked {
		set[v] = true
		if i, ok := idx[v]; ok {
			for _, d := range cat.Rows[i].Dependencies {
				set[d] = true
			}
		}
	}

	for v := range snapshot(set) {
		i, ok := idx[v]
		if !ok || cat.Rows[i].IsParent() {
			continue
		}
		if _, ok := idx[cat.Rows[i].SecVari()]; ok {
			set[cat.Rows[i].SecVari()] = true
		}
	}

	for v := range snapshot(set) {
		for _, suffix := range IncludeNotShow {
			if _, ok := idx[v+"_"+suffix]; ok {
				set[v+"_"+suffix] = true
			}
		}
	}
	return set
}

// snapshot copies set so the caller can grow it while ranging.
func snapshot(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k := range set {
		out[k] = true
	}
	return out
}

// rewriteBranches renders skip logic against the resolved rows, falling back
// to the full catalogue for variables outside the selection.
func rewriteBranches(rows []arc.Row, full *arc.Catalogue) {
	idx := arc.IndexRows(rows)
	lookup := func(v string) (arc.Row, bool) {
		if i, ok := idx[v]; ok {
			return rows[i], true
		}
		return full.Lookup(v)
	}
	for i := range rows {
		if rows[i].SkipLogic == "" {
			rows[i].Branch = ""
			continue
		}
		rows[i].Branch = branch.Rewrite(rows[i].SkipLogic, lookup)
	}
}
