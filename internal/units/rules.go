// Package units collapses measurement variables recorded once per unit
// (height in cm, height in in) into a number field plus a units radio.
//
// Catalogues before v1.2.1 mark such variables with "(select units)" in the
// parent question; later catalogues carry a companion X_units row. Rules
// hides that difference from callers.
package units

import (
	"slices"
	"strings"

	"bridge/internal/arc"
)

// SelectUnitsMarker flags a units parent in dynamic-epoch catalogues.
const SelectUnitsMarker = "(select units)"

// ModUnits is the modifier of a units companion row.
const ModUnits = "units"

// Group is one measurement recorded in several units.
type Group struct {
	SecVari string
	// Parent is the row that announces the units: X_units in the static
	// epoch, X in the dynamic epoch.
	Parent arc.Row
	Units  []arc.Row
}

// UnitsVariable is the key of the synthesised units radio.
func (g Group) UnitsVariable() string { return g.SecVari + "_" + ModUnits }

// Members returns every variable key that belongs to the group.
func (g Group) Members() []string {
	out := []string{g.SecVari, g.UnitsVariable()}
	for _, u := range g.Units {
		out = append(out, u.Variable)
	}
	return out
}

// Rules is the epoch-specific half of unit handling.
type Rules interface {
	Epoch() arc.Epoch
	// IsUnitsParent reports whether r announces a units group.
	IsUnitsParent(r arc.Row) bool
	// Normalize rewrites a checked set so that units groups resolve to
	// their base variable.
	Normalize(checked []string, cat *arc.Catalogue) []string
}

// RulesFor returns the rules of the schema epoch of version.
func RulesFor(version string) (Rules, error) {
	epoch, err := arc.EpochFor(version)
	if err != nil {
		return nil, err
	}
	return ForEpoch(epoch), nil
}

// ForEpoch returns the rules of epoch.
func ForEpoch(epoch arc.Epoch) Rules {
	if epoch == arc.EpochStaticUnits {
		return staticRules{}
	}
	return dynamicRules{}
}

// Groups returns the units groups of cat in catalogue order. Groups with any
// number of unit rows are returned; callers decide what a count means.
func Groups(rules Rules, cat *arc.Catalogue) []Group {
	var out []Group
	for _, p := range cat.Rows {
		if !rules.IsUnitsParent(p) {
			continue
		}
		g := Group{SecVari: p.SecVari(), Parent: p}
		for _, r := range cat.Rows {
			if r.SecVari() == g.SecVari && isUnitRow(r) {
				g.Units = append(g.Units, r)
			}
		}
		out = append(out, g)
	}
	return out
}

// GroupOf returns the group that variable belongs to.
func GroupOf(rules Rules, cat *arc.Catalogue, variable string) (Group, bool) {
	for _, g := range Groups(rules, cat) {
		if slices.Contains(g.Members(), variable) {
			return g, true
		}
	}
	return Group{}, false
}

func isUnitRow(r arc.Row) bool {
	return r.Mod != "" && r.Mod != ModUnits
}

// staticRules: the group carries an X_units row validated as "units".
type staticRules struct{}

func (staticRules) Epoch() arc.Epoch { return arc.EpochStaticUnits }

func (staticRules) IsUnitsParent(r arc.Row) bool {
	return r.Mod == ModUnits && r.Validation == arc.ValidationUnits
}

func (s staticRules) Normalize(checked []string, cat *arc.Catalogue) []string {
	out := slices.Clone(checked)
	for _, v := range checked {
		g, ok := GroupOf(s, cat, v)
		if !ok || len(g.Units) < 2 {
			continue
		}
		if cat.Has(g.UnitsVariable()) && !slices.Contains(out, g.UnitsVariable()) {
			out = append(out, g.UnitsVariable())
		}
	}
	for i, v := range out {
		if base, ok := strings.CutSuffix(v, "_"+ModUnits); ok {
			if g, ok := GroupOf(s, cat, v); ok && len(g.Units) >= 2 {
				out[i] = base
			}
		}
	}
	return dedupe(out)
}

// dynamicRules: the parent question says "(select units)".
type dynamicRules struct{}

func (dynamicRules) Epoch() arc.Epoch { return arc.EpochDynamicUnits }

func (dynamicRules) IsUnitsParent(r arc.Row) bool {
	return r.IsParent() && strings.Contains(strings.ToLower(r.QuestionEnglish), SelectUnitsMarker)
}

func (d dynamicRules) Normalize(checked []string, cat *arc.Catalogue) []string {
	out := slices.Clone(checked)
	for _, v := range checked {
		g, ok := GroupOf(d, cat, v)
		if !ok || len(g.Units) < 2 {
			continue
		}
		if !slices.Contains(out, g.SecVari) {
			out = append(out, g.SecVari)
		}
	}
	return dedupe(out)
}

func dedupe(vs []string) []string {
	seen := make(map[string]bool, len(vs))
	out := vs[:0]
	for _, v := range vs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
