package units

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
	"bridge/internal/phrases"
)

// Result is the outcome of Synthesize.
type Result struct {
	Rows []arc.Row
	// Deleted lists the unit rows removed from the input.
	Deleted []string
	// Synthesised lists the sec_vari of every collapsed group.
	Synthesised []string
	Warnings    []string
}

// Synthesize collapses every units group of full that has a member in rows
// and at least two unit rows. The group's unit rows leave rows and two rows
// take their place: the base variable (text, number validation, min of the
// minimums, max of the maximums) and X_units (radio, one option per unit).
// Applying it to its own output changes nothing.
func Synthesize(rules Rules, rows []arc.Row, full *arc.Catalogue, ph phrases.Pair) Result {
	res := Result{Rows: arc.CloneRows(rows)}
	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.Variable] = true
	}

	for _, g := range Groups(rules, full) {
		if !slices.ContainsFunc(g.Members(), func(v string) bool { return present[v] }) {
			continue
		}
		switch len(g.Units) {
		case 0:
			continue
		case 1:
			msg := fmt.Sprintf("%s has a single unit (%s); left unchanged", g.SecVari, g.Units[0].Variable)
			logging.UnitsWarn("%s", msg)
			res.Warnings = append(res.Warnings, msg)
			continue
		}

		unitKeys := make(map[string]bool, len(g.Units))
		for _, u := range g.Units {
			unitKeys[u.Variable] = true
		}
		kept := res.Rows[:0]
		for _, r := range res.Rows {
			if unitKeys[r.Variable] {
				res.Deleted = append(res.Deleted, r.Variable)
				continue
			}
			kept = append(kept, r)
		}
		res.Rows = kept

		base, radio := synthesise(g, ph)
		res.Rows = arc.Insert(res.Rows, []arc.Row{base, radio}, full.SecVariOrder())
		res.Synthesised = append(res.Synthesised, g.SecVari)
		logging.UnitsDebug("collapsed %s: %d units", g.SecVari, len(g.Units))
	}
	return res
}

// IsSynthesised reports whether r is one of the two rows Synthesize emits.
func IsSynthesised(r arc.Row, synthesised []string) bool {
	return slices.Contains(synthesised, r.SecVari()) && (r.IsParent() || r.Mod == ModUnits)
}

func synthesise(g Group, ph phrases.Pair) (base, radio arc.Row) {
	p := g.Parent
	stem := arc.StripParenthetical(p.Question)
	stemEnglish := arc.StripParenthetical(p.QuestionEnglish)

	base = arc.Row{
		Variable:            g.SecVari,
		Form:                p.Form,
		Section:             p.Section,
		Type:                arc.TypeText,
		Validation:          arc.ValidationNumber,
		Question:            stem,
		QuestionEnglish:     stemEnglish,
		SkipLogic:           p.SkipLogic,
		Definition:          p.Definition,
		CompletionGuideline: p.CompletionGuideline,
		Presets:             p.Presets,
	}
	base.Minimum, base.Maximum = bounds(g.Units)

	opts := make([]arc.Option, len(g.Units))
	for i, u := range g.Units {
		label, ok := arc.Parenthetical(u.Question)
		if !ok || label == "" {
			label = u.Mod
		}
		opts[i] = arc.Option{Code: strconv.Itoa(i + 1), Label: label}
	}
	radio = arc.Row{
		Variable:        g.UnitsVariable(),
		Form:            p.Form,
		Section:         p.Section,
		Type:            arc.TypeRadio,
		Validation:      arc.ValidationUnits,
		Question:        stem + " (" + ph.Local.Units + ")",
		QuestionEnglish: stemEnglish + " (" + ph.English.Units + ")",
		AnswerOptions:   arc.FormatOptions(opts),
		SkipLogic:       p.SkipLogic,
		Presets:         p.Presets,
	}

	base = base.Clone()
	radio = radio.Clone()
	arc.DeriveRow(&base)
	arc.DeriveRow(&radio)
	return base, radio
}

// bounds returns the smallest minimum and largest maximum of rows, skipping
// blank and non-numeric cells.
func bounds(rows []arc.Row) (lo, hi string) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if v, err := strconv.ParseFloat(strings.TrimSpace(r.Minimum), 64); err == nil {
			minV = math.Min(minV, v)
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(r.Maximum), 64); err == nil {
			maxV = math.Max(maxV, v)
		}
	}
	if !math.IsInf(minV, 1) {
		lo = strconv.FormatFloat(minV, 'f', -1, 64)
	}
	if !math.IsInf(maxV, -1) {
		hi = strconv.FormatFloat(maxV, 'f', -1, 64)
	}
	return lo, hi
}
