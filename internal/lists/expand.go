package lists

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
	"bridge/internal/phrases"
)

// Iterations is the fixed number of repeats generated for a list variable.
const Iterations = 5

// Generated modifier names.
const (
	ModItem    = "item"
	ModOtherL2 = "otherl2"
	ModOtherL3 = "otherl3"
	ModAddi    = "addi"
)

// InfectionVariable is the user_list whose free-text follow-up hangs off the
// parent directly.
const InfectionVariable = "inclu_disease"

// arrows prefix generated questions by nesting depth.
var arrows = []string{"", ">", "->", ">->", "->->", ">->->"}

var generatedMod = regexp.MustCompile(`^(\d(item|otherl2|addi)|otherl2|otherl3)$`)

// IsGenerated reports whether r was produced by the expander.
func IsGenerated(r arc.Row) bool {
	return generatedMod.MatchString(r.Mod)
}

func itemVariable(x string, n int) string      { return x + "_" + strconv.Itoa(n) + ModItem }
func otherVariable(x string, n int) string     { return x + "_" + strconv.Itoa(n) + ModOtherL2 }
func addiVariable(x string, n int) string      { return x + "_" + strconv.Itoa(n) + ModAddi }
func equals(variable, code string) string      { return "[" + variable + "]='" + code + "'" }
func checkedCode(variable, code string) string { return "[" + variable + "(" + code + ")]='1'" }

func arrowed(depth int, parts ...string) string {
	if depth >= len(arrows) {
		depth = len(arrows) - 1
	}
	return strings.TrimSpace(arrows[depth] + " " + strings.Join(parts, " "))
}

// Tables maps a list reference to its option table.
type Tables map[string][]arc.OptionRow

// Expand generates the companion rows of every list, user_list and
// multi_list variable in cat and returns the expanded catalogue and the
// initial choice state. cat is not modified.
func Expand(cat *arc.Catalogue, tables Tables, ph phrases.Pair) (*arc.Catalogue, Choices, error) {
	timer := logging.StartTimer(logging.CategoryLists, "Expand")
	defer timer.Stop()

	order := cat.SecVariOrder()
	rows := arc.CloneRows(cat.Rows)
	choices := Choices{}

	for _, p := range cat.Rows {
		if !p.IsParent() {
			continue
		}
		switch p.Type {
		case arc.TypeList, arc.TypeUserList, arc.TypeMultiList:
		default:
			continue
		}
		table, ok := tables[p.List]
		if !ok {
			return nil, nil, fmt.Errorf("lists: no option table %q for %s", p.List, p.Variable)
		}
		state := FromTable(table)
		choices[p.Variable] = state

		var added []arc.Row
		if p.Type == arc.TypeList {
			added = expandList(p, modifiersOf(cat.Rows, p), state, ph)
		} else {
			added = expandSingle(p, state, ph)
			if i := indexOf(rows, p.Variable); i >= 0 {
				rows[i].AnswerOptions = arc.FormatOptions(selectedOptions(state, true, ph.Local.Other))
			}
		}
		rows = arc.Insert(rows, added, order)
		logging.ListsDebug("expanded %s (%s): %d rows, %d choices", p.Variable, p.Type, len(added), len(state))
	}

	arc.ComputeDependencies(rows)
	out := cat.WithRows(rows)
	if err := arc.VerifyParents("lists", out.Rows, nil); err != nil {
		return nil, nil, err
	}
	return out, choices, nil
}

func indexOf(rows []arc.Row, variable string) int {
	for i, r := range rows {
		if r.Variable == variable {
			return i
		}
	}
	return -1
}

// modifiersOf returns the non-generated modifier rows sharing p's sec_vari.
func modifiersOf(rows []arc.Row, p arc.Row) []arc.Row {
	var out []arc.Row
	for _, r := range rows {
		if r.SecVari() == p.SecVari() && !r.IsParent() && !IsGenerated(r) {
			out = append(out, r)
		}
	}
	return out
}

// generated builds a row in p's form and section.
func generated(p arc.Row, variable, typ, question, english, skip string) arc.Row {
	r := arc.Row{
		Variable:        variable,
		Form:            p.Form,
		Section:         p.Section,
		Type:            typ,
		Question:        question,
		QuestionEnglish: english,
		SkipLogic:       skip,
		Presets:         p.Presets,
	}
	r = r.Clone()
	arc.DeriveRow(&r)
	return r
}

func allOptions(state []Choice, other string) []arc.Option {
	opts := make([]arc.Option, 0, len(state)+1)
	for _, ch := range state {
		opts = append(opts, arc.Option{Code: ch.Code(), Label: ch.Label})
	}
	return append(opts, arc.OtherOption(other))
}

func selectedOptions(state []Choice, selected bool, other string) []arc.Option {
	var opts []arc.Option
	for _, ch := range state {
		if ch.Selected == selected {
			opts = append(opts, arc.Option{Code: ch.Code(), Label: ch.Label})
		}
	}
	return append(opts, arc.OtherOption(other))
}

func trimQuestion(q string) string {
	return strings.TrimRight(strings.TrimSpace(q), "?:")
}

// expandList emits the five repeats of a list variable.
func expandList(p arc.Row, modifiers []arc.Row, state []Choice, ph phrases.Pair) []arc.Row {
	x := p.Variable
	q, qe := trimQuestion(p.Question), trimQuestion(p.QuestionEnglish)
	var out []arc.Row
	for n := 0; n < Iterations; n++ {
		skip := equals(x, "1")
		sel, selEN := ph.Local.Select, ph.English.Select
		if n > 0 {
			skip = equals(addiVariable(x, n-1), "1")
			sel, selEN = ph.Local.SelectAdditional, ph.English.SelectAdditional
		}

		item := generated(p, itemVariable(x, n), arc.TypeDropdown,
			arrowed(n, sel, q), arrowed(n, selEN, qe), skip)
		item.Validation = arc.ValidationAutocomplete
		item.AnswerOptions = arc.FormatOptions(allOptions(state, ph.Local.Other))
		out = append(out, item)

		out = append(out, generated(p, otherVariable(x, n), arc.TypeText,
			arrowed(n+1, ph.Local.SpecifyOther, q), arrowed(n+1, ph.English.SpecifyOther, qe),
			equals(item.Variable, strconv.Itoa(arc.CodeOther))))

		for _, m := range modifiers {
			c := m.Clone()
			c.Variable = p.SecVari() + "_" + strconv.Itoa(n) + m.Mod
			c.Question = arrowed(n+1, m.Question)
			c.QuestionEnglish = arrowed(n+1, m.QuestionEnglish)
			if n > 0 {
				c.SkipLogic = skip
			}
			arc.DeriveRow(&c)
			out = append(out, c)
		}

		if n < Iterations-1 {
			addi := generated(p, addiVariable(x, n), arc.TypeRadio,
				arrowed(n+1, ph.Local.AnyAdditional, q+"?"), arrowed(n+1, ph.English.AnyAdditional, qe+"?"), skip)
			addi.AnswerOptions = p.AnswerOptions
			out = append(out, addi)
		}
	}
	return out
}

// expandSingle emits the otherl2 dropdown and otherl3 free text of a
// user_list or multi_list variable.
func expandSingle(p arc.Row, state []Choice, ph phrases.Pair) []arc.Row {
	x := p.Variable
	other := strconv.Itoa(arc.CodeOther)
	q, qe := trimQuestion(p.Question), trimQuestion(p.QuestionEnglish)

	skip2 := equals(x, other)
	if p.Type == arc.TypeMultiList {
		skip2 = checkedCode(x, other)
	}
	l2 := generated(p, x+"_"+ModOtherL2, arc.TypeDropdown,
		arrowed(1, ph.Local.Select, q, "("+ph.Local.Other+")"),
		arrowed(1, ph.English.Select, qe, "("+ph.English.Other+")"), skip2)
	l2.AnswerOptions = arc.FormatOptions(selectedOptions(state, false, ph.Local.Other))

	skip3 := equals(l2.Variable, other)
	if x == InfectionVariable {
		skip3 = equals(x, other)
	}
	local, english := specifyOther(x, q, ph.Local), specifyOther(x, qe, ph.English)
	l3 := generated(p, x+"_"+ModOtherL3, arc.TypeText, arrowed(2, local), arrowed(2, english), skip3)

	return []arc.Row{l2, l3}
}

func specifyOther(variable, question string, ph phrases.Phrases) string {
	switch {
	case variable == InfectionVariable:
		return ph.SpecifyOtherInfection
	case strings.Contains(variable, "agent"):
		return ph.OtherAgent
	default:
		return ph.SpecifyOther + " " + question
	}
}
