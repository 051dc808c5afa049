// Package lists expands list, user_list and multi_list variables into their
// generated companion rows and keeps the per-variable list-choice state.
package lists

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"bridge/internal/arc"
)

// Choice is one option of a list variable.
type Choice struct {
	Number   int
	Label    string
	Selected bool
}

// Code returns the option code as it appears in answer options.
func (c Choice) Code() string { return strconv.Itoa(c.Number) }

// Choices is the list-choice state, keyed by the expanded variable.
type Choices map[string][]Choice

// FromTable numbers an option table. A number column is authoritative;
// otherwise numbers are the 1-based index. The reserved codes 88 and 99 are
// never emitted: 88 becomes 89, 99 becomes 100, and a number already taken is
// bumped to the next free one.
func FromTable(rows []arc.OptionRow) []Choice {
	used := make(map[int]bool, len(rows))
	out := make([]Choice, 0, len(rows))
	next := 1
	for _, r := range rows {
		n := next
		if r.HasNumber {
			n = r.Number
		}
		switch n {
		case arc.CodeOther:
			n = arc.CodeOther + 1
		case arc.CodeUnknown:
			n = arc.CodeUnknown + 1
		}
		for used[n] || n == arc.CodeOther || n == arc.CodeUnknown {
			n++
		}
		used[n] = true
		if n >= next {
			next = n + 1
		}
		out = append(out, Choice{Number: n, Label: r.Label, Selected: r.Selected})
	}
	return out
}

// Clone returns a deep copy.
func (c Choices) Clone() Choices {
	out := make(Choices, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}

// Variables returns the variables with state, sorted.
func (c Choices) Variables() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SelectedLabels returns the labels flagged selected for variable, in order.
func (c Choices) SelectedLabels(variable string) []string {
	var out []string
	for _, ch := range c[variable] {
		if ch.Selected {
			out = append(out, ch.Label)
		}
	}
	return out
}

// Select replaces the selected flags of variable: exactly the options whose
// label is in labels become selected. Labels compare case-insensitively.
func (c Choices) Select(variable string, labels []string) error {
	state, ok := c[variable]
	if !ok {
		return fmt.Errorf("lists: %q has no list-choice state", variable)
	}
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			want[strings.ToLower(l)] = true
		}
	}
	next := slices.Clone(state)
	for i := range next {
		key := strings.ToLower(next[i].Label)
		next[i].Selected = want[key]
		delete(want, key)
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for l := range want {
			missing = append(missing, l)
		}
		slices.Sort(missing)
		return fmt.Errorf("lists: %q has no option labelled %s", variable, strings.Join(missing, ", "))
	}
	c[variable] = next
	return nil
}

// CarrySelections returns c with selected flags copied from prev by option
// number. Used when a session switches language and labels change.
func (c Choices) CarrySelections(prev Choices) Choices {
	out := c.Clone()
	for variable, state := range out {
		old, ok := prev[variable]
		if !ok {
			continue
		}
		selected := make(map[int]bool, len(old))
		for _, ch := range old {
			selected[ch.Number] = ch.Selected
		}
		for i := range state {
			if s, ok := selected[state[i].Number]; ok {
				state[i].Selected = s
			}
		}
	}
	return out
}

// Verify checks that every choice state carries exactly the option labels of
// its variable's answer options, less the implicit Other.
func Verify(cat *arc.Catalogue, choices Choices) error {
	idx := cat.Index()
	for _, variable := range choices.Variables() {
		i, ok := idx[variable]
		if !ok {
			continue
		}
		parent := cat.Rows[i]
		var sources []string
		switch parent.Type {
		case arc.TypeList:
			sources = []string{itemVariable(variable, 0)}
		case arc.TypeUserList, arc.TypeMultiList:
			sources = []string{variable, variable + "_" + ModOtherL2}
		default:
			return &arc.InvariantError{Stage: "lists", Variable: variable, Detail: "choice state on a " + parent.Type + " variable"}
		}

		shown := map[string]bool{}
		for _, v := range sources {
			j, ok := idx[v]
			if !ok {
				continue
			}
			for _, o := range arc.ParseOptions(cat.Rows[j].AnswerOptions) {
				if o.Code != strconv.Itoa(arc.CodeOther) {
					shown[o.Label] = true
				}
			}
		}
		state := map[string]bool{}
		for _, ch := range choices[variable] {
			state[ch.Label] = true
		}
		for l := range state {
			if !shown[l] {
				return &arc.InvariantError{Stage: "lists", Variable: variable, Detail: fmt.Sprintf("choice %q missing from answer options", l)}
			}
		}
		for l := range shown {
			if !state[l] {
				return &arc.InvariantError{Stage: "lists", Variable: variable, Detail: fmt.Sprintf("answer option %q has no choice state", l)}
			}
		}
	}
	return nil
}
