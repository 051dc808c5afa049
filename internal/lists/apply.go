package lists

import (
	"strconv"

	"bridge/internal/arc"
)

// ApplyChoices re-renders the answer options driven by choices: a
// user_list or multi_list parent lists the selected options, its otherl2
// dropdown the unselected ones, and every item dropdown of a list variable
// lists all options. Each keeps the row's existing Other label. cat is not
// modified.
func ApplyChoices(cat *arc.Catalogue, choices Choices) *arc.Catalogue {
	out := cat.Clone()
	idx := out.Index()
	set := func(variable string, render func(other string) []arc.Option) {
		i, ok := idx[variable]
		if !ok {
			return
		}
		out.Rows[i].AnswerOptions = arc.FormatOptions(render(otherLabel(out.Rows[i].AnswerOptions)))
	}

	for variable, state := range choices {
		i, ok := idx[variable]
		if !ok {
			continue
		}
		switch out.Rows[i].Type {
		case arc.TypeList:
			for n := 0; n < Iterations; n++ {
				set(itemVariable(variable, n), func(other string) []arc.Option { return allOptions(state, other) })
			}
		case arc.TypeUserList, arc.TypeMultiList:
			set(variable, func(other string) []arc.Option { return selectedOptions(state, true, other) })
			set(variable+"_"+ModOtherL2, func(other string) []arc.Option { return selectedOptions(state, false, other) })
		}
	}
	return out
}

func otherLabel(answerOptions string) string {
	if l, ok := arc.LabelFor(answerOptions, strconv.Itoa(arc.CodeOther)); ok && l != "" {
		return l
	}
	return "Other"
}
