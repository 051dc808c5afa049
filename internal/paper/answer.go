package paper

import (
	"strings"

	"bridge/internal/arc"
)

const (
	radioMark    = "○"
	checkboxMark = "□"
	blankLine    = "________________"
	dateBlank    = "_ _ / _ _ / _ _ _ _"
	timeBlank    = "_ _ : _ _"
)

// Answer renders the answer area of r.
func Answer(r arc.Row) string {
	switch r.Type {
	case arc.TypeDescriptive:
		return ""
	case arc.TypeDateDMY:
		return dateBlank
	case arc.TypeDatetimeDMY:
		return dateBlank + "  " + timeBlank
	case arc.TypeYesNo:
		return marks(radioMark, []string{"Yes", "No"})
	case arc.TypeTrueFalse:
		return marks(radioMark, []string{"True", "False"})
	case arc.TypeCheckbox, arc.TypeMultiList:
		return marks(checkboxMark, arc.OptionLabels(r.AnswerOptions))
	case arc.TypeRadio, arc.TypeDropdown, arc.TypeList, arc.TypeUserList:
		if labels := arc.OptionLabels(r.AnswerOptions); len(labels) > 0 {
			return marks(radioMark, labels)
		}
	}
	switch r.Validation {
	case arc.ValidationDateDMY:
		return dateBlank
	case arc.ValidationTime:
		return timeBlank
	}
	return blankLine
}

func marks(mark string, labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = mark + " " + l
	}
	return strings.Join(parts, "   ")
}

// isDateValued reports whether r is answered with a date or time.
func isDateValued(r arc.Row) bool {
	switch r.Type {
	case arc.TypeDateDMY, arc.TypeDatetimeDMY:
		return true
	}
	return r.Validation == arc.ValidationDateDMY || r.Validation == arc.ValidationTime
}

// isOpenText reports whether r is answered in free text.
func isOpenText(r arc.Row) bool {
	if r.Type != arc.TypeText && r.Type != arc.TypeNotes {
		return false
	}
	return r.AnswerOptions == "" && r.Validation != arc.ValidationNumber
}
