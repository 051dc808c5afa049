// Package redcap emits a resolved selection as a REDCap data dictionary.
package redcap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
)

// Columns is the REDCap data dictionary header, in order.
var Columns = []string{
	"Variable / Field Name",
	"Form Name",
	"Section Header",
	"Field Type",
	"Field Label",
	"Choices, Calculations, OR Slider Labels",
	"Field Note",
	"Text Validation Type OR Show Slider Number",
	"Text Validation Min",
	"Text Validation Max",
	"Identifier?",
	"Branching Logic (Show field only if...)",
	"Required Field?",
	"Custom Alignment",
	"Question Number (surveys only)",
	"Matrix Group Name",
	"Matrix Ranking?",
	"Field Annotation",
}

// AlignHorizontal is the Custom Alignment value for short option lists.
const AlignHorizontal = "RH"

var legalTypes = map[string]bool{
	arc.TypeText: true, arc.TypeNotes: true, arc.TypeRadio: true, arc.TypeDropdown: true,
	arc.TypeCalc: true, arc.TypeFile: true, arc.TypeCheckbox: true, arc.TypeYesNo: true,
	arc.TypeTrueFalse: true, arc.TypeDescriptive: true, arc.TypeSlider: true,
}

// legalValidations are the text validation types REDCap accepts that the
// catalogue uses.
var legalValidations = map[string]bool{
	arc.ValidationDateDMY: true, arc.TypeDatetimeDMY: true, arc.ValidationTime: true,
	arc.ValidationNumber: true, arc.TypeInteger: true, arc.ValidationAutocomplete: true,
	"email": true, "phone": true, "alpha_only": true,
}

// Field is one data dictionary line.
type Field struct {
	Variable       string
	FormName       string
	SectionHeader  string
	FieldType      string
	FieldLabel     string
	Choices        string
	FieldNote      string
	Validation     string
	ValidationMin  string
	ValidationMax  string
	Identifier     string
	BranchingLogic string
	Required       string
	Alignment      string
	QuestionNumber string
	MatrixGroup    string
	MatrixRanking  string
	Annotation     string
}

func (f Field) record() []string {
	return []string{
		f.Variable, f.FormName, f.SectionHeader, f.FieldType, f.FieldLabel,
		f.Choices, f.FieldNote, f.Validation, f.ValidationMin, f.ValidationMax,
		f.Identifier, f.BranchingLogic, f.Required, f.Alignment, f.QuestionNumber,
		f.MatrixGroup, f.MatrixRanking, f.Annotation,
	}
}

// RewriteType maps a catalogue type onto a REDCap field type. Date and
// number types become text and return the original type as validation.
func RewriteType(typ string) (fieldType, validation string) {
	switch typ {
	case arc.TypeUserList, arc.TypeList:
		return arc.TypeRadio, ""
	case arc.TypeMultiList:
		return arc.TypeCheckbox, ""
	case arc.TypeDateDMY, arc.TypeDatetimeDMY, arc.TypeNumber, arc.TypeInteger:
		return arc.TypeText, typ
	}
	return typ, ""
}

// Alignment returns RH for radio and checkbox fields with fewer than four
// short options.
func Alignment(fieldType, answerOptions string) string {
	if fieldType != arc.TypeRadio && fieldType != arc.TypeCheckbox {
		return ""
	}
	if answerOptions == "" {
		return ""
	}
	if len(strings.Split(answerOptions, "|")) < 4 && len([]rune(answerOptions)) <= 40 {
		return AlignHorizontal
	}
	return ""
}

// FormName turns a catalogue form title into a REDCap instrument name.
func FormName(form string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(form)), " ", "_")
}

// Fields maps rows onto data dictionary lines, dropping rows REDCap cannot
// represent.
func Fields(rows []arc.Row) []Field {
	out := make([]Field, 0, len(rows))
	lastHeader := ""
	for _, r := range rows {
		fieldType, validation := RewriteType(r.Type)
		if !legalTypes[fieldType] {
			logging.RedcapDebug("dropping %s: type %q has no REDCap equivalent", r.Variable, r.Type)
			continue
		}
		if validation == "" && legalValidations[r.Validation] {
			validation = r.Validation
		}

		header := r.Section
		if header == lastHeader {
			header = ""
		} else {
			lastHeader = r.Section
		}

		f := Field{
			Variable:       r.Variable,
			FormName:       FormName(r.Form),
			SectionHeader:  header,
			FieldType:      fieldType,
			FieldLabel:     r.Question,
			Validation:     validation,
			ValidationMin:  r.Minimum,
			ValidationMax:  r.Maximum,
			BranchingLogic: r.SkipLogic,
			Alignment:      Alignment(fieldType, r.AnswerOptions),
		}
		if fieldType != arc.TypeText && fieldType != arc.TypeNotes {
			f.Choices = r.AnswerOptions
		}
		if r.Variable == arc.SubjectID {
			f.Identifier = "y"
			f.Required = "y"
		}
		out = append(out, f)
	}
	return out
}

// Write emits rows as a data dictionary CSV.
func Write(w io.Writer, rows []arc.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("redcap: write header: %w", err)
	}
	for _, f := range Fields(rows) {
		if err := cw.Write(f.record()); err != nil {
			return fmt.Errorf("redcap: write %s: %w", f.Variable, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the conventional data dictionary file name of a CRF.
func FileName(crf string) string {
	return crf + "_DataDictionary.csv"
}
