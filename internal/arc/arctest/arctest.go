// Package arctest builds small catalogues for tests.
package arctest

import "bridge/internal/arc"

// Option mutates a row under construction.
type Option func(*arc.Row)

// Row builds a row with derived columns filled. Form and Section default to
// "presentation" and "DEMOGRAPHICS".
func Row(variable, typ, question string, opts ...Option) arc.Row {
	r := arc.Row{
		Variable:        variable,
		Form:            "presentation",
		Section:         "DEMOGRAPHICS",
		Type:            typ,
		Question:        question,
		QuestionEnglish: question,
	}
	for _, o := range opts {
		o(&r)
	}
	arc.DeriveRow(&r)
	return r
}

// Form sets the form name.
func Form(form string) Option { return func(r *arc.Row) { r.Form = form } }

// Section sets the section title.
func Section(section string) Option { return func(r *arc.Row) { r.Section = section } }

// Answers sets the answer-options string.
func Answers(s string) Option { return func(r *arc.Row) { r.AnswerOptions = s } }

// Skip sets the skip-logic expression.
func Skip(s string) Option { return func(r *arc.Row) { r.SkipLogic = s } }

// Validation sets the validation column.
func Validation(v string) Option { return func(r *arc.Row) { r.Validation = v } }

// Range sets minimum and maximum.
func Range(min, max string) Option {
	return func(r *arc.Row) { r.Minimum, r.Maximum = min, max }
}

// List sets the list-table reference.
func List(ref string) Option { return func(r *arc.Row) { r.List = ref } }

// Preset marks the row as a member of a preset column.
func Preset(column string) Option {
	return func(r *arc.Row) {
		if r.Presets == nil {
			r.Presets = map[string]string{}
		}
		r.Presets[column] = "1"
	}
}

// Guide sets definition and completion guideline.
func Guide(definition, guideline string) Option {
	return func(r *arc.Row) { r.Definition, r.CompletionGuideline = definition, guideline }
}

// Catalogue assembles rows and computes dependencies.
func Catalogue(version string, rows ...arc.Row) *arc.Catalogue {
	cat := &arc.Catalogue{Version: version, Language: "English", Rows: rows}
	seen := map[string]bool{}
	for _, r := range rows {
		for col := range r.Presets {
			if !seen[col] {
				seen[col] = true
				cat.Columns = append(cat.Columns, col)
			}
		}
	}
	return arc.Derive(cat)
}

// Subjid is the participant identifier row present in every catalogue.
func Subjid() arc.Row {
	return Row("subjid", arc.TypeText, "Participant Identification Number (PIN)")
}
