// Package arc models the ARC question catalogue: variable rows, their derived
// columns and dependencies, answer options, presets, schema epochs, and the
// row placement rule shared by every transformer that adds rows.
package arc

import (
	"maps"
	"slices"
	"strings"
)

// Variable types found in the catalogue.
const (
	TypeText        = "text"
	TypeRadio       = "radio"
	TypeCheckbox    = "checkbox"
	TypeDropdown    = "dropdown"
	TypeList        = "list"
	TypeUserList    = "user_list"
	TypeMultiList   = "multi_list"
	TypeDateDMY     = "date_dmy"
	TypeDatetimeDMY = "datetime_dmy"
	TypeNumber      = "number"
	TypeInteger     = "integer"
	TypeCalc        = "calc"
	TypeYesNo       = "yesno"
	TypeTrueFalse   = "truefalse"
	TypeDescriptive = "descriptive"
	TypeNotes       = "notes"
	TypeFile        = "file"
	TypeSlider      = "slider"
)

// Validation values with meaning to the pipeline.
const (
	ValidationDateDMY      = "date_dmy"
	ValidationTime         = "time"
	ValidationNumber       = "number"
	ValidationUnits        = "units"
	ValidationAutocomplete = "autocomplete"
)

// SubjectID is the participant identifier every variable depends on.
const SubjectID = "subjid"

// Row is one variable of the catalogue.
type Row struct {
	Variable            string
	Form                string
	Section             string
	Type                string
	Question            string
	QuestionEnglish     string // frozen English baseline, never translated
	AnswerOptions       string
	Validation          string
	Minimum             string
	Maximum             string
	List                string
	SkipLogic           string
	Definition          string
	CompletionGuideline string
	Branch              string // human-readable rendering of SkipLogic

	// Derived columns.
	Sec          string
	Vari         string
	Mod          string
	SecName      string
	Expla        string
	Dependencies []string

	// Presets maps preset_* column names to their raw cell value.
	Presets map[string]string
	// Extra holds columns with no dedicated field, keyed by header.
	Extra map[string]string
}

// SecVari returns sec + "_" + vari, or just sec for single-part variables.
func (r Row) SecVari() string {
	if r.Vari == "" {
		return r.Sec
	}
	return r.Sec + "_" + r.Vari
}

// IsParent reports whether the row heads its variable group.
func (r Row) IsParent() bool {
	return r.Mod == ""
}

// Clone returns a deep copy.
func (r Row) Clone() Row {
	r.Dependencies = slices.Clone(r.Dependencies)
	r.Presets = maps.Clone(r.Presets)
	r.Extra = maps.Clone(r.Extra)
	return r
}

// Catalogue is an ordered set of rows for one (version, language).
type Catalogue struct {
	Version  string
	Language string
	Commit   string
	// Columns is the header order of the source table, kept for presets.
	Columns []string
	Rows    []Row
}

// Clone returns a deep copy; transformers clone before mutating.
func (c *Catalogue) Clone() *Catalogue {
	out := &Catalogue{
		Version:  c.Version,
		Language: c.Language,
		Commit:   c.Commit,
		Columns:  slices.Clone(c.Columns),
		Rows:     CloneRows(c.Rows),
	}
	return out
}

// WithRows returns a shallow copy of c's metadata carrying rows.
func (c *Catalogue) WithRows(rows []Row) *Catalogue {
	return &Catalogue{
		Version:  c.Version,
		Language: c.Language,
		Commit:   c.Commit,
		Columns:  slices.Clone(c.Columns),
		Rows:     rows,
	}
}

// CloneRows deep-copies a row slice.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// Index maps each variable key to its position.
func (c *Catalogue) Index() map[string]int {
	return IndexRows(c.Rows)
}

// IndexRows maps each variable key to its position in rows.
func IndexRows(rows []Row) map[string]int {
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		idx[r.Variable] = i
	}
	return idx
}

// Lookup returns the row for variable.
func (c *Catalogue) Lookup(variable string) (Row, bool) {
	for _, r := range c.Rows {
		if r.Variable == variable {
			return r, true
		}
	}
	return Row{}, false
}

// Has reports whether variable is present.
func (c *Catalogue) Has(variable string) bool {
	_, ok := c.Lookup(variable)
	return ok
}

// Variables returns every variable key in order.
func (c *Catalogue) Variables() []string {
	out := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Variable
	}
	return out
}

// Group returns the rows sharing secVari, in catalogue order.
func (c *Catalogue) Group(secVari string) []Row {
	var out []Row
	for _, r := range c.Rows {
		if r.SecVari() == secVari {
			out = append(out, r)
		}
	}
	return out
}

// SecVariOrder returns each distinct sec_vari in first-appearance order.
func (c *Catalogue) SecVariOrder() []string {
	return SecVariOrder(c.Rows)
}

// SecVariOrder returns each distinct sec_vari of rows in first-appearance order.
func SecVariOrder(rows []Row) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, r := range rows {
		sv := r.SecVari()
		if !seen[sv] {
			seen[sv] = true
			out = append(out, sv)
		}
	}
	return out
}

// StripParenthetical removes the last "(...)" from s and trims the result.
func StripParenthetical(s string) string {
	open := strings.LastIndex(s, "(")
	if open < 0 {
		return strings.TrimSpace(s)
	}
	end := strings.Index(s[open:], ")")
	if end < 0 {
		return strings.TrimSpace(s[:open])
	}
	return strings.TrimSpace(s[:open] + s[open+end+1:])
}

// Parenthetical returns the content of the last "(...)" in s.
func Parenthetical(s string) (string, bool) {
	open := strings.LastIndex(s, "(")
	if open < 0 {
		return "", false
	}
	end := strings.Index(s[open:], ")")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[open+1 : open+end]), true
}
