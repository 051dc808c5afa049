// Package paper lays a resolved selection out as a printable case report
// form. It produces an intermediate tree (forms, sections, subsections,
// subsubsections, rows, fields) for an external renderer; drawing is not
// done here.
package paper

import (
	"encoding/json"
	"fmt"
	"io"
)

// Style is the visual treatment of a subsection.
type Style string

const (
	StyleHeading    Style = "heading"
	StyleBlack      Style = "QA_black"
	StyleGrey       Style = "QA_grey"
	StyleBorderless Style = "QA_borderless"
	StyleTable      Style = "table"
)

// Shade is the background of a row.
type Shade string

const (
	ShadeNone        Shade = "none"
	ShadeConditional Shade = "conditional"
	ShadeDescriptive Shade = "descriptive"
)

// Section kinds with a dedicated layout.
const (
	KindStandard   = "standard"
	KindMedication = "medication"
	KindTesting    = "testing"
)

// Document is the paper form of one CRF.
type Document struct {
	CRF      string  `json:"crf"`
	Version  string  `json:"version"`
	Language string  `json:"language"`
	Forms    []*Form `json:"forms"`
}

// Form groups the sections of one catalogue form.
type Form struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Sections []*Section `json:"sections"`
}

// Section is one catalogue section.
type Section struct {
	Title       string        `json:"title"`
	Explanation string        `json:"explanation,omitempty"`
	Kind        string        `json:"kind"`
	Subsections []*Subsection `json:"subsections"`
}

// Subsection is a run of fields sharing branching-logic reachability.
type Subsection struct {
	Style          Style            `json:"style"`
	Subsubsections []*Subsubsection `json:"subsubsections,omitempty"`
	Table          *Table           `json:"table,omitempty"`
}

// Subsubsection is a block of fields, optionally headed by the field they
// all depend on.
type Subsubsection struct {
	Parent        string `json:"parent,omitempty"`
	Header        *Field `json:"header,omitempty"`
	IsConditional bool   `json:"is_conditional"`
	Caption       string `json:"caption,omitempty"`
	Rows          []*Row `json:"rows"`
}

// Row is a horizontal run of fields whose widths sum to at most six sixths.
type Row struct {
	Fields []*Field `json:"fields"`
	Shade  Shade    `json:"shade"`
}

// Width returns the sixths used by the row.
func (r *Row) Width() int {
	w := 0
	for _, f := range r.Fields {
		w += f.Width()
	}
	return w
}

// Field is one question with its answer area. Widths are in sixths of the
// table width.
type Field struct {
	Variable      string   `json:"variable"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	QuestionWidth int      `json:"question_width"`
	AnswerWidth   int      `json:"answer_width"`
	Dependencies  []string `json:"dependencies,omitempty"`
}

// Width returns the sixths used by the field.
func (f *Field) Width() int { return f.QuestionWidth + f.AnswerWidth }

// Table is the grid layout used by medication and testing sections.
type Table struct {
	Columns []string    `json:"columns"`
	Rows    []*TableRow `json:"rows"`
}

// TableRow is one line of a Table; Cells align with Table.Columns.
type TableRow struct {
	Variable string   `json:"variable"`
	Label    string   `json:"label"`
	Cells    []string `json:"cells"`
}

// WriteJSON encodes doc for the renderer.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("paper: encode: %w", err)
	}
	return nil
}

// FileName is the conventional IR file name of a CRF.
func FileName(crf string) string {
	return crf + "_paper.json"
}
