package arc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ARC column headers.
const (
	ColForm                = "Form"
	ColSection             = "Section"
	ColVariable            = "Variable"
	ColType                = "Type"
	ColQuestion            = "Question"
	ColAnswerOptions       = "Answer Options"
	ColValidation          = "Validation"
	ColMinimum             = "Minimum"
	ColMaximum             = "Maximum"
	ColList                = "List"
	ColSkipLogic           = "Skip Logic"
	ColDefinition          = "Definition"
	ColCompletionGuideline = "Completion Guideline"
)

// StandardColumns is the header order used when writing a catalogue.
var StandardColumns = []string{
	ColForm, ColSection, ColVariable, ColType, ColQuestion, ColAnswerOptions,
	ColValidation, ColMinimum, ColMaximum, ColList, ColSkipLogic,
	ColDefinition, ColCompletionGuideline,
}

// normHeader folds case, spaces, underscores and a UTF-8 BOM so that
// "Answer Options", "answer_options" and "AnswerOptions" match.
func normHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

func fieldFor(r *Row, header string) *string {
	switch normHeader(header) {
	case "form":
		return &r.Form
	case "section":
		return &r.Section
	case "variable":
		return &r.Variable
	case "type":
		return &r.Type
	case "question":
		return &r.Question
	case "answeroptions":
		return &r.AnswerOptions
	case "validation":
		return &r.Validation
	case "minimum":
		return &r.Minimum
	case "maximum":
		return &r.Maximum
	case "list":
		return &r.List
	case "skiplogic":
		return &r.SkipLogic
	case "definition":
		return &r.Definition
	case "completionguideline":
		return &r.CompletionGuideline
	}
	return nil
}

// ReadCatalogue parses a variable table. QuestionEnglish is seeded from
// Question; derived columns are left empty (see Derive).
func ReadCatalogue(r io.Reader) (*Catalogue, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if !hasColumn(header, ColVariable) {
		return nil, fmt.Errorf("variable table has no %q column", ColVariable)
	}

	cat := &Catalogue{}
	for _, h := range header {
		cat.Columns = append(cat.Columns, strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"))
	}
	for line, rec := range records {
		var row Row
		for i, h := range cat.Columns {
			if i >= len(rec) {
				break
			}
			val := strings.TrimSpace(rec[i])
			if f := fieldFor(&row, h); f != nil {
				*f = val
				continue
			}
			if strings.HasPrefix(h, PresetPrefix) {
				if row.Presets == nil {
					row.Presets = make(map[string]string)
				}
				row.Presets[h] = val
				continue
			}
			if val != "" {
				if row.Extra == nil {
					row.Extra = make(map[string]string)
				}
				row.Extra[h] = val
			}
		}
		if row.Variable == "" {
			return nil, fmt.Errorf("variable table line %d: empty %s", line+2, ColVariable)
		}
		row.Type = strings.ToLower(row.Type)
		row.QuestionEnglish = row.Question
		cat.Rows = append(cat.Rows, row)
	}
	return cat, nil
}

// WriteCatalogue writes rows with the standard columns followed by the
// catalogue's preset columns.
func WriteCatalogue(w io.Writer, cat *Catalogue) error {
	cw := csv.NewWriter(w)
	presets := cat.Presets()
	header := append([]string{}, StandardColumns...)
	for _, p := range presets {
		header = append(header, p.Column)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range cat.Rows {
		rec := make([]string, 0, len(header))
		for _, h := range StandardColumns {
			rec = append(rec, *fieldFor(&r, h))
		}
		for _, p := range presets {
			rec = append(rec, r.Presets[p.Column])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// OptionRow is one entry of a list-option table.
type OptionRow struct {
	Label     string
	Number    int
	HasNumber bool
	Selected  bool
}

// ReadOptionTable parses a list-option table. The first column is the label;
// a Value/Number/Code column, when present, is authoritative for the number;
// a Selected column marks preselected options.
func ReadOptionTable(r io.Reader) ([]OptionRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	numCol, selCol := -1, -1
	for i, h := range header {
		switch normHeader(h) {
		case "value", "number", "code":
			if numCol < 0 && i > 0 {
				numCol = i
			}
		case "selected":
			selCol = i
		}
	}

	var out []OptionRow
	for line, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		opt := OptionRow{Label: strings.TrimSpace(rec[0])}
		if numCol >= 0 && numCol < len(rec) && strings.TrimSpace(rec[numCol]) != "" {
			n, err := parseNumber(rec[numCol])
			if err != nil {
				return nil, fmt.Errorf("option table line %d: %w", line+2, err)
			}
			opt.Number, opt.HasNumber = n, true
		}
		if selCol >= 0 && selCol < len(rec) {
			opt.Selected = IsTruthy(rec[selCol])
		}
		out = append(out, opt)
	}
	return out, nil
}

func parseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid option number %q", s)
	}
	return int(f), nil
}

func readTable(r io.Reader) ([][]string, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty table")
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	return records, header, nil
}

func hasColumn(header []string, col string) bool {
	want := normHeader(col)
	for _, h := range header {
		if normHeader(h) == want {
			return true
		}
	}
	return false
}
