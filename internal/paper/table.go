package paper

import (
	"regexp"
	"slices"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
)

// Column orders of the tabular sections, by modifier with any iteration
// digit removed. Modifiers not listed are appended in order of appearance.
var (
	medicationColumns = []string{"item", "otherl2", "route", "route2", "dose", "doseu", "freq", "start", "end", "dur", "add"}
	testingColumns    = []string{"item", "otherl2", "result", "value", "units", "date", "method", "site"}
)

var iterationMod = regexp.MustCompile(`^(\d)(.+)$`)

func formName(form string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(form)), " ", "_")
}

type tableLine struct {
	variable string
	label    string
	cells    map[string]string
}

// buildTable lays out a medication or testing section as a grid: one line
// per variable group and iteration, one column per modifier.
func buildTable(kind string, rows []arc.Row) *Table {
	known := medicationColumns
	if kind == KindTesting {
		known = testingColumns
	}

	var lines []*tableLine
	byKey := map[string]*tableLine{}
	var extra []string
	parents := map[string]arc.Row{}

	for _, r := range rows {
		if r.IsParent() {
			parents[r.SecVari()] = r
		}
	}

	for _, r := range rows {
		iteration, col := "", r.Mod
		if m := iterationMod.FindStringSubmatch(r.Mod); m != nil {
			iteration, col = m[1], m[2]
		}
		key := r.SecVari() + "/" + iteration
		line, ok := byKey[key]
		if !ok {
			label := r.Question
			variable := r.Variable
			if p, ok := parents[r.SecVari()]; ok {
				label, variable = p.Question, p.Variable
			}
			if iteration != "" {
				variable = r.SecVari() + "_" + iteration
			}
			line = &tableLine{variable: variable, label: label, cells: map[string]string{}}
			byKey[key] = line
			lines = append(lines, line)
		}
		if r.IsParent() {
			line.cells[""] = Answer(r)
			continue
		}
		if col == "addi" {
			continue
		}
		if iteration != "" && col == "item" {
			line.label = strings.TrimLeft(r.Question, "-> ")
		}
		line.cells[col] = Answer(r)
		if !slices.Contains(known, col) && !slices.Contains(extra, col) {
			logging.PaperWarn("%s section: no column for modifier %q, appending", kind, col)
			extra = append(extra, col)
		}
	}

	var columns []string
	for _, c := range known {
		for _, l := range lines {
			if _, ok := l.cells[c]; ok {
				columns = append(columns, c)
				break
			}
		}
	}
	columns = append(columns, extra...)
	hasAnswer := slices.ContainsFunc(lines, func(l *tableLine) bool {
		_, ok := l.cells[""]
		return ok
	})
	if hasAnswer {
		columns = append([]string{""}, columns...)
	}

	t := &Table{Columns: columns}
	for _, l := range lines {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = l.cells[c]
		}
		t.Rows = append(t.Rows, &TableRow{Variable: l.variable, Label: l.label, Cells: cells})
	}
	return t
}
