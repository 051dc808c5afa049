package paper

import (
	"slices"

	"bridge/internal/arc"
	"bridge/internal/branch"
	"bridge/internal/logging"
)

// DefaultTableWidth is the printable width, in character cells, assumed when
// none is configured.
const DefaultTableWidth = 120

// rowBudget is the width of a row in sixths.
const rowBudget = 6

// Engine lays out selections. The zero value is not usable; use New.
type Engine struct {
	tableWidth int
	sixth      int
}

// New returns an engine for a table tableWidth cells wide.
func New(tableWidth int) *Engine {
	if tableWidth <= 0 {
		tableWidth = DefaultTableWidth
	}
	sixth := tableWidth / rowBudget
	if sixth < 1 {
		sixth = 1
	}
	return &Engine{tableWidth: tableWidth, sixth: sixth}
}

// Layout builds the paper form of a resolved selection.
func (e *Engine) Layout(crf string, cat *arc.Catalogue) *Document {
	timer := logging.StartTimer(logging.CategoryPaper, "Layout")
	defer timer.Stop()

	doc := &Document{CRF: crf, Version: cat.Version, Language: cat.Language}
	var form *Form
	var section *Section
	var block []arc.Row

	flush := func() {
		if section != nil && len(block) > 0 {
			section.Subsections = e.layoutSection(section.Kind, block)
			form.Sections = append(form.Sections, section)
		}
		block = nil
	}

	for _, r := range cat.Rows {
		if form == nil || form.Title != r.Form {
			flush()
			section = nil
			form = &Form{Name: formName(r.Form), Title: r.Form}
			doc.Forms = append(doc.Forms, form)
		}
		if section == nil || section.Title != r.SecName || section.Explanation != r.Expla {
			flush()
			section = &Section{Title: r.SecName, Explanation: r.Expla, Kind: kindOf(r)}
		}
		block = append(block, r)
	}
	flush()
	logging.PaperDebug("laid out %s: %d forms", crf, len(doc.Forms))
	return doc
}

func kindOf(r arc.Row) string {
	switch r.Sec {
	case "medi":
		return KindMedication
	case "test":
		return KindTesting
	}
	return KindStandard
}

func (e *Engine) layoutSection(kind string, rows []arc.Row) []*Subsection {
	if kind == KindMedication || kind == KindTesting {
		return []*Subsection{{Style: StyleTable, Table: buildTable(kind, rows)}}
	}
	var out []*Subsection
	for _, s := range splitSubsections(rows) {
		sub := &Subsection{Style: s.style}
		for _, ss := range splitSubsubsections(s.rows) {
			sub.Subsubsections = append(sub.Subsubsections, e.pack(ss))
		}
		out = append(out, sub)
	}
	return out
}

// ownDeps returns the dependencies of r other than subjid.
func ownDeps(r arc.Row) []string {
	var out []string
	for _, d := range r.Dependencies {
		if d != arc.SubjectID && d != r.Variable {
			out = append(out, d)
		}
	}
	return out
}

// skipDeps returns the variables r's skip logic references.
func skipDeps(r arc.Row) []string {
	return arc.ReferencedVariables(r.SkipLogic)
}

type subsection struct {
	style Style
	rows  []arc.Row
}

// splitSubsections walks rows accumulating the dependencies and names of the
// current subsection. A row whose dependencies are disjoint from both starts
// a bordered subsection, or a grey one when it depends on an earlier
// subsection. Descriptive rows stand alone as headings and unconditional
// runs are borderless.
func splitSubsections(rows []arc.Row) []subsection {
	var out []subsection
	var cur subsection
	deps := map[string]bool{}
	names := map[string]bool{}
	earlier := map[string]bool{}

	finalize := func() {
		if len(cur.rows) > 0 {
			if cur.style == "" {
				cur.style = StyleBorderless
				if len(deps) > 0 {
					cur.style = StyleBlack
				}
			}
			out = append(out, cur)
			for n := range names {
				earlier[n] = true
			}
		}
		cur = subsection{}
		clear(deps)
		clear(names)
	}

	for _, r := range rows {
		d := skipDeps(r)
		switch {
		case r.Type == arc.TypeDescriptive:
			finalize()
			out = append(out, subsection{style: StyleHeading, rows: []arc.Row{r}})
			earlier[r.Variable] = true
			continue
		case len(d) == 0:
			if len(deps) > 0 {
				finalize()
			}
		case !intersects(d, deps) && !intersects(d, names):
			if len(cur.rows) > 0 {
				finalize()
			}
			if intersects(d, earlier) {
				cur.style = StyleGrey
			}
		}
		cur.rows = append(cur.rows, r)
		names[r.Variable] = true
		for _, v := range d {
			deps[v] = true
		}
	}
	finalize()
	return out
}

func intersects(vs []string, set map[string]bool) bool {
	return slices.ContainsFunc(vs, func(v string) bool { return set[v] })
}

type subsubsection struct {
	header  *arc.Row
	caption string
	rows    []arc.Row
}

// splitSubsubsections starts a conditional block at every row the next row
// depends on; the block runs while rows keep depending on that header.
func splitSubsubsections(rows []arc.Row) []subsubsection {
	var out []subsubsection
	var cur subsubsection
	flush := func() {
		if cur.header != nil || len(cur.rows) > 0 {
			out = append(out, cur)
		}
		cur = subsubsection{}
	}

	for i, r := range rows {
		if i+1 < len(rows) && slices.Contains(skipDeps(rows[i+1]), r.Variable) {
			flush()
			h := r
			cur.header = &h
			cur.caption = caption(r, rows[i+1])
			continue
		}
		if cur.header != nil && !slices.Contains(skipDeps(r), cur.header.Variable) {
			flush()
		}
		cur.rows = append(cur.rows, r)
	}
	flush()
	return out
}

// caption renders "If <label>:" for the value of header that child's skip
// logic tests.
func caption(header, child arc.Row) string {
	clauses, _ := branch.Parse(child.SkipLogic)
	for _, c := range clauses {
		if c.Variable != header.Variable {
			continue
		}
		if label, ok := arc.LabelFor(header.AnswerOptions, c.Value); ok && label != "" {
			return "If " + label + ":"
		}
		if c.Value != "" {
			return "If " + c.Value + ":"
		}
	}
	return ""
}

// pack fills rows of at most six sixths.
func (e *Engine) pack(ss subsubsection) *Subsubsection {
	out := &Subsubsection{Caption: ss.caption}
	if ss.header != nil {
		h := e.field(*ss.header)
		out.Parent = ss.header.Variable
		out.Header = h
		out.IsConditional = true
		out.Rows = append(out.Rows, &Row{Fields: []*Field{h}, Shade: ShadeConditional})
	}

	var cur *Row
	for _, r := range ss.rows {
		f := e.field(r)
		if r.Type == arc.TypeDescriptive {
			f.QuestionWidth, f.AnswerWidth = rowBudget, 0
			out.Rows = append(out.Rows, &Row{Fields: []*Field{f}, Shade: ShadeDescriptive})
			cur = nil
			continue
		}
		if cur == nil || cur.Width()+f.Width() > rowBudget {
			cur = &Row{Shade: ShadeNone}
			out.Rows = append(out.Rows, cur)
		}
		cur.Fields = append(cur.Fields, f)
	}
	return out
}

func (e *Engine) field(r arc.Row) *Field {
	answer := Answer(r)
	q, a := e.widths(r.Question, answer, isDateValued(r), isOpenText(r))
	return &Field{
		Variable:      r.Variable,
		Type:          r.Type,
		Question:      r.Question,
		Answer:        answer,
		QuestionWidth: q,
		AnswerWidth:   a,
		Dependencies:  ownDeps(r),
	}
}
