package branch

import (
	"regexp"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
)

// VariableNotFound stands in for the question of an unknown variable.
const VariableNotFound = "Variable not found"

var (
	// [var(N)]='M' checkbox tests.
	checkboxTest = regexp.MustCompile(`\[\s*([^\]\(\s]+)\s*\(\s*([^\)\s]+)\s*\)\s*\]\s*(=|<>|!=)\s*['"]?([^'"\s\)]*)['"]?`)
	// [var] op value
	comparison = regexp.MustCompile(`\[\s*([^\]]+?)\s*\]\s*(<>|!=|>=|<=|=|>|<)\s*(?:'([^']*)'|"([^"]*)"|([^\s\)]+))`)
	logical    = regexp.MustCompile(`(?i)\b(and|or)\b`)
)

// Clause is one comparison of a skip-logic expression.
type Clause struct {
	Variable string
	Op       string
	Value    string
}

// Normalize turns checkbox tests into plain comparisons: [v(N)]='1' becomes
// [v]='N' and [v(N)]='0' becomes [v]<>'N'.
func Normalize(expr string) string {
	return checkboxTest.ReplaceAllStringFunc(expr, func(m string) string {
		sub := checkboxTest.FindStringSubmatch(m)
		variable, code, op, value := sub[1], sub[2], sub[3], sub[4]
		negate := value == "0"
		if op != "=" {
			negate = !negate
		}
		if negate {
			return "[" + variable + "]<>'" + code + "'"
		}
		return "[" + variable + "]='" + code + "'"
	})
}

// Parse extracts the comparisons of expr and the logical operators between
// them. len(logic) == len(clauses)-1 when clauses is non-empty; a missing
// connective reads as "and".
func Parse(expr string) (clauses []Clause, logic []string) {
	expr = Normalize(expr)
	matches := comparison.FindAllStringSubmatchIndex(expr, -1)
	for i, m := range matches {
		c := Clause{Variable: expr[m[2]:m[3]], Op: expr[m[4]:m[5]]}
		for g := 6; g < len(m); g += 2 {
			if m[g] >= 0 {
				c.Value = expr[m[g]:m[g+1]]
				break
			}
		}
		if i > 0 {
			between := expr[matches[i-1][1]:m[0]]
			op := "and"
			if l := logical.FindString(between); l != "" {
				op = strings.ToLower(l)
			}
			logic = append(logic, op)
		}
		clauses = append(clauses, c)
	}
	return clauses, logic
}

// Lookup resolves a variable key to its current row.
type Lookup func(variable string) (arc.Row, bool)

// Rewrite renders expr as readable text: each variable becomes its question,
// each value the label of that code in the variable's answer options (or the
// raw value), and each clause is parenthesised. The result has no brackets.
func Rewrite(expr string, lookup Lookup) string {
	clauses, logic := Parse(expr)
	if len(clauses) == 0 {
		return stripBrackets(strings.TrimSpace(expr))
	}
	var b strings.Builder
	for i, c := range clauses {
		if i > 0 {
			b.WriteString(" " + logic[i-1] + " ")
		}
		question, value := VariableNotFound, c.Value
		if r, ok := lookup(c.Variable); ok {
			question = r.Question
			if label, ok := arc.LabelFor(r.AnswerOptions, c.Value); ok && label != "" {
				value = label
			}
		} else {
			logging.BranchWarn("skip logic references unknown variable %q", c.Variable)
		}
		b.WriteString("(" + stripBrackets(question) + " " + c.Op + " " + stripBrackets(value) + ")")
	}
	return b.String()
}

func stripBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

// RewriteAll returns cat with Branch set on every row that has skip logic,
// rendered against cat itself.
func RewriteAll(cat *arc.Catalogue) *arc.Catalogue {
	out := cat.Clone()
	idx := out.Index()
	lookup := func(v string) (arc.Row, bool) {
		i, ok := idx[v]
		if !ok {
			return arc.Row{}, false
		}
		return out.Rows[i], true
	}
	for i := range out.Rows {
		if strings.TrimSpace(out.Rows[i].SkipLogic) == "" {
			out.Rows[i].Branch = ""
			continue
		}
		out.Rows[i].Branch = Rewrite(out.Rows[i].SkipLogic, lookup)
	}
	return out
}
