package arc

import (
	"fmt"
	"slices"
)

// VerifyParents checks that every modifier row has a parent row (same
// sec_vari, empty mod) among rows. Rows for which exempt returns true are
// skipped; exempt may be nil.
func VerifyParents(stage string, rows []Row, exempt func(Row) bool) error {
	parents := make(map[string]bool)
	for _, r := range rows {
		if r.IsParent() {
			parents[r.SecVari()] = true
		}
	}
	for _, r := range rows {
		if r.IsParent() || parents[r.SecVari()] {
			continue
		}
		if exempt != nil && exempt(r) {
			continue
		}
		return &InvariantError{
			Stage:    stage,
			Variable: r.Variable,
			Detail:   fmt.Sprintf("modifier %q has no parent %q", r.Mod, r.SecVari()),
		}
	}
	return nil
}

// VerifyDependencies checks that every row depends on subjid and only on
// variables present in rows.
func VerifyDependencies(stage string, rows []Row) error {
	idx := IndexRows(rows)
	for _, r := range rows {
		if !slices.Contains(r.Dependencies, SubjectID) {
			return &InvariantError{Stage: stage, Variable: r.Variable, Detail: "dependencies lack " + SubjectID}
		}
		for _, d := range r.Dependencies {
			if _, ok := idx[d]; !ok && d != SubjectID {
				return &InvariantError{Stage: stage, Variable: r.Variable, Detail: fmt.Sprintf("dependency %q not in catalogue", d)}
			}
		}
	}
	return nil
}

// VerifyOptions checks that option codes are unique within each row.
func VerifyOptions(stage string, rows []Row) error {
	for _, r := range rows {
		seen := make(map[string]bool)
		for _, o := range ParseOptions(r.AnswerOptions) {
			if seen[o.Code] {
				return &InvariantError{Stage: stage, Variable: r.Variable, Detail: fmt.Sprintf("duplicate option code %q", o.Code)}
			}
			seen[o.Code] = true
		}
	}
	return nil
}
