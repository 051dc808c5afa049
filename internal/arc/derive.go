package arc

import (
	"slices"
	"strings"
)

// SplitVariable splits a variable key at its first two underscores.
// mod is empty for the parent row of a group.
func SplitVariable(variable string) (sec, vari, mod string) {
	parts := strings.SplitN(variable, "_", 3)
	sec = parts[0]
	if len(parts) > 1 {
		vari = parts[1]
	}
	if len(parts) > 2 {
		mod = parts[2]
	}
	return sec, vari, mod
}

// SplitSection splits a section title on its first "(" or ":".
func SplitSection(section string) (name, expla string) {
	i := strings.IndexAny(section, "(:")
	if i < 0 {
		return strings.TrimSpace(section), ""
	}
	name = strings.TrimSpace(section[:i])
	expla = strings.TrimSpace(section[i+1:])
	if section[i] == '(' {
		expla = strings.TrimSpace(strings.TrimSuffix(expla, ")"))
	}
	return name, expla
}

// DeriveRow fills the derived columns of r from Variable and Section.
func DeriveRow(r *Row) {
	r.Sec, r.Vari, r.Mod = SplitVariable(r.Variable)
	r.SecName, r.Expla = SplitSection(r.Section)
}

// ReferencedVariables returns the variables named in a skip-logic expression,
// in order of first appearance. "[var(88)]" yields "var".
func ReferencedVariables(skipLogic string) []string {
	if skipLogic == "" {
		return nil
	}
	var out []string
	tokens := strings.Split(skipLogic, "[")
	for _, tok := range tokens[1:] {
		end := strings.Index(tok, "]")
		if end < 0 {
			continue
		}
		name := tok[:end]
		if p := strings.Index(name, "("); p >= 0 {
			name = name[:p]
		}
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Derive returns a copy of c with derived columns and dependencies computed.
func Derive(c *Catalogue) *Catalogue {
	out := c.Clone()
	for i := range out.Rows {
		DeriveRow(&out.Rows[i])
	}
	ComputeDependencies(out.Rows)
	return out
}

// ComputeDependencies sets Dependencies on every row in place.
//
// dependencies[v] holds the catalogue variables referenced by v's skip logic,
// then subjid. A variable named base+"other" or base+"units" (optionally with
// a separating underscore) is appended to dependencies[base]. The closure is
// one level: dependencies of dependencies are not followed.
func ComputeDependencies(rows []Row) {
	idx := IndexRows(rows)
	for i := range rows {
		var deps []string
		for _, ref := range ReferencedVariables(rows[i].SkipLogic) {
			if _, ok := idx[ref]; ok && ref != SubjectID {
				deps = append(deps, ref)
			}
		}
		deps = append(deps, SubjectID)
		rows[i].Dependencies = deps
	}
	for _, r := range rows {
		base, ok := companionBase(r.Variable)
		if !ok {
			continue
		}
		j, exists := idx[base]
		if !exists || base == r.Variable {
			continue
		}
		if !slices.Contains(rows[j].Dependencies, r.Variable) {
			rows[j].Dependencies = append(rows[j].Dependencies, r.Variable)
		}
	}
}

// companionBase strips an "other" or "units" suffix from variable.
func companionBase(variable string) (string, bool) {
	for _, suffix := range []string{"other", "units"} {
		if strings.HasSuffix(variable, suffix) {
			base := strings.TrimSuffix(strings.TrimSuffix(variable, suffix), "_")
			if base != "" {
				return base, true
			}
		}
	}
	return "", false
}
