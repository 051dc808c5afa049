package arc

import (
	"slices"
	"strings"
)

// Insert merges rows into dst and returns the result. For each row R:
//
//   - if R.Variable is already present, it replaces that row;
//   - else if a prefix of R.Variable cut at an underscore (longest first) names
//     a present row B, R goes right after the last row whose variable starts with B;
//   - else R goes before the first row whose sec_vari comes later in order,
//     or at the end.
//
// order is the global sec_vari order of the full catalogue. dst is not modified.
func Insert(dst []Row, rows []Row, order []string) []Row {
	out := slices.Clone(dst)
	rank := make(map[string]int, len(order))
	for i, sv := range order {
		if _, dup := rank[sv]; !dup {
			rank[sv] = i
		}
	}

	for _, r := range rows {
		if r.Sec == "" {
			DeriveRow(&r)
		}
		if i := indexOf(out, r.Variable); i >= 0 {
			out[i] = r
			continue
		}
		if base, ok := existingBase(out, r.Variable); ok {
			last := -1
			for i, o := range out {
				if strings.HasPrefix(o.Variable, base) {
					last = i
				}
			}
			out = slices.Insert(out, last+1, r)
			continue
		}
		out = slices.Insert(out, orderedPosition(out, r, rank), r)
	}
	return out
}

func indexOf(rows []Row, variable string) int {
	return slices.IndexFunc(rows, func(o Row) bool { return o.Variable == variable })
}

// existingBase finds the longest underscore-delimited prefix of variable
// that is itself a variable in rows.
func existingBase(rows []Row, variable string) (string, bool) {
	for cut := strings.LastIndex(variable, "_"); cut > 0; cut = strings.LastIndex(variable[:cut], "_") {
		base := variable[:cut]
		if indexOf(rows, base) >= 0 {
			return base, true
		}
	}
	return "", false
}

func orderedPosition(rows []Row, r Row, rank map[string]int) int {
	own, known := rank[r.SecVari()]
	if !known {
		return len(rows)
	}
	for i, o := range rows {
		if k, ok := rank[o.SecVari()]; ok && k > own {
			return i
		}
	}
	return len(rows)
}
