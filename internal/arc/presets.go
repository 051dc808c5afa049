package arc

import "strings"

// PresetPrefix marks template membership columns.
const PresetPrefix = "preset_"

// Preset is a named template derived from a preset_* column.
type Preset struct {
	Group  string
	Name   string
	Column string
}

// Label renders the preset as "Group: Name".
func (p Preset) Label() string {
	if p.Name == "" {
		return p.Group
	}
	return p.Group + ": " + p.Name
}

// PresetFromColumn parses preset_{group}_{name words...}. Words after the
// group are rejoined with spaces.
func PresetFromColumn(column string) (Preset, bool) {
	if !strings.HasPrefix(column, PresetPrefix) {
		return Preset{}, false
	}
	parts := strings.Split(strings.TrimPrefix(column, PresetPrefix), "_")
	if len(parts) == 0 || parts[0] == "" {
		return Preset{}, false
	}
	return Preset{
		Group:  parts[0],
		Name:   strings.Join(parts[1:], " "),
		Column: column,
	}, true
}

// Presets returns the presets of the catalogue in column order.
func (c *Catalogue) Presets() []Preset {
	var out []Preset
	for _, col := range c.Columns {
		if p, ok := PresetFromColumn(col); ok {
			out = append(out, p)
		}
	}
	return out
}

// FindPreset looks up a preset by group and name (case-insensitive).
func (c *Catalogue) FindPreset(group, name string) (Preset, bool) {
	for _, p := range c.Presets() {
		if strings.EqualFold(p.Group, group) && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetVariables returns the variables whose cell in column is truthy.
func (c *Catalogue) PresetVariables(column string) []string {
	var out []string
	for _, r := range c.Rows {
		if IsTruthy(r.Presets[column]) {
			out = append(out, r.Variable)
		}
	}
	return out
}

// IsTruthy interprets a spreadsheet cell as a boolean.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "0.0", "false", "no", "n", "nan", "none":
		return false
	}
	return true
}
