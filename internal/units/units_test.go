package units

import (
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"
	"bridge/internal/phrases"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(t *testing.T) phrases.Pair {
	t.Helper()
	p, err := phrases.PairFor(phrases.English)
	require.NoError(t, err)
	return p
}

func staticCatalogue() *arc.Catalogue {
	return arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("demog_height", arc.TypeNumber, "Height"),
		arctest.Row("demog_height_cm", arc.TypeNumber, "Height (cm)", arctest.Range("0", "250")),
		arctest.Row("demog_height_in", arc.TypeNumber, "Height (in)", arctest.Range("0", "98.5")),
		arctest.Row("demog_height_units", arc.TypeRadio, "Height (select units)",
			arctest.Validation("units"), arctest.Answers("1, cm | 2, in")),
		arctest.Row("demog_weight", arc.TypeNumber, "Weight (kg)"),
	)
}

func dynamicCatalogue() *arc.Catalogue {
	return arctest.Catalogue("v1.1.0",
		arctest.Subjid(),
		arctest.Row("vital_temp", arc.TypeRadio, "Temperature (select units)", arctest.Skip("[subjid]<>''")),
		arctest.Row("vital_temp_c", arc.TypeNumber, "Temperature (°C)", arctest.Range("25", "45")),
		arctest.Row("vital_temp_f", arc.TypeNumber, "Temperature (°F)", arctest.Range("77", "113")),
		arctest.Row("vital_hr", arc.TypeNumber, "Heart rate"),
		arctest.Row("vital_hr_unit", arc.TypeNumber, "Heart rate (bpm)"),
	)
}

func TestRulesFor(t *testing.T) {
	r, err := RulesFor("v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, arc.EpochStaticUnits, r.Epoch())

	r, err = RulesFor("v1.2.0")
	require.NoError(t, err)
	assert.Equal(t, arc.EpochDynamicUnits, r.Epoch())

	_, err = RulesFor("v0.9.0")
	assert.ErrorIs(t, err, arc.ErrUnsupportedSchemaEpoch)
}

func TestGroups(t *testing.T) {
	groups := Groups(ForEpoch(arc.EpochStaticUnits), staticCatalogue())
	require.Len(t, groups, 1)
	assert.Equal(t, "demog_height", groups[0].SecVari)
	assert.Equal(t, "demog_height_units", groups[0].Parent.Variable)
	assert.Len(t, groups[0].Units, 2)

	groups = Groups(ForEpoch(arc.EpochDynamicUnits), dynamicCatalogue())
	require.Len(t, groups, 1, "vital_hr lacks the marker and is never a group")
	assert.Equal(t, "vital_temp", groups[0].Parent.Variable)
}

func TestNormalize_Static(t *testing.T) {
	rules := ForEpoch(arc.EpochStaticUnits)
	got := rules.Normalize([]string{"demog_height_cm"}, staticCatalogue())
	assert.Equal(t, []string{"demog_height_cm", "demog_height"}, got)

	got = rules.Normalize([]string{"demog_weight"}, staticCatalogue())
	assert.Equal(t, []string{"demog_weight"}, got)
}

func TestNormalize_Dynamic(t *testing.T) {
	rules := ForEpoch(arc.EpochDynamicUnits)
	got := rules.Normalize([]string{"vital_temp_f"}, dynamicCatalogue())
	assert.Equal(t, []string{"vital_temp_f", "vital_temp"}, got)

	got = rules.Normalize([]string{"vital_hr_unit"}, dynamicCatalogue())
	assert.Equal(t, []string{"vital_hr_unit"}, got)
}

func TestSynthesize_Static(t *testing.T) {
	full := staticCatalogue()
	rules := ForEpoch(arc.EpochStaticUnits)
	selected := []arc.Row{full.Rows[0], full.Rows[1], full.Rows[2], full.Rows[4]}

	res := Synthesize(rules, selected, full, pair(t))
	assert.Equal(t, []string{"demog_height_cm"}, res.Deleted)
	assert.Equal(t, []string{"demog_height"}, res.Synthesised)

	vars := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		vars[i] = r.Variable
	}
	assert.Equal(t, []string{"subjid", "demog_height", "demog_height_units"}, vars)

	base := res.Rows[1]
	assert.Equal(t, arc.TypeText, base.Type)
	assert.Equal(t, arc.ValidationNumber, base.Validation)
	assert.Equal(t, "0", base.Minimum)
	assert.Equal(t, "250", base.Maximum)
	assert.Equal(t, "Height", base.Question)

	radio := res.Rows[2]
	assert.Equal(t, arc.TypeRadio, radio.Type)
	assert.Equal(t, "1, cm | 2, in", radio.AnswerOptions)
	assert.Equal(t, "Height (Units)", radio.Question)
	assert.True(t, IsSynthesised(radio, res.Synthesised))
}

func TestSynthesize_Dynamic(t *testing.T) {
	full := dynamicCatalogue()
	rules := ForEpoch(arc.EpochDynamicUnits)

	res := Synthesize(rules, full.Rows, full, pair(t))
	assert.ElementsMatch(t, []string{"vital_temp_c", "vital_temp_f"}, res.Deleted)

	base, ok := full.WithRows(res.Rows).Lookup("vital_temp")
	require.True(t, ok)
	assert.Equal(t, "Temperature", base.Question)
	assert.Equal(t, "25", base.Minimum)
	assert.Equal(t, "113", base.Maximum)
	assert.Equal(t, "[subjid]<>''", base.SkipLogic)

	radio, ok := full.WithRows(res.Rows).Lookup("vital_temp_units")
	require.True(t, ok)
	assert.Equal(t, "1, °C | 2, °F", radio.AnswerOptions)
}

func TestSynthesize_Idempotent(t *testing.T) {
	for name, full := range map[string]*arc.Catalogue{"static": staticCatalogue(), "dynamic": dynamicCatalogue()} {
		t.Run(name, func(t *testing.T) {
			rules, err := RulesFor(full.Version)
			require.NoError(t, err)
			once := Synthesize(rules, full.Rows, full, pair(t))
			twice := Synthesize(rules, once.Rows, full, pair(t))
			if diff := cmp.Diff(once.Rows, twice.Rows); diff != "" {
				t.Errorf("second application changed rows (-once +twice):\n%s", diff)
			}
			assert.Empty(t, twice.Deleted)
		})
	}
}

func TestSynthesize_SingleUnitWarns(t *testing.T) {
	full := arctest.Catalogue("v1.1.0",
		arctest.Subjid(),
		arctest.Row("vital_rr", arc.TypeRadio, "Respiratory rate (select units)"),
		arctest.Row("vital_rr_min", arc.TypeNumber, "Respiratory rate (breaths/min)"),
	)
	res := Synthesize(ForEpoch(arc.EpochDynamicUnits), full.Rows, full, pair(t))
	if diff := cmp.Diff(full.Rows, res.Rows); diff != "" {
		t.Errorf("single-unit group changed (-want +got):\n%s", diff)
	}
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "vital_rr")
}

func TestBounds(t *testing.T) {
	lo, hi := bounds([]arc.Row{{Minimum: "", Maximum: "x"}, {Minimum: "1.5", Maximum: "10"}, {Minimum: "0.25", Maximum: ""}})
	assert.Equal(t, "0.25", lo)
	assert.Equal(t, "10", hi)

	lo, hi = bounds([]arc.Row{{}})
	assert.Empty(t, lo)
	assert.Empty(t, hi)
}

func TestSynthesize_DynamicUnmarkedGroupUntouched(t *testing.T) {
	full := arctest.Catalogue("v1.1.0",
		arctest.Subjid(),
		arctest.Row("vital_hr", arc.TypeNumber, "Heart rate"),
		arctest.Row("vital_hr_a", arc.TypeNumber, "Heart rate (bpm)", arctest.Range("0", "250")),
		arctest.Row("vital_hr_b", arc.TypeNumber, "Heart rate (bps)", arctest.Range("0", "5")),
	)
	rules := ForEpoch(arc.EpochDynamicUnits)
	assert.Empty(t, Groups(rules, full))

	res := Synthesize(rules, full.Rows, full, pair(t))
	if diff := cmp.Diff(full.Rows, res.Rows); diff != "" {
		t.Errorf("unmarked group changed (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.Deleted)
	assert.Empty(t, res.Synthesised)
	assert.False(t, full.WithRows(res.Rows).Has("vital_hr_units"))

	got := rules.Normalize([]string{"vital_hr_a"}, full)
	assert.Equal(t, []string{"vital_hr_a"}, got)
}
