package selection

import (
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"
	"bridge/internal/lists"
	"bridge/internal/phrases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(t *testing.T) phrases.Pair {
	t.Helper()
	p, err := phrases.PairFor(phrases.English)
	require.NoError(t, err)
	return p
}

func TestResolve_StaticUnits(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("demog_height", arc.TypeNumber, "Height"),
		arctest.Row("demog_height_cm", arc.TypeNumber, "Height (cm)", arctest.Range("0", "250")),
		arctest.Row("demog_height_in", arc.TypeNumber, "Height (in)", arctest.Range("0", "100")),
		arctest.Row("demog_height_units", arc.TypeRadio, "Height (select units)", arctest.Validation("units")),
		arctest.Row("demog_sex", arc.TypeRadio, "Sex", arctest.Answers("1, Male | 2, Female")),
	)

	res, err := Resolve([]string{"demog_height_cm"}, cat, nil, pair(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"subjid", "demog_height", "demog_height_units"}, res.Variables())
	assert.Equal(t, []string{"demog_height_cm"}, res.Deleted)
	assert.False(t, res.Contains("demog_height_in"))

	base, _ := res.Catalogue.Lookup("demog_height")
	assert.Equal(t, arc.TypeText, base.Type)
	assert.Equal(t, arc.ValidationNumber, base.Validation)
	radio, _ := res.Catalogue.Lookup("demog_height_units")
	assert.Equal(t, arc.TypeRadio, radio.Type)
	assert.Len(t, arc.ParseOptions(radio.AnswerOptions), 2)
}

func TestResolve_DynamicUnitsNeedMarker(t *testing.T) {
	cat := arctest.Catalogue("v1.1.0",
		arctest.Subjid(),
		arctest.Row("vital_hr", arc.TypeNumber, "Heart rate"),
		arctest.Row("vital_hr_a", arc.TypeNumber, "Heart rate (bpm)"),
		arctest.Row("vital_hr_b", arc.TypeNumber, "Heart rate (bps)"),
		arctest.Row("vital_temp", arc.TypeRadio, "Temperature (select units)"),
		arctest.Row("vital_temp_c", arc.TypeNumber, "Temperature (°C)", arctest.Range("25", "45")),
		arctest.Row("vital_temp_f", arc.TypeNumber, "Temperature (°F)", arctest.Range("77", "113")),
	)

	res, err := Resolve([]string{"vital_hr_a", "vital_temp_c"}, cat, nil, pair(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"subjid", "vital_hr", "vital_hr_a", "vital_temp", "vital_temp_units"}, res.Variables())
	assert.Equal(t, []string{"vital_temp_c"}, res.Deleted)
	assert.False(t, res.Contains("vital_hr_units"))

	hr, _ := res.Catalogue.Lookup("vital_hr_a")
	assert.Equal(t, arc.TypeNumber, hr.Type)
	assert.Equal(t, "Heart rate (bpm)", hr.Question)
}

func TestResolve_ClosureAndHiddenSiblings(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("readm_prev", arc.TypeRadio, "Previously admitted", arctest.Form("follow"),
			arctest.Answers("1, Yes | 2, No | 3, Unknown")),
		arctest.Row("readm_prev_where", arc.TypeText, "Where", arctest.Form("follow"),
			arctest.Skip("[readm_prev]='1' or [readm_prev]='2'")),
		arctest.Row("readm_prev_txt", arc.TypeText, "Notes", arctest.Form("follow")),
		arctest.Row("readm_other", arc.TypeText, "Unrelated", arctest.Form("follow")),
	)

	res, err := Resolve([]string{"readm_prev_where", "ghost"}, cat, nil, pair(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"subjid", "readm_prev", "readm_prev_where", "readm_prev_txt"}, res.Variables())
	assert.Equal(t, []string{"ghost"}, res.Unknown)

	where, _ := res.Catalogue.Lookup("readm_prev_where")
	assert.Equal(t, "(Previously admitted = Yes) or (Previously admitted = No)", where.Branch)
	for _, r := range res.Catalogue.Rows {
		assert.Contains(t, r.Dependencies, arc.SubjectID)
	}
}

func TestResolve_AppliesChoices(t *testing.T) {
	base := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("inclu_disease", arc.TypeUserList, "Disease", arctest.List("inclusion_Diseases")),
	)
	cat, choices, err := lists.Expand(base, lists.Tables{"inclusion_Diseases": {
		{Label: "Adenovirus", Number: 1, HasNumber: true},
		{Label: "Mpox", Number: 5, HasNumber: true, Selected: true},
	}}, pair(t))
	require.NoError(t, err)
	require.NoError(t, choices.Select("inclu_disease", []string{"Adenovirus"}))

	res, err := Resolve([]string{"inclu_disease"}, cat, choices, pair(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"subjid", "inclu_disease", "inclu_disease_otherl2", "inclu_disease_otherl3"}, res.Variables())

	parent, _ := res.Catalogue.Lookup("inclu_disease")
	assert.Equal(t, "1, Adenovirus | 88, Other", parent.AnswerOptions)
	l2, _ := res.Catalogue.Lookup("inclu_disease_otherl2")
	assert.Equal(t, "5, Mpox | 88, Other", l2.AnswerOptions)
	require.NoError(t, lists.Verify(res.Catalogue, choices))
}

func TestResolve_ListIterationsPulledIn(t *testing.T) {
	base := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("medi_drug", arc.TypeList, "Antiviral", arctest.Answers("1, Yes | 0, No"), arctest.List("drugs_Antivirals")),
	)
	cat, choices, err := lists.Expand(base, lists.Tables{"drugs_Antivirals": {{Label: "Remdesivir"}}}, pair(t))
	require.NoError(t, err)

	res, err := Resolve([]string{"medi_drug"}, cat, choices, pair(t))
	require.NoError(t, err)
	for _, v := range []string{"medi_drug_0item", "medi_drug_4item", "medi_drug_0otherl2", "medi_drug_3addi"} {
		assert.True(t, res.Contains(v), v)
	}
	assert.False(t, res.Contains("medi_drug_4addi"))
}

func TestResolve_OrphanModifierIsFatal(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("comp_ards_date", arc.TypeDateDMY, "ARDS onset"),
	)
	_, err := Resolve([]string{"comp_ards_date"}, cat, nil, pair(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, arc.ErrInvariantViolated)
	assert.True(t, arc.IsFatal(err))
}

func TestResolve_UnsupportedVersion(t *testing.T) {
	cat := arctest.Catalogue("v0.1.0", arctest.Subjid())
	_, err := Resolve(nil, cat, nil, pair(t))
	assert.ErrorIs(t, err, arc.ErrUnsupportedSchemaEpoch)
}
