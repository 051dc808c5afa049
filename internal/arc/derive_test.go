package arc_test

import (
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitVariable(t *testing.T) {
	tests := []struct {
		in             string
		sec, vari, mod string
	}{
		{"subjid", "subjid", "", ""},
		{"demog_height", "demog", "height", ""},
		{"demog_height_cm", "demog", "height", "cm"},
		{"inclu_disease_otherl2", "inclu", "disease", "otherl2"},
		{"medi_antiviral_0item_extra", "medi", "antiviral", "0item_extra"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sec, vari, mod := arc.SplitVariable(tt.in)
			assert.Equal(t, tt.sec, sec)
			assert.Equal(t, tt.vari, vari)
			assert.Equal(t, tt.mod, mod)
		})
	}
}

func TestSplitSection(t *testing.T) {
	tests := []struct {
		in, name, expla string
	}{
		{"DEMOGRAPHICS", "DEMOGRAPHICS", ""},
		{"VITAL SIGNS (first available data at presentation)", "VITAL SIGNS", "first available data at presentation"},
		{"INCLUSION CRITERIA: all must apply", "INCLUSION CRITERIA", "all must apply"},
		{"A: b (c)", "A", "b (c)"},
	}
	for _, tt := range tests {
		name, expla := arc.SplitSection(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.expla, expla, tt.in)
	}
}

func TestReferencedVariables(t *testing.T) {
	assert.Nil(t, arc.ReferencedVariables(""))
	assert.Equal(t,
		[]string{"readm_prev"},
		arc.ReferencedVariables("[readm_prev] = '1' or [readm_prev]='2'"))
	assert.Equal(t,
		[]string{"inclu_disease", "demog_sex"},
		arc.ReferencedVariables("[inclu_disease(88)]='1' and [ demog_sex ]='2'"))
}

func TestDerive_Dependencies(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("demog_sex", arc.TypeRadio, "Sex", arctest.Answers("1, Male | 2, Female | 3, Other")),
		arctest.Row("demog_sexother", arc.TypeText, "Specify other sex", arctest.Skip("[demog_sex]='3'")),
		arctest.Row("demog_height", arc.TypeNumber, "Height"),
		arctest.Row("demog_height_units", arc.TypeRadio, "Height units", arctest.Validation("units")),
		arctest.Row("preg_preg", arc.TypeRadio, "Pregnant?", arctest.Skip("[demog_sex]='2' and [missing_var]='1'")),
	)

	deps := map[string][]string{}
	for _, r := range cat.Rows {
		deps[r.Variable] = r.Dependencies
	}

	assert.Equal(t, []string{"subjid", "demog_sexother"}, deps["demog_sex"])
	assert.Equal(t, []string{"demog_sex", "subjid"}, deps["demog_sexother"])
	assert.Equal(t, []string{"subjid", "demog_height_units"}, deps["demog_height"])
	// Unknown references are dropped so dependencies stay within the catalogue.
	assert.Equal(t, []string{"demog_sex", "subjid"}, deps["preg_preg"])

	require.NoError(t, arc.VerifyDependencies("test", cat.Rows))
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	in := &arc.Catalogue{Rows: []arc.Row{{Variable: "demog_age", Section: "DEMOGRAPHICS"}}}
	out := arc.Derive(in)
	assert.Empty(t, in.Rows[0].Sec)
	assert.Equal(t, "demog", out.Rows[0].Sec)
	assert.Equal(t, "demog_age", out.Rows[0].SecVari())
}

func TestParenthetical(t *testing.T) {
	p, ok := arc.Parenthetical("Height (cm)")
	require.True(t, ok)
	assert.Equal(t, "cm", p)
	assert.Equal(t, "Height", arc.StripParenthetical("Height (cm)"))
	assert.Equal(t, "Weight", arc.StripParenthetical("Weight (select units)"))
	_, ok = arc.Parenthetical("Weight")
	assert.False(t, ok)
}
