package arc_test

import (
	"bytes"
	"strings"
	"testing"

	"bridge/internal/arc"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleARC = "\ufeffForm,Section,Variable,Type,Question,Answer Options,Validation,Minimum,Maximum,List,Skip Logic,Definition,Completion Guideline,preset_ARChetype_Mpox,Notes\n" +
	"presentation,DEMOGRAPHICS,subjid,text,Participant ID,,,,,,,,,1,\n" +
	"presentation,DEMOGRAPHICS,demog_sex,Radio,Sex at birth,\"1, Male | 2, Female\",,,,,,,,1,internal\n" +
	"presentation,\"INCLUSION (all)\",inclu_disease,user_list,Suspected disease,,,,,inclusion_Diseases,,,,,\n"

func TestReadCatalogue(t *testing.T) {
	cat, err := arc.ReadCatalogue(strings.NewReader(sampleARC))
	require.NoError(t, err)
	require.Len(t, cat.Rows, 3)

	sex := cat.Rows[1]
	assert.Equal(t, "demog_sex", sex.Variable)
	assert.Equal(t, arc.TypeRadio, sex.Type, "types are lower-cased")
	assert.Equal(t, "1, Male | 2, Female", sex.AnswerOptions)
	assert.Equal(t, "Sex at birth", sex.QuestionEnglish)
	assert.Equal(t, map[string]string{"preset_ARChetype_Mpox": "1"}, sex.Presets)
	assert.Equal(t, map[string]string{"Notes": "internal"}, sex.Extra)
	assert.Equal(t, "inclusion_Diseases", cat.Rows[2].List)

	assert.Equal(t, "Form", cat.Columns[0], "BOM stripped")
	assert.Equal(t, []arc.Preset{{Group: "ARChetype", Name: "Mpox", Column: "preset_ARChetype_Mpox"}}, cat.Presets())
}

func TestReadCatalogue_Errors(t *testing.T) {
	_, err := arc.ReadCatalogue(strings.NewReader(""))
	assert.Error(t, err)
	_, err = arc.ReadCatalogue(strings.NewReader("Form,Question\na,b\n"))
	assert.Error(t, err)
	_, err = arc.ReadCatalogue(strings.NewReader("Variable,Question\n,b\n"))
	assert.Error(t, err)
}

func TestWriteCatalogue_RoundTrip(t *testing.T) {
	cat, err := arc.ReadCatalogue(strings.NewReader(sampleARC))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, arc.WriteCatalogue(&buf, cat))

	again, err := arc.ReadCatalogue(&buf)
	require.NoError(t, err)
	for i := range cat.Rows {
		cat.Rows[i].Extra = nil // extra columns are not written back
	}
	if diff := cmp.Diff(cat.Rows, again.Rows); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOptionTable(t *testing.T) {
	t.Run("label and selected only", func(t *testing.T) {
		opts, err := arc.ReadOptionTable(strings.NewReader("Disease,Selected\nAdenovirus,0\nMpox,1\n\n"))
		require.NoError(t, err)
		assert.Equal(t, []arc.OptionRow{
			{Label: "Adenovirus"},
			{Label: "Mpox", Selected: true},
		}, opts)
	})

	t.Run("authoritative numbers", func(t *testing.T) {
		opts, err := arc.ReadOptionTable(strings.NewReader("Country,Value,Selected\nEstonia,5,1\nFinland,7.0,\n"))
		require.NoError(t, err)
		assert.Equal(t, []arc.OptionRow{
			{Label: "Estonia", Number: 5, HasNumber: true, Selected: true},
			{Label: "Finland", Number: 7, HasNumber: true},
		}, opts)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := arc.ReadOptionTable(strings.NewReader("Country,Value\nEstonia,five\n"))
		assert.Error(t, err)
	})
}
