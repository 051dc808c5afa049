package redcap

import (
	"bytes"
	"encoding/csv"
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteType(t *testing.T) {
	tests := []struct {
		in, typ, validation string
	}{
		{arc.TypeUserList, arc.TypeRadio, ""},
		{arc.TypeMultiList, arc.TypeCheckbox, ""},
		{arc.TypeList, arc.TypeRadio, ""},
		{arc.TypeDateDMY, arc.TypeText, "date_dmy"},
		{arc.TypeDatetimeDMY, arc.TypeText, "datetime_dmy"},
		{arc.TypeNumber, arc.TypeText, "number"},
		{arc.TypeInteger, arc.TypeText, "integer"},
		{arc.TypeDropdown, arc.TypeDropdown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, validation := RewriteType(tt.in)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.validation, validation)
		})
	}
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, "RH", Alignment(arc.TypeRadio, "1, Yes | 0, No | 99, Unknown"))
	assert.Equal(t, "", Alignment(arc.TypeRadio, "1, A | 2, B | 3, C | 4, D"))
	assert.Equal(t, "", Alignment(arc.TypeCheckbox, "1, A very long label indeed | 2, Another long one"))
	assert.Equal(t, "RH", Alignment(arc.TypeCheckbox, "1, A | 2, B"))
	assert.Equal(t, "", Alignment(arc.TypeDropdown, "1, Yes | 0, No"))
}

func TestFields(t *testing.T) {
	rows := []arc.Row{
		arctest.Subjid(),
		arctest.Row("demog_sex", arc.TypeRadio, "Sex", arctest.Answers("1, Yes | 0, No | 99, Unknown")),
		arctest.Row("demog_dob", arc.TypeDateDMY, "Date of birth", arctest.Section("DATES")),
		arctest.Row("demog_age", arc.TypeNumber, "Age", arctest.Section("DATES"), arctest.Range("0", "120")),
		arctest.Row("demog_weird", "matrix", "Unsupported", arctest.Section("DATES")),
		arctest.Row("demog_height_units", arc.TypeRadio, "Units", arctest.Section("DATES"),
			arctest.Validation("units"), arctest.Answers("1, cm | 2, in")),
		arctest.Row("inclu_disease", arc.TypeUserList, "Disease", arctest.Form("Pre Admission"),
			arctest.Answers("5, Mpox | 88, Other"), arctest.Skip("[subjid]<>''")),
	}
	fields := Fields(rows)
	require.Len(t, fields, 6)

	sex := fields[1]
	assert.Equal(t, "radio", sex.FieldType)
	assert.Equal(t, "RH", sex.Alignment)
	assert.Equal(t, "", sex.SectionHeader, "repeated header suppressed")
	assert.Equal(t, "DEMOGRAPHICS", fields[0].SectionHeader)
	assert.Equal(t, "y", fields[0].Identifier)

	dob := fields[2]
	assert.Equal(t, "text", dob.FieldType)
	assert.Equal(t, "date_dmy", dob.Validation)
	assert.Equal(t, "DATES", dob.SectionHeader)
	assert.Empty(t, dob.Choices)

	age := fields[3]
	assert.Equal(t, "number", age.Validation)
	assert.Equal(t, "120", age.ValidationMax)
	assert.Empty(t, age.SectionHeader)

	units := fields[4]
	assert.Equal(t, "demog_height_units", units.Variable, "illegal type dropped")
	assert.Empty(t, units.Validation, "units is not a REDCap validation")

	disease := fields[5]
	assert.Equal(t, "pre_admission", disease.FormName)
	assert.Equal(t, "radio", disease.FieldType)
	assert.Equal(t, "5, Mpox | 88, Other", disease.Choices)
	assert.Equal(t, "[subjid]<>''", disease.BranchingLogic)
	assert.Equal(t, "DEMOGRAPHICS", disease.SectionHeader, "new run after DATES")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []arc.Row{
		arctest.Subjid(),
		arctest.Row("demog_sex", arc.TypeRadio, "Sex, at birth", arctest.Answers("1, Yes | 0, No | 99, Unknown")),
	}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	for _, rec := range records {
		assert.Len(t, rec, 18)
	}
	assert.Equal(t, "Sex, at birth", records[2][4])
	assert.Equal(t, "RH", records[2][13])
}
