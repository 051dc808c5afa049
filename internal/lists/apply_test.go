package lists

import (
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyChoices(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Subjid(),
		arctest.Row("demog_country", arc.TypeUserList, "Country", arctest.List("geo_Countries")),
	)
	out, choices, err := Expand(cat, Tables{"geo_Countries": {{Label: "Estonia"}, {Label: "Finland"}, {Label: "France"}}}, englishPair(t))
	require.NoError(t, err)
	assert.Equal(t, "88, Other", lookup(t, out, "demog_country").AnswerOptions)

	require.NoError(t, choices.Select("demog_country", []string{"Estonia", "Finland"}))
	applied := ApplyChoices(out, choices)

	assert.Equal(t, "1, Estonia | 2, Finland | 88, Other", lookup(t, applied, "demog_country").AnswerOptions)
	assert.Equal(t, "3, France | 88, Other", lookup(t, applied, "demog_country_otherl2").AnswerOptions)
	assert.Equal(t, "88, Other", lookup(t, out, "demog_country").AnswerOptions, "input untouched")
	require.NoError(t, Verify(applied, choices))
}

func TestApplyChoices_KeepsTranslatedOther(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Row("demog_country", arc.TypeUserList, "Pays", arctest.Answers("88, Autre")),
		arctest.Row("demog_country_otherl2", arc.TypeDropdown, "Pays", arctest.Answers("1, Espagne | 88, Autre")),
	)
	applied := ApplyChoices(cat, Choices{"demog_country": {{Number: 1, Label: "Espagne", Selected: true}}})
	assert.Equal(t, "1, Espagne | 88, Autre", lookup(t, applied, "demog_country").AnswerOptions)
	assert.Equal(t, "88, Autre", lookup(t, applied, "demog_country_otherl2").AnswerOptions)
}

func TestVerify_Mismatch(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1",
		arctest.Row("demog_country", arc.TypeUserList, "Country", arctest.Answers("1, Estonia | 88, Other")),
	)
	err := Verify(cat, Choices{"demog_country": {{Number: 1, Label: "Estonia"}, {Number: 2, Label: "Finland"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, arc.ErrInvariantViolated)
	assert.Contains(t, err.Error(), "Finland")
}
