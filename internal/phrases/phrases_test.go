package phrases

import (
	"testing"

	"bridge/internal/arc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_English(t *testing.T) {
	p, err := For("english")
	require.NoError(t, err)
	assert.Equal(t, "Select", p.Select)
	assert.Equal(t, "Specify other", p.SpecifyOther)
	assert.Equal(t, "Units", p.Units)
}

func TestDictionaryComplete(t *testing.T) {
	for _, lang := range Languages() {
		p, err := For(lang)
		require.NoError(t, err)
		for name, v := range map[string]string{
			"select": p.Select, "specify": p.Specify, "specify_other": p.SpecifyOther,
			"specify_other_infection": p.SpecifyOtherInfection, "other_agent": p.OtherAgent,
			"select_additional": p.SelectAdditional, "any_additional": p.AnyAdditional,
			"other": p.Other, "units": p.Units,
		} {
			assert.NotEmpty(t, v, "%s.%s", lang, name)
		}
	}
}

func TestFor_Unsupported(t *testing.T) {
	_, err := For("Klingon")
	assert.ErrorIs(t, err, arc.ErrLanguageNotSupported)
}

func TestPairFor(t *testing.T) {
	pair, err := PairFor("French")
	require.NoError(t, err)
	assert.Equal(t, "Autre", pair.Local.Other)
	assert.Equal(t, "Other", pair.English.Other)
}
