package guide

import (
	"bytes"
	"strings"
	"testing"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "  Body temperature ", "Body temperature"},
		{"entities", "Fish &amp; chips", "Fish & chips"},
		{"inline", "Use <b>highest</b> value", "Use highest value"},
		{"breaks", "First line<br>Second line", "First line\nSecond line"},
		{"list", "<ul><li>One</li><li>Two</li></ul>", "- One\n- Two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestWrite(t *testing.T) {
	fever := arctest.Row("sympt_fever", arc.TypeRadio, "Fever", arctest.Form("presentation"),
		arctest.Section("SIGNS"), arctest.Answers("1, Yes | 0, No"),
		arctest.Guide("Temperature <b>≥38°C</b>", "Tick <i>Yes</i> if measured"))
	temp := arctest.Row("sympt_fever_temp", arc.TypeNumber, "Maximum temperature", arctest.Form("presentation"),
		arctest.Section("SIGNS"), arctest.Skip("[sympt_fever]='1'"))
	temp.Branch = "(Fever = Yes)"
	daily := arctest.Row("daily_date", arc.TypeDateDMY, "Date of assessment", arctest.Form("daily"), arctest.Section("DAILY"))
	cat := arctest.Catalogue("v1.2.1", fever, temp, daily)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "mpox", cat))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!-- mpox completion guide, ARC v1.2.1, English -->\n"))
	assert.Contains(t, out, "\n# Presentation\n")
	assert.Contains(t, out, "\n# Daily\n")
	assert.Equal(t, 1, strings.Count(out, "## SIGNS"))
	assert.Contains(t, out, "### Fever\n\n`sympt_fever` (radio)\n")
	assert.Contains(t, out, "Temperature ≥38°C")
	assert.Contains(t, out, "**Completion:** Tick Yes if measured")
	assert.Contains(t, out, "- Yes (1)\n- No (0)\n")
	assert.Contains(t, out, "*Show if* (Fever = Yes)")
	assert.NotContains(t, out, "<b>")
	assert.Equal(t, "mpox_guide.md", FileName("mpox"))
}
