package paper

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// lineCount returns how many lines s takes when wrapped at width cells.
// Words longer than the width are split across lines.
func lineCount(s string, width int) int {
	if width <= 0 {
		width = 1
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n := 0
	for _, line := range strings.Split(wordwrap.String(s, width), "\n") {
		w := runewidth.StringWidth(line)
		if w <= width {
			n++
			continue
		}
		n += (w + width - 1) / width
	}
	return n
}

// widths chooses the question and answer widths, in sixths, of a field.
func (e *Engine) widths(question, answer string, dateValued, openText bool) (q, a int) {
	if dateValued || openText {
		return 1, 2
	}
	short, wide := e.sixth, 2*e.sixth
	q, a = 1, 1
	if lineCount(answer, short) > lineCount(answer, wide)+2 {
		return 1, 2
	}
	if lineCount(question, short) > lineCount(question, wide) {
		q = 2
	}
	return q, a
}
