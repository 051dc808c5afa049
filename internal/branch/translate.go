// Package branch overlays translations onto a catalogue and renders skip
// logic as readable text in the catalogue's current language.
package branch

import (
	"fmt"
	"strings"

	"bridge/internal/arc"
	"bridge/internal/logging"
	"bridge/internal/phrases"

	"golang.org/x/text/unicode/norm"
)

// Overlay returns base with the translated fields of overlay applied, joined
// on variable. Only form, section, question, answer options, definition and
// completion guideline are taken, and only where the translation is
// non-empty. QuestionEnglish is never touched. Derived columns are refreshed.
func Overlay(base, overlay *arc.Catalogue, language string) (*arc.Catalogue, error) {
	if _, err := phrases.For(language); err != nil {
		return nil, err
	}
	out := base.Clone()
	out.Language = language
	if overlay == nil {
		return out, nil
	}

	translated := make(map[string]arc.Row, len(overlay.Rows))
	for _, r := range overlay.Rows {
		translated[r.Variable] = r
	}

	hits := 0
	for i := range out.Rows {
		t, ok := translated[out.Rows[i].Variable]
		if !ok {
			continue
		}
		hits++
		r := &out.Rows[i]
		apply(&r.Form, t.Form)
		apply(&r.Section, t.Section)
		apply(&r.Question, t.Question)
		apply(&r.AnswerOptions, t.AnswerOptions)
		apply(&r.Definition, t.Definition)
		apply(&r.CompletionGuideline, t.CompletionGuideline)
		arc.DeriveRow(r)
	}
	if hits == 0 && len(overlay.Rows) > 0 {
		return nil, fmt.Errorf("%w: %s overlay shares no variable with the catalogue", arc.ErrLanguageNotSupported, language)
	}
	logging.BranchDebug("overlay %s: %d of %d rows translated", language, hits, len(out.Rows))
	return out, nil
}

func apply(dst *string, translated string) {
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return
	}
	*dst = norm.NFC.String(translated)
}
