// Package guide writes the completion guide of a CRF: one Markdown entry per
// variable with its definition, completion guideline, options and the
// condition under which it is shown.
package guide

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"bridge/internal/arc"

	"golang.org/x/net/html"
)

// FileName is the conventional guide file name of a CRF.
func FileName(crf string) string {
	return crf + "_guide.md"
}

// blockTags end a line of text.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true, "tr": true,
}

// StripHTML returns the text of an HTML fragment. Block elements become line
// breaks, list items become "- " bullets, and entities are decoded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
			if string(name) == "li" {
				b.WriteString("- ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}

// tidy trims every line and drops blank ones.
func tidy(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

// Write emits the guide of cat.
func Write(w io.Writer, crf string, cat *arc.Catalogue) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<!-- %s completion guide, ARC %s, %s -->\n", crf, cat.Version, cat.Language)

	form, section := "", ""
	for _, r := range cat.Rows {
		if r.Form != form {
			form, section = r.Form, ""
			fmt.Fprintf(bw, "\n# %s\n", title(r.Form))
		}
		if r.Section != section {
			section = r.Section
			fmt.Fprintf(bw, "\n## %s\n", r.Section)
		}
		writeVariable(bw, r)
	}
	return bw.Flush()
}

func writeVariable(w io.Writer, r arc.Row) {
	question := StripHTML(r.Question)
	if question == "" {
		question = r.Variable
	}
	fmt.Fprintf(w, "\n### %s\n\n`%s` (%s)\n", question, r.Variable, r.Type)

	if d := StripHTML(r.Definition); d != "" {
		fmt.Fprintf(w, "\n%s\n", d)
	}
	if g := StripHTML(r.CompletionGuideline); g != "" {
		fmt.Fprintf(w, "\n**Completion:** %s\n", g)
	}
	if opts := arc.ParseOptions(r.AnswerOptions); len(opts) > 0 {
		fmt.Fprintln(w)
		for _, o := range opts {
			fmt.Fprintf(w, "- %s (%s)\n", StripHTML(o.Label), o.Code)
		}
	}
	if r.Branch != "" {
		fmt.Fprintf(w, "\n*Show if* %s\n", r.Branch)
	}
}

func title(form string) string {
	form = strings.ReplaceAll(strings.TrimSpace(form), "_", " ")
	if form == "" {
		return form
	}
	r := []rune(form)
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
