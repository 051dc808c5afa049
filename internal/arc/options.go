package arc

import (
	"strconv"
	"strings"
)

// Reserved option codes.
const (
	CodeOther   = 88
	CodeUnknown = 99
)

// Option is one "code, label" pair of an answer-options string.
type Option struct {
	Code  string
	Label string
}

// ParseOptions splits "1, Yes | 2, No" into options. Items without a comma
// are kept with an empty label.
func ParseOptions(s string) []Option {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []Option
	for _, item := range strings.Split(s, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		code, label, _ := strings.Cut(item, ",")
		out = append(out, Option{Code: strings.TrimSpace(code), Label: strings.TrimSpace(label)})
	}
	return out
}

// FormatOptions renders options as "code, label | code, label".
func FormatOptions(opts []Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.Code + ", " + o.Label
	}
	return strings.Join(parts, " | ")
}

// OtherOption is the implicit "88, Other" choice.
func OtherOption(label string) Option {
	return Option{Code: strconv.Itoa(CodeOther), Label: label}
}

// LabelFor returns the label of code within an answer-options string.
func LabelFor(answerOptions, code string) (string, bool) {
	code = strings.TrimSpace(code)
	for _, o := range ParseOptions(answerOptions) {
		if o.Code == code {
			return o.Label, true
		}
	}
	return "", false
}

// OptionLabels returns the labels of an answer-options string.
func OptionLabels(answerOptions string) []string {
	opts := ParseOptions(answerOptions)
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}
