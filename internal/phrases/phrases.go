// Package phrases holds the fixed per-language wording used when the
// pipeline synthesises questions ("Select", "Specify other", "(Units)").
package phrases

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"bridge/internal/arc"

	"gopkg.in/yaml.v3"
)

// English is always supported.
const English = "English"

//go:embed phrases.yaml
var dictionaryYAML []byte

// Phrases is the fixed phrase set for one language.
type Phrases struct {
	Select                string `yaml:"select"`
	Specify               string `yaml:"specify"`
	SpecifyOther          string `yaml:"specify_other"`
	SpecifyOtherInfection string `yaml:"specify_other_infection"`
	OtherAgent            string `yaml:"other_agent"`
	SelectAdditional      string `yaml:"select_additional"`
	AnyAdditional         string `yaml:"any_additional"`
	Other                 string `yaml:"other"`
	Units                 string `yaml:"units"`
}

var (
	loadOnce   sync.Once
	dictionary map[string]Phrases
	loadErr    error
)

func load() (map[string]Phrases, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(dictionaryYAML, &dictionary)
		if loadErr == nil {
			if _, ok := dictionary[English]; !ok {
				loadErr = fmt.Errorf("phrase dictionary has no %s entry", English)
			}
		}
	})
	return dictionary, loadErr
}

// For returns the phrases of language, matched case-insensitively.
func For(language string) (Phrases, error) {
	dict, err := load()
	if err != nil {
		return Phrases{}, err
	}
	for name, p := range dict {
		if strings.EqualFold(name, language) {
			return p, nil
		}
	}
	return Phrases{}, fmt.Errorf("%w: %q has no phrase dictionary", arc.ErrLanguageNotSupported, language)
}

// MustEnglish returns the English phrases. The dictionary is embedded, so a
// failure here is a build defect.
func MustEnglish() Phrases {
	p, err := For(English)
	if err != nil {
		panic(err)
	}
	return p
}

// Languages lists the languages with a phrase dictionary, sorted.
func Languages() []string {
	dict, err := load()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(dict))
	for name := range dict {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Pair carries the phrases of the session language and the English phrases
// used for the frozen question_english column.
type Pair struct {
	Local   Phrases
	English Phrases
}

// PairFor returns the phrase pair for language.
func PairFor(language string) (Pair, error) {
	local, err := For(language)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Local: local, English: MustEnglish()}, nil
}
