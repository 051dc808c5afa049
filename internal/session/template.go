package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"bridge/internal/arc"
	"bridge/internal/logging"
)

// Template columns.
const (
	ColVariable          = "Variable"
	ColUlistSelected     = "Ulist Selected"
	ColMultilistSelected = "Multilist Selected"
)

// DateLayout is the date stamp of template file names.
const DateLayout = "2006-01-02"

var templateName = regexp.MustCompile(`^template_(.+)_v(\d+)_(\d+)_(\d+)_([^_/\\]+)_(\d{4}-\d{2}-\d{2})\.csv$`)

// TemplateName is a parsed template file name.
type TemplateName struct {
	CRF      string
	Version  string
	Language string
	Date     time.Time
}

// String renders the file name.
func (n TemplateName) String() string {
	return fmt.Sprintf("template_%s_%s_%s_%s.csv", n.CRF, arc.VersionPathSegment(n.Version), n.Language, n.Date.Format(DateLayout))
}

// ParseTemplateName recovers crf, version and language from a template
// file name. Any directory part is ignored.
func ParseTemplateName(name string) (TemplateName, error) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	m := templateName.FindStringSubmatch(name)
	if m == nil {
		return TemplateName{}, fmt.Errorf("%w: %q", arc.ErrInvalidTemplateName, name)
	}
	date, err := time.Parse(DateLayout, m[6])
	if err != nil {
		return TemplateName{}, fmt.Errorf("%w: %q: %v", arc.ErrInvalidTemplateName, name, err)
	}
	return TemplateName{
		CRF:      m[1],
		Version:  fmt.Sprintf("v%s.%s.%s", m[2], m[3], m[4]),
		Language: m[5],
		Date:     date,
	}, nil
}

// SaveName returns the template file name for this session.
func (s *Session) SaveName(crf string, date time.Time) string {
	return TemplateName{CRF: crf, Version: s.Version(), Language: s.Language(), Date: date}.String()
}

// Save writes the checked set and the selected list labels as a template.
func (s *Session) Save(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return fmt.Errorf("%w: %v", ErrSessionFailed, s.failure)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColVariable, ColUlistSelected, ColMultilistSelected}); err != nil {
		return err
	}
	checked := s.checkedLocked()
	for _, v := range checked {
		record := []string{v, "", ""}
		if _, ok := s.choices[v]; ok {
			labels := strings.Join(s.choices.SelectedLabels(v), "|")
			if s.typeOf(v) == arc.TypeMultiList {
				record[2] = labels
			} else {
				record[1] = labels
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	logging.Session("session %s: saved %d variables", s.id, len(checked))
	return nil
}

func (s *Session) typeOf(variable string) string {
	r, _ := s.loaded.Catalogue.Lookup(variable)
	return r.Type
}

// Upload replaces the checked set and the selections of the listed
// variables with a saved template. The file name must follow the template
// convention and match the session's version and language. On error the
// session is unchanged.
func (s *Session) Upload(filename string, r io.Reader) error {
	name, err := ParseTemplateName(filename)
	if err != nil {
		return err
	}
	if arc.CompareVersions(name.Version, s.Version()) != 0 || !strings.EqualFold(name.Language, s.Language()) {
		return fmt.Errorf("%w: %s is for ARC %s %s, session is %s %s",
			arc.ErrInvalidTemplateName, filename, name.Version, name.Language, s.Version(), s.Language())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("session: %s is empty", filename)
		}
		return fmt.Errorf("session: read %s: %w", filename, err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	varCol, ok := cols[ColVariable]
	if !ok {
		return fmt.Errorf("session: %s has no %q column", filename, ColVariable)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("session: read %s: %w", filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return fmt.Errorf("%w: %v", ErrSessionFailed, s.failure)
	}

	checked := make(map[string]bool, len(records))
	choices := s.choices.Clone()
	var unknown []string
	for _, rec := range records {
		v := strings.TrimSpace(cell(rec, varCol))
		if v == "" {
			continue
		}
		if !s.loaded.Catalogue.Has(v) {
			unknown = append(unknown, v)
			continue
		}
		checked[v] = true
		if _, ok := choices[v]; !ok {
			continue
		}
		col := ColUlistSelected
		if s.typeOf(v) == arc.TypeMultiList {
			col = ColMultilistSelected
		}
		if err := choices.Select(v, splitLabels(cell(rec, colIndex(cols, col)))); err != nil {
			return fmt.Errorf("session: %s: %w", filename, err)
		}
	}
	if len(unknown) > 0 {
		logging.SessionDebug("session %s: template lists %d unknown variables: %v", s.id, len(unknown), unknown)
	}

	s.checked = checked
	s.choices = choices
	logging.Session("session %s: uploaded %s (%d variables)", s.id, filename, len(checked))
	return nil
}

func colIndex(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func splitLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "|")
}
