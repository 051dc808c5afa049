package session

import (
	"bytes"
	"fmt"
	"time"

	"bridge/internal/guide"
	"bridge/internal/logging"
	"bridge/internal/paper"
	"bridge/internal/redcap"
	"bridge/internal/selection"
)

// Artefacts are the outputs of one Generate run.
type Artefacts struct {
	CRF       string
	Result    *selection.Result
	Generated time.Time

	Dictionary []byte // REDCap data dictionary CSV
	Paper      *paper.Document
	PaperJSON  []byte
	Guide      []byte // completion guide Markdown
	Template   []byte // session template CSV
}

// Files maps each artefact's file name to its contents.
func (a *Artefacts) Files(templateName string) map[string][]byte {
	return map[string][]byte{
		redcap.FileName(a.CRF): a.Dictionary,
		paper.FileName(a.CRF):  a.PaperJSON,
		guide.FileName(a.CRF):  a.Guide,
		templateName:           a.Template,
	}
}

// Generate resolves the selection and renders every artefact for crf.
// It refuses to run on a failed session or an empty selection.
func (s *Session) Generate(crf string, tableWidth int) (*Artefacts, error) {
	timer := logging.StartTimer(logging.CategorySession, "Generate")
	defer timer.Stop()

	if crf == "" {
		return nil, fmt.Errorf("session: a CRF name is required")
	}
	res, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	if len(res.Catalogue.Rows) == 0 {
		return nil, ErrEmptySelection
	}

	a := &Artefacts{CRF: crf, Result: res, Generated: time.Now().UTC()}

	var buf bytes.Buffer
	if err := redcap.Write(&buf, res.Catalogue.Rows); err != nil {
		return nil, fmt.Errorf("data dictionary: %w", err)
	}
	a.Dictionary = bytes.Clone(buf.Bytes())

	a.Paper = paper.New(tableWidth).Layout(crf, res.Catalogue)
	buf.Reset()
	if err := paper.WriteJSON(&buf, a.Paper); err != nil {
		return nil, fmt.Errorf("paper form: %w", err)
	}
	a.PaperJSON = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := guide.Write(&buf, crf, res.Catalogue); err != nil {
		return nil, fmt.Errorf("completion guide: %w", err)
	}
	a.Guide = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := s.Save(&buf); err != nil {
		return nil, err
	}
	a.Template = bytes.Clone(buf.Bytes())

	logging.Session("session %s: generated %s (%d variables)", s.id, crf, len(res.Catalogue.Rows))
	return a, nil
}
