package bundle

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge/internal/arc"
	"bridge/internal/arc/arctest"
)

func TestWriteRead(t *testing.T) {
	cat := arctest.Catalogue("v1.2.1", arctest.Subjid(), arctest.Row("demog_sex", arc.TypeRadio, "Sex at birth"))
	cat.Commit = "abc123"
	generated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManifest("Covid", cat, []arc.Preset{{Group: "ARChetype Disease CRF", Name: "Covid"}}, generated)

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)

	files := map[string][]byte{
		"Covid_guide.md":           []byte("# Presentation\n"),
		"Covid_DataDictionary.csv": []byte("Variable / Field Name\nsubjid\n"),
		"Covid_paper.json":         []byte(`{"crf":"Covid"}`),
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, files))

	got, gotFiles, err := Read(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, files, gotFiles)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "Covid", got.CRF)
	assert.Equal(t, "v1.2.1", got.Version)
	assert.Equal(t, "abc123", got.Commit)
	assert.Equal(t, "English", got.Language)
	assert.Equal(t, 2, got.Variables)
	assert.True(t, generated.Equal(got.GeneratedAt))
	assert.Equal(t, []string{"ARChetype Disease CRF: Covid"}, got.Presets)
	assert.Equal(t, []string{"Covid_DataDictionary.csv", "Covid_guide.md", "Covid_paper.json"}, got.Files)
}

func TestWrite_ReservedName(t *testing.T) {
	err := Write(&bytes.Buffer{}, Manifest{}, map[string][]byte{ManifestName: nil})
	assert.Error(t, err)
}

func TestRead_NoManifest(t *testing.T) {
	_, _, err := Read([]byte("not a zip"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Covid_v1_2_1_bundle.zip", FileName("Covid", "v1.2.1"))
}
