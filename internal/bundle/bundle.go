// Package bundle packs the generated artefacts of a CRF into a single zip
// with a YAML manifest describing where they came from.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"bridge/internal/arc"
	"bridge/internal/logging"
)

// ManifestName is the manifest entry of every bundle.
const ManifestName = "manifest.yaml"

// Manifest records the provenance of a bundle.
type Manifest struct {
	ID          string    `yaml:"id"`
	CRF         string    `yaml:"crf"`
	Version     string    `yaml:"version"`
	Commit      string    `yaml:"commit"`
	Language    string    `yaml:"language"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Presets     []string  `yaml:"presets,omitempty"`
	Variables   int       `yaml:"variables"`
	Files       []string  `yaml:"files"`
}

// NewManifest returns a manifest with a fresh ID.
func NewManifest(crf string, cat *arc.Catalogue, presets []arc.Preset, generated time.Time) Manifest {
	m := Manifest{
		ID:          uuid.NewString(),
		CRF:         crf,
		Version:     cat.Version,
		Commit:      cat.Commit,
		Language:    cat.Language,
		GeneratedAt: generated.UTC(),
		Variables:   len(cat.Rows),
	}
	for _, p := range presets {
		m.Presets = append(m.Presets, p.Label())
	}
	return m
}

// FileName returns the bundle file name for crf at version.
func FileName(crf, version string) string {
	return crf + "_" + arc.VersionPathSegment(version) + "_bundle.zip"
}

// Write zips files behind the manifest. Entries are written in name order.
func Write(w io.Writer, m Manifest, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		if name == ManifestName {
			return fmt.Errorf("bundle: %s is reserved", ManifestName)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	m.Files = names

	manifest, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("bundle: marshal manifest: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := add(zw, ManifestName, manifest, m.GeneratedAt); err != nil {
		return err
	}
	for _, name := range names {
		if err := add(zw, name, files[name], m.GeneratedAt); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	logging.Bundle("bundle %s: %d files for %s %s", m.ID, len(names), m.CRF, m.Version)
	return nil
}

func add(zw *zip.Writer, name string, body []byte, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("bundle: add %s: %w", name, err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("bundle: write %s: %w", name, err)
	}
	return nil
}

// Read opens a bundle and returns its manifest and files.
func Read(data []byte) (Manifest, map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("bundle: %w", err)
	}
	var (
		m     Manifest
		found bool
	)
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		body, err := readEntry(f)
		if err != nil {
			return Manifest{}, nil, err
		}
		if f.Name == ManifestName {
			if err := yaml.Unmarshal(body, &m); err != nil {
				return Manifest{}, nil, fmt.Errorf("bundle: parse manifest: %w", err)
			}
			found = true
			continue
		}
		files[f.Name] = body
	}
	if !found {
		return Manifest{}, nil, fmt.Errorf("bundle: no %s", ManifestName)
	}
	return m, files, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("bundle: open %s: %w", f.Name, err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", f.Name, err)
	}
	return body, nil
}
