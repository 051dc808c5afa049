package arc

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Epoch selects which "select units" convention a catalogue follows.
type Epoch int

const (
	// EpochDynamicUnits: one parent row whose question contains "(select units)".
	EpochDynamicUnits Epoch = iota + 1
	// EpochStaticUnits: a companion X_units row with validation "units".
	EpochStaticUnits
)

func (e Epoch) String() string {
	switch e {
	case EpochDynamicUnits:
		return "dynamic-units"
	case EpochStaticUnits:
		return "static-units"
	default:
		return "unknown"
	}
}

// Schema epoch bounds.
const (
	OldestSupportedVersion = "v1.0.0"
	StaticUnitsSince       = "v1.2.1"
)

// CanonicalVersion adds a missing "v" prefix and reports validity.
func CanonicalVersion(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v, semver.IsValid(v)
}

// CompareVersions compares two version tags as semantic versions.
// Invalid tags sort before valid ones.
func CompareVersions(a, b string) int {
	ca, _ := CanonicalVersion(a)
	cb, _ := CanonicalVersion(b)
	return semver.Compare(ca, cb)
}

// SortVersionsDesc returns the valid, distinct version tags newest first.
func SortVersionsDesc(tags []string) []string {
	var out []string
	for _, t := range tags {
		if _, ok := CanonicalVersion(t); ok && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return CompareVersions(b, a)
	})
	return out
}

// EpochFor returns the schema epoch for a catalogue version.
func EpochFor(version string) (Epoch, error) {
	v, ok := CanonicalVersion(version)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedSchemaEpoch, version)
	}
	if semver.Compare(v, OldestSupportedVersion) < 0 {
		return 0, fmt.Errorf("%w: %s predates %s", ErrUnsupportedSchemaEpoch, version, OldestSupportedVersion)
	}
	if semver.Compare(v, StaticUnitsSince) < 0 {
		return EpochDynamicUnits, nil
	}
	return EpochStaticUnits, nil
}

// VersionPathSegment renders v1.2.1 as v1_2_1 for file names.
func VersionPathSegment(version string) string {
	return strings.ReplaceAll(version, ".", "_")
}
