// Package version defines the increment kinds and the semantic version
// mutators applied once a bump decision is final.
//
// Increments follow Semantic Versioning 2.0: bumping a field zeroes the
// fields below it and always drops pre-release and build metadata.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// IncrementKind is which version field a bump touches, ordered by severity.
type IncrementKind int

const (
	// IncrementPatch bumps the patch field.
	IncrementPatch IncrementKind = iota + 1
	// IncrementMinor bumps the minor field.
	IncrementMinor
	// IncrementMajor bumps the major field.
	IncrementMajor
)

// String returns the configuration-facing name of the kind.
func (k IncrementKind) String() string {
	switch k {
	case IncrementMajor:
		return "major"
	case IncrementMinor:
		return "minor"
	case IncrementPatch:
		return "patch"
	default:
		return "none"
	}
}

// ParseIncrementKind converts a configuration string into an IncrementKind.
func ParseIncrementKind(s string) (IncrementKind, error) {
	switch s {
	case "major":
		return IncrementMajor, nil
	case "minor":
		return IncrementMinor, nil
	case "patch":
		return IncrementPatch, nil
	default:
		return 0, fmt.Errorf("unknown increment kind %q (want major, minor or patch)", s)
	}
}

// StrongerThan reports whether k outranks other (Major > Minor > Patch).
func (k IncrementKind) StrongerThan(other IncrementKind) bool {
	return k > other
}

// Max returns the stronger of two kinds.
func Max(a, b IncrementKind) IncrementKind {
	if a > b {
		return a
	}
	return b
}

// MarshalText makes the kind usable in JSON/YAML output.
func (k IncrementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the kind from JSON/YAML input.
func (k *IncrementKind) UnmarshalText(text []byte) error {
	parsed, err := ParseIncrementKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IncrementMajorOf returns v with major+1, minor and patch zeroed and
// pre-release/build metadata cleared.
func IncrementMajorOf(v *semver.Version) *semver.Version {
	return semver.New(v.Major()+1, 0, 0, "", "")
}

// IncrementMinorOf returns v with minor+1, patch zeroed and
// pre-release/build metadata cleared.
func IncrementMinorOf(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor()+1, 0, "", "")
}

// IncrementPatchOf returns v with patch+1 and pre-release/build metadata
// cleared.
func IncrementPatchOf(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
}

// Apply returns v incremented by kind.
func Apply(v *semver.Version, kind IncrementKind) *semver.Version {
	switch kind {
	case IncrementMajor:
		return IncrementMajorOf(v)
	case IncrementMinor:
		return IncrementMinorOf(v)
	case IncrementPatch:
		return IncrementPatchOf(v)
	default:
		return v
	}
}
