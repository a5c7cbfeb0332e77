package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.StrictNewVersion(s)
	require.NoError(t, err)
	return v
}

func TestIncrementPatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "1.2.3", "1.2.4"},
		{"clears pre-release", "1.2.3-beta.1", "1.2.4"},
		{"clears build metadata", "1.2.3+build.5", "1.2.4"},
		{"clears both", "0.1.0-rc.1+abc", "0.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IncrementPatchOf(mustVersion(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIncrementPatchTwiceIncreasesByTwo(t *testing.T) {
	v := mustVersion(t, "3.4.5-alpha+meta")
	once := IncrementPatchOf(v)
	twice := IncrementPatchOf(once)

	assert.Equal(t, v.Patch()+2, twice.Patch())
	assert.Empty(t, once.Prerelease())
	assert.Empty(t, once.Metadata())
	assert.Empty(t, twice.Prerelease())
	assert.Empty(t, twice.Metadata())
}

func TestIncrementMinor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zeroes patch", "1.2.3", "1.3.0"},
		{"clears pre-release", "1.2.3-beta.1", "1.3.0"},
		{"clears build metadata", "2.0.0+build", "2.1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IncrementMinorOf(mustVersion(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIncrementMajor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zeroes minor and patch", "1.2.3", "2.0.0"},
		{"clears pre-release and build", "1.2.3-rc.2+sha", "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IncrementMajorOf(mustVersion(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestApply(t *testing.T) {
	v := mustVersion(t, "1.2.3")
	assert.Equal(t, "2.0.0", Apply(v, IncrementMajor).String())
	assert.Equal(t, "1.3.0", Apply(v, IncrementMinor).String())
	assert.Equal(t, "1.2.4", Apply(v, IncrementPatch).String())
}

func TestIncrementKindOrdering(t *testing.T) {
	assert.True(t, IncrementMajor.StrongerThan(IncrementMinor))
	assert.True(t, IncrementMinor.StrongerThan(IncrementPatch))
	assert.False(t, IncrementPatch.StrongerThan(IncrementMinor))
	assert.Equal(t, IncrementMajor, Max(IncrementMinor, IncrementMajor))
	assert.Equal(t, IncrementMinor, Max(IncrementMinor, IncrementPatch))
}

func TestParseIncrementKind(t *testing.T) {
	for _, kind := range []IncrementKind{IncrementMajor, IncrementMinor, IncrementPatch} {
		parsed, err := ParseIncrementKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseIncrementKind("gigantic")
	assert.Error(t, err)
}
