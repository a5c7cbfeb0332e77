// Package parsing extracts structured details from commit messages and tag
// names using configurable named-capture regular expressions.
//
// A message or tag that does not match its pattern is not an error: the
// parse reports absence (nil details) and the caller decides whether that
// is a skippable commit or a hard failure.
package parsing

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/verbump/verbump/internal/errors"
)

// Named capture groups the commit pattern may expose.
const (
	GroupType        = "type"
	GroupScope       = "scope"
	GroupBreaking    = "breaking"
	GroupDescription = "description"
	// GroupVersion is the capture group the tag pattern must expose.
	GroupVersion = "version"
)

// CommitDetails holds the sections of a conventional commit message.
type CommitDetails struct {
	// Type is the commit type, e.g. "feat" or "fix".
	Type string
	// Scope is the commit scope with surrounding parentheses stripped.
	// Empty when the commit carries no scope.
	Scope string
	// Breaking is true when the breaking-change group matched, typically
	// the "!" after the type.
	Breaking bool
	// Description is the commit description.
	Description string
}

// TagDetails holds the sections of a release tag name.
type TagDetails struct {
	// Version extracted from the tag name.
	Version *semver.Version
	// Scope of the tag. Empty for unscoped tags.
	Scope string
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.KindInvalidRegexPattern, pattern, err)
	}
	return re, nil
}

// namedCaptures returns the named submatches of text, or nil when the
// pattern does not match at all.
func namedCaptures(re *regexp.Regexp, text string) map[string]string {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	captures := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		captures[name] = match[i]
	}
	return captures
}

// cleanScope strips the parentheses the conventional pattern captures
// around a scope and trims whitespace.
func cleanScope(raw string) string {
	return strings.TrimSpace(strings.NewReplacer("(", "", ")", "").Replace(raw))
}

// ParseCommitDetails parses a commit message against a named-capture
// pattern. It returns (nil, nil) when the message does not structurally
// match: a missing type or description group, or an empty description,
// count as no match. The scope and breaking groups are optional.
//
// The only error condition is a pattern that does not compile.
func ParseCommitDetails(message, pattern string) (*CommitDetails, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	captures := namedCaptures(re, message)
	if captures == nil {
		return nil, nil
	}

	commitType, ok := captures[GroupType]
	if !ok {
		return nil, nil
	}
	description, ok := captures[GroupDescription]
	if !ok || strings.TrimSpace(description) == "" {
		return nil, nil
	}

	_, hasBreaking := captures[GroupBreaking]

	return &CommitDetails{
		Type:        strings.TrimSpace(commitType),
		Scope:       cleanScope(captures[GroupScope]),
		Breaking:    hasBreaking && captures[GroupBreaking] != "",
		Description: strings.TrimSpace(description),
	}, nil
}

// ParseTagDetails parses a tag name against a named-capture pattern. It
// returns (nil, nil) when the name does not match, the version group is
// absent, or the captured version is not valid semver. The scope group is
// optional.
func ParseTagDetails(name, pattern string) (*TagDetails, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	captures := namedCaptures(re, name)
	if captures == nil {
		return nil, nil
	}

	raw, ok := captures[GroupVersion]
	if !ok {
		return nil, nil
	}
	ver, err := semver.StrictNewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, nil
	}

	return &TagDetails{
		Version: ver,
		Scope:   cleanScope(captures[GroupScope]),
	}, nil
}

// TagVersion resolves the version of one specific tag. Unlike
// ParseTagDetails, a tag that does not yield a version is a hard error:
// this is for callers that need a single authoritative parse rather than
// a history walk.
func TagVersion(name, pattern string) (*TagDetails, error) {
	details, err := ParseTagDetails(name, pattern)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, errors.E(errors.KindInvalidTagVersion, "tag "+name+" does not contain a valid semantic version")
	}
	return details, nil
}

// RequireCommitDetails parses a commit message and treats a structural
// no-match as a hard error. Used outside iteration, where absence cannot
// be reported as a skipped commit.
func RequireCommitDetails(message, pattern string) (*CommitDetails, error) {
	details, err := ParseCommitDetails(message, pattern)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, errors.E(errors.KindInvalidCommitMessage, "commit message does not match the commit pattern")
	}
	return details, nil
}
