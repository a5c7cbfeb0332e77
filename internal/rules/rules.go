// Package rules evaluates ordered bump rules against parsed commit
// details and folds per-commit decisions into a per-scope strongest
// increment.
package rules

import (
	"strings"

	"github.com/verbump/verbump/internal/parsing"
	"github.com/verbump/verbump/internal/version"
)

// Markers in a commit description that signal a breaking change.
var breakingMarkers = []string{"BREAKING CHANGE", "BREAKING-CHANGE"}

// BumpRule maps commit predicates to a version increment. A rule matches
// a commit only when every predicate that is set evaluates true; a rule
// with no predicates set never matches.
type BumpRule struct {
	// Bump is the increment applied when the rule matches.
	Bump version.IncrementKind `mapstructure:"bump" yaml:"bump" json:"bump"`

	// Types restricts the rule to the given commit types.
	Types []string `mapstructure:"types" yaml:"types,omitempty" json:"types,omitempty"`

	// Scopes restricts the rule to the given commit scopes.
	Scopes []string `mapstructure:"scopes" yaml:"scopes,omitempty" json:"scopes,omitempty"`

	// IfBreakingField gates the rule on the commit's breaking flag.
	IfBreakingField *bool `mapstructure:"if_breaking_field" yaml:"if_breaking_field,omitempty" json:"if_breaking_field,omitempty"`

	// IfBreakingDescription gates the rule on the description containing
	// a breaking-change marker.
	IfBreakingDescription *bool `mapstructure:"if_breaking_description" yaml:"if_breaking_description,omitempty" json:"if_breaking_description,omitempty"`
}

// hasPredicates reports whether any predicate is set on the rule.
func (r *BumpRule) hasPredicates() bool {
	return len(r.Types) > 0 || len(r.Scopes) > 0 ||
		r.IfBreakingField != nil || r.IfBreakingDescription != nil
}

func descriptionHasBreakingMarker(description string) bool {
	for _, marker := range breakingMarkers {
		if strings.Contains(description, marker) {
			return true
		}
	}
	return false
}

// Matches reports whether every predicate set on the rule evaluates true
// for the given commit details.
func (r *BumpRule) Matches(details *parsing.CommitDetails) bool {
	if details == nil || !r.hasPredicates() {
		return false
	}

	if len(r.Types) > 0 && !contains(r.Types, details.Type) {
		return false
	}
	if len(r.Scopes) > 0 && !contains(r.Scopes, details.Scope) {
		return false
	}
	if r.IfBreakingField != nil && details.Breaking != *r.IfBreakingField {
		return false
	}
	if r.IfBreakingDescription != nil &&
		descriptionHasBreakingMarker(details.Description) != *r.IfBreakingDescription {
		return false
	}
	return true
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Decide evaluates the rules in order against one commit and returns the
// strongest increment they imply, or nil when no rule matches.
//
// A Major match short-circuits the remaining rules. A Minor match
// replaces a weaker or absent decision. A Patch match only fills an
// absent decision.
func Decide(details *parsing.CommitDetails, bumpRules []BumpRule) *version.IncrementKind {
	var decision *version.IncrementKind
	for i := range bumpRules {
		rule := &bumpRules[i]
		if !rule.Matches(details) {
			continue
		}

		switch rule.Bump {
		case version.IncrementMajor:
			major := version.IncrementMajor
			return &major
		case version.IncrementMinor:
			if decision == nil || rule.Bump.StrongerThan(*decision) {
				minor := version.IncrementMinor
				decision = &minor
			}
		case version.IncrementPatch:
			if decision == nil {
				patch := version.IncrementPatch
				decision = &patch
			}
		}
	}
	return decision
}

// Fold tracks the strongest decision seen per scope across a stream of
// commits. Once a scope reaches Major, further commits for that scope
// are not evaluated.
type Fold struct {
	rules     []BumpRule
	decisions map[string]version.IncrementKind
}

// NewFold returns a Fold over the given ordered rules.
func NewFold(bumpRules []BumpRule) *Fold {
	return &Fold{
		rules:     bumpRules,
		decisions: make(map[string]version.IncrementKind),
	}
}

// Feed evaluates one commit's details for the given scope and folds the
// result into that scope's running decision. Commits without details
// must not be fed; the iterator surfaces them as skipped instead.
func (f *Fold) Feed(scope string, details *parsing.CommitDetails) {
	// Major short-circuits per scope, not globally: other scopes keep
	// folding their own commits.
	if current, ok := f.decisions[scope]; ok && current == version.IncrementMajor {
		return
	}

	decision := Decide(details, f.rules)
	if decision == nil {
		return
	}
	if current, ok := f.decisions[scope]; !ok || decision.StrongerThan(current) {
		f.decisions[scope] = *decision
	}
}

// Decision returns the folded increment for a scope, or nil when no
// commit implied one.
func (f *Fold) Decision(scope string) *version.IncrementKind {
	decision, ok := f.decisions[scope]
	if !ok {
		return nil
	}
	return &decision
}
