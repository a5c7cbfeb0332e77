// Package bump orchestrates one version-bump computation: it walks the
// reference stream of a source, folds commit decisions per scope through
// the rule engine and applies the final increment to each scope's base
// version.
package bump

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/verbump/verbump/internal/config"
	"github.com/verbump/verbump/internal/rules"
	"github.com/verbump/verbump/internal/source"
	"github.com/verbump/verbump/internal/version"
)

// ScopeResult is the outcome for one version scope.
type ScopeResult struct {
	// Scope identifier. Empty in unscoped mode.
	Scope string `json:"scope"`
	// BaseTag is the tag that bounded this scope's unreleased changes.
	// Empty when no tag for the scope was found in history.
	BaseTag string `json:"base_tag,omitempty"`
	// OldVersion is the version of BaseTag. Nil when never tagged.
	OldVersion *semver.Version `json:"old_version,omitempty"`
	// NewVersion is OldVersion with the increment applied. Equal to
	// OldVersion when no rule matched.
	NewVersion *semver.Version `json:"new_version,omitempty"`
	// Increment decided for the scope, nil when none.
	Increment *version.IncrementKind `json:"increment,omitempty"`
	// SkippedCommits are SHAs of commits that did not match the commit
	// pattern while this scope was still unresolved.
	SkippedCommits []string `json:"skipped_commits,omitempty"`
}

// Changed reports whether the scope ends up with a new version.
func (r *ScopeResult) Changed() bool {
	return r.Increment != nil
}

// Result is the outcome of one bump computation.
type Result struct {
	// CommitSHA the walk started from.
	CommitSHA string `json:"commit_sha"`
	// Scopes in deterministic (sorted) order.
	Scopes []ScopeResult `json:"scopes"`
}

// Run computes the version bump for every configured scope, walking
// history from sha. History exhaustion with unresolved scopes is not an
// error: those scopes report no increment and no base version.
func Run(ctx context.Context, src source.Source, cfg *config.Config, sha string) (*Result, error) {
	it, err := src.ReferenceIterator(ctx, sha)
	if err != nil {
		return nil, err
	}

	scopes := cfg.Scopes()
	unresolved := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		unresolved[scope] = struct{}{}
	}

	fold := rules.NewFold(cfg.BumpRules)
	baseTags := make(map[string]source.Tag)
	skipped := make(map[string][]string)

	for {
		ref, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			break
		}

		// Tags first: a tag on this commit closes its scope, and the
		// tagged commit itself is already released.
		for _, tag := range ref.Tags {
			scope := tag.Details.Scope
			if _, open := unresolved[scope]; !open {
				continue
			}
			delete(unresolved, scope)
			baseTags[scope] = tag
			slog.Debug("scope resolved", "scope", scope, "tag", tag.Name, "version", tag.Details.Version)
		}

		if ref.Commit == nil {
			continue
		}
		if ref.Commit.Details == nil {
			// Surfaced so operators can audit why the decision ignored
			// this message. It may have belonged to any still-open scope.
			for scope := range unresolved {
				skipped[scope] = append(skipped[scope], ref.Commit.SHA)
			}
			slog.Debug("skipped unparsable commit", "sha", ref.Commit.SHA)
			continue
		}
		if _, open := unresolved[ref.Commit.Details.Scope]; open {
			fold.Feed(ref.Commit.Details.Scope, ref.Commit.Details)
		}
	}

	result := &Result{CommitSHA: sha, Scopes: make([]ScopeResult, 0, len(scopes))}
	ordered := append([]string(nil), scopes...)
	sort.Strings(ordered)

	for _, scope := range ordered {
		scopeResult := ScopeResult{Scope: scope, SkippedCommits: skipped[scope]}

		if base, found := baseTags[scope]; found {
			scopeResult.BaseTag = base.Name
			scopeResult.OldVersion = base.Details.Version
			scopeResult.NewVersion = base.Details.Version
			if decision := fold.Decision(scope); decision != nil {
				scopeResult.Increment = decision
				scopeResult.NewVersion = version.Apply(base.Details.Version, *decision)
			}
		}
		// A scope that never resolved a tag keeps nil versions and no
		// increment: the consumer treats it as unchanged, not failed.

		result.Scopes = append(result.Scopes, scopeResult)
	}
	return result, nil
}

// TagName renders the tag to create for a scope's new version: v1.2.3
// unscoped, scope-v1.2.3 scoped.
func TagName(scope string, ver *semver.Version) string {
	if scope == "" {
		return "v" + ver.String()
	}
	return scope + "-v" + ver.String()
}

// TagMessage renders the annotation message for a created tag.
func TagMessage(result *ScopeResult) string {
	if result.Scope == "" {
		return fmt.Sprintf("release %s (%s bump from %s)",
			result.NewVersion, result.Increment, result.OldVersion)
	}
	return fmt.Sprintf("release %s %s (%s bump from %s)",
		result.Scope, result.NewVersion, result.Increment, result.OldVersion)
}
