// Package source supplies repository history to the bump engine.
//
// A Source hands out a ReferenceIterator that lazily walks commits from a
// starting point, newest first, and correlates them with the tags that
// bound each version scope's unreleased changes. Two backends implement
// the Source capability: local git history (GitSource) and the GitHub
// REST API (GithubSource). The engine never branches on which backend it
// talks to.
package source

import (
	"context"

	"github.com/verbump/verbump/internal/parsing"
)

// Commit is one commit pulled from a source. Details is nil when the
// message does not match the configured commit pattern.
type Commit struct {
	SHA     string
	Message string
	Details *parsing.CommitDetails
}

// Tag is one tag pulled from a source. Details is nil when the tag name
// does not match the configured tag pattern.
type Tag struct {
	Name      string
	CommitSHA string
	Details   *parsing.TagDetails
}

// Reference is one step of history worth reporting: an optional commit
// paired with the tags discovered on it. Tag-only references surface tag
// discovery for commits that are otherwise irrelevant.
type Reference struct {
	Commit *Commit
	Tags   []Tag
}

// Options carries the configuration subset the iterator consumes.
type Options struct {
	// CommitPattern parses commit messages. Must expose the named groups
	// "type" and "description"; "scope" and "breaking" are optional.
	CommitPattern string
	// TagPattern parses tag names. Must expose the named group "version";
	// "scope" is optional.
	TagPattern string
	// Scopes are the version scopes that must each resolve a tag before
	// iteration may stop. Empty means a single unscoped default.
	Scopes []string
	// PageSize overrides the commit page size. Zero means the default.
	PageSize int
}

// NormalizedScopes returns the configured scopes, mapping an empty set to
// the single unscoped default.
func (o Options) NormalizedScopes() []string {
	if len(o.Scopes) == 0 {
		return []string{""}
	}
	return o.Scopes
}

// Source is the capability the bump engine consumes.
type Source interface {
	// ReferenceIterator starts a history walk at the given commit. It
	// fails with KindMissingGitTags when the repository has no tags at
	// all, since no scope could ever resolve.
	ReferenceIterator(ctx context.Context, sha string) (*ReferenceIterator, error)

	// LatestCommitSHA resolves the commit the walk should start from when
	// the caller did not name one.
	LatestCommitSHA(ctx context.Context) (string, error)

	// CreateTag writes one annotated tag pointing at the given commit.
	CreateTag(ctx context.Context, name, message, commitSHA string) error
}
