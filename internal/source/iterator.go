package source

import (
	"context"

	"github.com/verbump/verbump/internal/parsing"
)

// defaultPageSize matches the largest page the GitHub REST API serves.
const defaultPageSize = 100

// commitPager feeds the iterator raw commit pages, newest first. It
// returns an empty page once history is exhausted. Backends block on I/O
// here: a git subprocess or an HTTP round-trip.
type commitPager interface {
	NextPage(ctx context.Context) ([]Commit, error)
}

// ReferenceIterator lazily walks commits from a starting point and pairs
// each relevant commit with the tags found on it. It is single-pass and
// forward-only: once exhausted or failed it produces nothing further.
//
// The iterator tracks which version scopes still lack a resolved tag.
// When a tag resolves the last unresolved scope, the reference carrying
// it is still returned and iteration then stops.
type ReferenceIterator struct {
	pager commitPager
	tags  []Tag
	opts  Options

	// unresolved is the set of scopes whose bounding tag has not been
	// seen yet.
	unresolved map[string]struct{}

	page     []Commit
	cursor   int
	finished bool
}

// NewReferenceIterator builds an iterator over the given pager and the
// full discovered tag list. Tag details are parsed lazily during
// correlation; tags whose name does not match the tag pattern are
// ignored.
func NewReferenceIterator(pager commitPager, tags []Tag, opts Options) *ReferenceIterator {
	unresolved := make(map[string]struct{})
	for _, scope := range opts.NormalizedScopes() {
		unresolved[scope] = struct{}{}
	}
	return &ReferenceIterator{
		pager:      pager,
		tags:       tags,
		opts:       opts,
		unresolved: unresolved,
	}
}

// Unresolved returns the scopes that have not been bounded by a tag yet.
func (it *ReferenceIterator) Unresolved() []string {
	scopes := make([]string, 0, len(it.unresolved))
	for scope := range it.unresolved {
		scopes = append(scopes, scope)
	}
	return scopes
}

// Next returns the next reference, or (nil, nil) once iteration is done.
// Done means either every scope resolved a tag or history ran out; the
// consumer distinguishes the two through Unresolved.
//
// References come back in strictly decreasing history order. Commits that
// parsed but belong to an already-resolved scope are skipped silently
// unless they carry relevant tags; unparsable commits are always
// surfaced so the caller can report them.
func (it *ReferenceIterator) Next(ctx context.Context) (*Reference, error) {
	if it.finished {
		return nil, nil
	}

	// Skipping irrelevant commits loops here instead of recursing so
	// stack depth stays bounded on long histories.
	for {
		if it.cursor >= len(it.page) {
			page, err := it.pager.NextPage(ctx)
			if err != nil {
				it.finished = true
				return nil, err
			}
			if len(page) == 0 {
				// History exhausted. Scopes still unresolved simply never
				// had a tag; that is the consumer's call, not an error.
				it.finished = true
				return nil, nil
			}
			it.page = page
			it.cursor = 0
		}

		raw := it.page[it.cursor]
		it.cursor++

		details, err := parsing.ParseCommitDetails(raw.Message, it.opts.CommitPattern)
		if err != nil {
			it.finished = true
			return nil, err
		}
		commit := &Commit{SHA: raw.SHA, Message: raw.Message, Details: details}

		tags, err := it.tagsAt(raw.SHA)
		if err != nil {
			it.finished = true
			return nil, err
		}
		for _, tag := range tags {
			delete(it.unresolved, tag.Details.Scope)
		}
		if len(tags) > 0 && len(it.unresolved) == 0 {
			// The reference carrying the final tag is still returned.
			it.finished = true
		}

		// An unparsable commit is always surfaced so the caller can
		// report it as skipped.
		if details == nil {
			return &Reference{Commit: commit, Tags: tags}, nil
		}

		if _, relevant := it.unresolved[details.Scope]; relevant {
			return &Reference{Commit: commit, Tags: tags}, nil
		}

		if len(tags) == 0 {
			// Parsed commit for a resolved or unknown scope with no tags:
			// nothing to report, keep walking.
			continue
		}

		// The tags matter even though the commit itself does not.
		return &Reference{Tags: tags}, nil
	}
}

// tagsAt returns the tags pointing at the given commit, parsed and
// deduplicated per scope. Only tags for still-unresolved scopes count.
// When several tags on the commit share a scope, the highest version
// wins; ties keep the first seen.
func (it *ReferenceIterator) tagsAt(sha string) ([]Tag, error) {
	var found []Tag
	for _, candidate := range it.tags {
		if candidate.CommitSHA != sha {
			continue
		}

		details, err := parsing.ParseTagDetails(candidate.Name, it.opts.TagPattern)
		if err != nil {
			return nil, err
		}
		if details == nil {
			continue
		}
		if _, relevant := it.unresolved[details.Scope]; !relevant {
			continue
		}

		tag := Tag{Name: candidate.Name, CommitSHA: candidate.CommitSHA, Details: details}

		sameScope := false
		for i := range found {
			if found[i].Details.Scope != details.Scope {
				continue
			}
			if details.Version.GreaterThan(found[i].Details.Version) {
				found[i] = tag
			}
			sameScope = true
			break
		}
		if !sameScope {
			found = append(found, tag)
		}
	}
	return found, nil
}
