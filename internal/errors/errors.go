// Package errors provides the typed errors shared by the bump engine and
// its sources. Every failure the tool can surface maps to one Kind so the
// CLI can decide exit behavior without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind int

const (
	// KindOther - unexpected failures that fit no other category
	KindOther Kind = iota
	// KindInvalidRegexPattern - a configured pattern does not compile
	KindInvalidRegexPattern
	// KindInvalidCommitMessage - a commit message failed a parse that required success
	KindInvalidCommitMessage
	// KindInvalidTagVersion - a tag name carried no parsable semantic version
	KindInvalidTagVersion
	// KindMissingGitTags - the source holds no tags at all
	KindMissingGitTags
	// KindAuthenticationRequired - a mutating remote call lacks credentials
	KindAuthenticationRequired
	// KindGenericCommandFailed - a git subprocess could not be run
	KindGenericCommandFailed
	// KindGithubRestError - an unexpected GitHub REST API response
	KindGithubRestError
	// KindMissingGit - the git binary is not installed or not on PATH
	KindMissingGit
	// KindNotGitWorkingTree - invoked outside a git working tree
	KindNotGitWorkingTree
	// KindSourceNotFetched - derived source state queried before fetching
	KindSourceNotFetched
)

// String returns a stable identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidRegexPattern:
		return "invalid_regex_pattern"
	case KindInvalidCommitMessage:
		return "invalid_commit_message"
	case KindInvalidTagVersion:
		return "invalid_tag_version"
	case KindMissingGitTags:
		return "missing_git_tags"
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindGenericCommandFailed:
		return "generic_command_failed"
	case KindGithubRestError:
		return "github_rest_error"
	case KindMissingGit:
		return "missing_git"
	case KindNotGitWorkingTree:
		return "not_git_working_tree"
	case KindSourceNotFetched:
		return "source_not_fetched"
	default:
		return "other"
	}
}

// Error is a failure with a Kind, a human message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two Errors by kind, so sentinel-style checks work:
//
//	errors.Is(err, &Error{Kind: KindMissingGitTags})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// E builds a typed error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a typed error around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from an error chain. Untyped errors report KindOther.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
