package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindMissingGitTags, "no tags")
	assert.Equal(t, KindMissingGitTags, KindOf(err))
	assert.Equal(t, KindOther, KindOf(stderrors.New("plain")))

	wrapped := fmt.Errorf("context: %w", err)
	assert.Equal(t, KindMissingGitTags, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindMissingGitTags))
	assert.False(t, IsKind(wrapped, KindMissingGit))
}

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("exit status 128")
	err := Wrap(KindGenericCommandFailed, "git rev-parse HEAD", cause)

	assert.Contains(t, err.Error(), "generic_command_failed")
	assert.Contains(t, err.Error(), "git rev-parse HEAD")
	assert.Contains(t, err.Error(), "exit status 128")
	assert.ErrorIs(t, err, cause)
}

func TestIsMatchesByKind(t *testing.T) {
	err := E(KindAuthenticationRequired, "token missing")
	assert.ErrorIs(t, err, &Error{Kind: KindAuthenticationRequired})
	assert.NotErrorIs(t, err, &Error{Kind: KindGithubRestError})
}
