package source

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbump/verbump/internal/errors"
)

// newTestRepo builds a throwaway repository with a linear history:
//
//	c1 "chore: init"        <- tag v0.1.0
//	c2 "fix: bug"
//	c3 "merged something"   (not conventional)
//	c4 "feat: feature"      <- HEAD
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping git source test")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init", "--initial-branch=main")
	commit := func(message string) {
		run("commit", "--allow-empty", "-m", message)
	}
	commit("chore: init")
	run("tag", "-a", "v0.1.0", "-m", "release 0.1.0")
	commit("fix: bug")
	commit("merged something")
	commit("feat: feature")
	return dir
}

func TestGitSourceWalk(t *testing.T) {
	dir := newTestRepo(t)
	src := NewGitSource(dir, Options{
		CommitPattern: testCommitPattern,
		TagPattern:    testTagPattern,
		PageSize:      2, // force pagination across git log calls
	})
	ctx := context.Background()

	require.NoError(t, src.Verify(ctx))

	sha, err := src.LatestCommitSHA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sha)

	it, err := src.ReferenceIterator(ctx, sha)
	require.NoError(t, err)

	var refs []*Reference
	for {
		ref, err := it.Next(ctx)
		require.NoError(t, err)
		if ref == nil {
			break
		}
		refs = append(refs, ref)
	}

	// feat, unparsable merge commit, fix, then the tag-only reference for
	// the annotated v0.1.0 (peeled to its commit).
	require.Len(t, refs, 4)
	assert.Equal(t, "feat: feature", refs[0].Commit.Message)
	assert.Nil(t, refs[1].Commit.Details)
	assert.Equal(t, "fix: bug", refs[2].Commit.Message)
	assert.Nil(t, refs[3].Commit)
	require.Len(t, refs[3].Tags, 1)
	assert.Equal(t, "v0.1.0", refs[3].Tags[0].Name)
	assert.Equal(t, "0.1.0", refs[3].Tags[0].Details.Version.String())

	tags, err := src.Tags()
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestGitSourceTagsBeforeFetch(t *testing.T) {
	dir := newTestRepo(t)
	src := NewGitSource(dir, Options{
		CommitPattern: testCommitPattern,
		TagPattern:    testTagPattern,
	})

	_, err := src.Tags()
	require.Error(t, err)
	assert.Equal(t, errors.KindSourceNotFetched, errors.KindOf(err))
}

func TestGitSourceMissingTags(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping git source test")
	}

	dir := t.TempDir()
	cmd := exec.Command("git", "init", "--initial-branch=main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	src := NewGitSource(dir, Options{
		CommitPattern: testCommitPattern,
		TagPattern:    testTagPattern,
	})
	_, err := src.ReferenceIterator(context.Background(), "HEAD")
	require.Error(t, err)
	assert.Equal(t, errors.KindMissingGitTags, errors.KindOf(err))
}

func TestGitSourceCreateTag(t *testing.T) {
	dir := newTestRepo(t)
	src := NewGitSource(dir, Options{
		CommitPattern: testCommitPattern,
		TagPattern:    testTagPattern,
	})
	ctx := context.Background()

	sha, err := src.LatestCommitSHA(ctx)
	require.NoError(t, err)
	require.NoError(t, src.CreateTag(ctx, "v0.2.0", "release 0.2.0", sha))

	tags, err := src.fetchTags(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Contains(t, names, "v0.2.0")
}

func TestGitSourceVerifyOutsideWorkTree(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping git source test")
	}

	src := NewGitSource(t.TempDir(), Options{})
	err := src.Verify(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.KindNotGitWorkingTree, errors.KindOf(err))
}
