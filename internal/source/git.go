package source

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/verbump/verbump/internal/errors"
)

// GitSource reads history from a local repository by driving the system
// git binary. Useful for development machines where the full history is
// available.
type GitSource struct {
	repoPath string
	opts     Options

	// tags discovered by the last ReferenceIterator call. Guarded by
	// fetched so derived state cannot be read before a fetch.
	tags    []Tag
	fetched bool
}

// NewGitSource returns a git-backed source rooted at repoPath. Pass "."
// for the current directory.
func NewGitSource(repoPath string, opts Options) *GitSource {
	return &GitSource{repoPath: repoPath, opts: opts}
}

func (s *GitSource) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repoPath
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", errors.Wrap(errors.KindOther,
				fmt.Sprintf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr))), err)
		}
		return "", errors.Wrap(errors.KindGenericCommandFailed,
			fmt.Sprintf("git %s", strings.Join(args, " ")), err)
	}
	return string(output), nil
}

// Verify checks that git is installed and that repoPath is inside a
// working tree.
func (s *GitSource) Verify(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "git", "--version").Run(); err != nil {
		return errors.Wrap(errors.KindMissingGit, "git is not installed or not on PATH", err)
	}

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = s.repoPath
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.KindNotGitWorkingTree, s.repoPath+" is not a git working tree", err)
	}
	return nil
}

// LatestCommitSHA resolves HEAD.
func (s *GitSource) LatestCommitSHA(ctx context.Context) (string, error) {
	out, err := s.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ReferenceIterator discovers every tag in the repository and starts a
// paginated walk of the history below sha. Fails with KindMissingGitTags
// when the repository has no tags.
func (s *GitSource) ReferenceIterator(ctx context.Context, sha string) (*ReferenceIterator, error) {
	tags, err := s.fetchTags(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, errors.E(errors.KindMissingGitTags, "no tags found in repository")
	}
	s.tags = tags
	s.fetched = true

	slog.Debug("git source fetched tags", "count", len(tags), "start_sha", sha)

	pageSize := s.opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pager := &gitPager{source: s, sha: sha, pageSize: pageSize}
	return NewReferenceIterator(pager, tags, s.opts), nil
}

// Tags returns the tag list discovered by the last ReferenceIterator
// call. Calling it before a fetch is a contract violation.
func (s *GitSource) Tags() ([]Tag, error) {
	if !s.fetched {
		return nil, errors.E(errors.KindSourceNotFetched, "tags requested before the source was fetched")
	}
	return s.tags, nil
}

// fetchTags lists every tag with the commit it points at. Annotated tags
// are peeled to the tagged commit.
func (s *GitSource) fetchTags(ctx context.Context) ([]Tag, error) {
	out, err := s.git(ctx, "for-each-ref",
		"--format=%(refname:short)%00%(objectname)%00%(*objectname)", "refs/tags")
	if err != nil {
		return nil, err
	}

	var tags []Tag
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) < 3 {
			continue
		}
		sha := fields[1]
		if fields[2] != "" {
			// Annotated tag: the peeled object is the commit.
			sha = fields[2]
		}
		tags = append(tags, Tag{Name: fields[0], CommitSHA: sha})
	}
	return tags, nil
}

// CreateTag writes one annotated tag.
func (s *GitSource) CreateTag(ctx context.Context, name, message, commitSHA string) error {
	if _, err := s.git(ctx, "tag", "-a", name, "-m", message, commitSHA); err != nil {
		return err
	}
	slog.Debug("created tag", "name", name, "sha", commitSHA)
	return nil
}

// gitPager pages through git log output below the starting sha, newest
// first, using --skip/--max-count so long histories never load at once.
type gitPager struct {
	source   *GitSource
	sha      string
	pageSize int
	skip     int
}

// Record separators for git log output: %x1e between commits, %x00
// between sha and message.
const (
	gitLogFormat          = "%H%x00%B%x1e"
	gitLogRecordSeparator = "\x1e"
	gitLogFieldSeparator  = "\x00"
)

func (p *gitPager) NextPage(ctx context.Context) ([]Commit, error) {
	out, err := p.source.git(ctx, "log",
		"--format="+gitLogFormat,
		fmt.Sprintf("--skip=%d", p.skip),
		fmt.Sprintf("--max-count=%d", p.pageSize),
		p.sha)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, record := range strings.Split(out, gitLogRecordSeparator) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, gitLogFieldSeparator, 2)
		if len(fields) != 2 {
			continue
		}
		commits = append(commits, Commit{
			SHA:     fields[0],
			Message: strings.TrimRight(fields[1], "\n"),
		})
	}
	p.skip += len(commits)
	return commits, nil
}
