package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"

	"github.com/verbump/verbump/internal/errors"
)

// githubSHAEnv is set by GitHub Actions to the commit that triggered the
// workflow.
const githubSHAEnv = "GITHUB_SHA"

// githubRequestsPerSecond keeps the source well under the REST API rate
// limit for authenticated and anonymous clients alike.
const githubRequestsPerSecond = 5

// GithubSource reads history through the GitHub REST API. Useful in CI
// where the local clone is shallow or absent.
type GithubSource struct {
	client  *github.Client
	limiter *rate.Limiter
	owner   string
	repo    string
	token   string
	opts    Options

	tags    []Tag
	fetched bool
}

// NewGithubSource returns a GitHub-backed source for the repository
// identified as "owner/name". An empty token leaves requests anonymous;
// mutating calls then fail with KindAuthenticationRequired. A non-empty
// apiURL points the client at a GitHub Enterprise instance.
func NewGithubSource(repoID, token, apiURL string, opts Options) (*GithubSource, error) {
	owner, repo, ok := strings.Cut(repoID, "/")
	if !ok || owner == "" || repo == "" {
		return nil, errors.E(errors.KindOther, fmt.Sprintf("invalid repository identifier %q, want owner/name", repoID))
	}

	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		enterprise, err := client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, errors.Wrap(errors.KindGithubRestError, "invalid GitHub API URL "+apiURL, err)
		}
		client = enterprise
	}

	return &GithubSource{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(githubRequestsPerSecond), 1),
		owner:   owner,
		repo:    repo,
		token:   token,
		opts:    opts,
	}, nil
}

// LatestCommitSHA reads the workflow commit from GITHUB_SHA.
func (s *GithubSource) LatestCommitSHA(ctx context.Context) (string, error) {
	if sha := os.Getenv(githubSHAEnv); sha != "" {
		return sha, nil
	}
	return "", errors.E(errors.KindOther, githubSHAEnv+" is not set, pass the starting commit explicitly")
}

// ReferenceIterator fetches every tag of the repository and starts a
// paginated walk of the commits below sha. Fails with KindMissingGitTags
// when the repository has no tags.
func (s *GithubSource) ReferenceIterator(ctx context.Context, sha string) (*ReferenceIterator, error) {
	tags, err := s.fetchTags(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, errors.E(errors.KindMissingGitTags, "no tags found for repository "+s.owner+"/"+s.repo)
	}
	s.tags = tags
	s.fetched = true

	slog.Debug("github source fetched tags",
		"repo", s.owner+"/"+s.repo, "count", len(tags), "start_sha", sha)

	pageSize := s.opts.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	pager := &githubPager{source: s, sha: sha, page: 1, pageSize: pageSize}
	return NewReferenceIterator(pager, tags, s.opts), nil
}

// Tags returns the tag list discovered by the last ReferenceIterator
// call. Calling it before a fetch is a contract violation.
func (s *GithubSource) Tags() ([]Tag, error) {
	if !s.fetched {
		return nil, errors.E(errors.KindSourceNotFetched, "tags requested before the source was fetched")
	}
	return s.tags, nil
}

func (s *GithubSource) fetchTags(ctx context.Context) ([]Tag, error) {
	opts := &github.ListOptions{PerPage: defaultPageSize}

	var tags []Tag
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := s.client.Repositories.ListTags(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, errors.Wrap(errors.KindGithubRestError, "list tags", err)
		}
		for _, tag := range page {
			tags = append(tags, Tag{
				Name:      tag.GetName(),
				CommitSHA: tag.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return tags, nil
}

// CreateTag creates an annotated tag object and the ref pointing at it.
func (s *GithubSource) CreateTag(ctx context.Context, name, message, commitSHA string) error {
	if s.token == "" {
		return errors.E(errors.KindAuthenticationRequired,
			"a GitHub token is required to create tags, pass --github-token or set GITHUB_TOKEN")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	tag, _, err := s.client.Git.CreateTag(ctx, s.owner, s.repo, &github.Tag{
		Tag:     github.String(name),
		Message: github.String(message),
		Object: &github.GitObject{
			Type: github.String("commit"),
			SHA:  github.String(commitSHA),
		},
	})
	if err != nil {
		return errors.Wrap(errors.KindGithubRestError, "create tag object "+name, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, _, err = s.client.Git.CreateRef(ctx, s.owner, s.repo, &github.Reference{
		Ref:    github.String("refs/tags/" + name),
		Object: &github.GitObject{SHA: tag.SHA},
	})
	if err != nil {
		return errors.Wrap(errors.KindGithubRestError, "create tag ref "+name, err)
	}

	slog.Debug("created tag", "name", name, "sha", commitSHA)
	return nil
}

// githubPager pages through the commits REST endpoint, newest first.
type githubPager struct {
	source   *GithubSource
	sha      string
	page     int
	pageSize int
	done     bool
}

func (p *githubPager) NextPage(ctx context.Context) ([]Commit, error) {
	if p.done {
		return nil, nil
	}
	if err := p.source.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &github.CommitsListOptions{
		SHA:         p.sha,
		ListOptions: github.ListOptions{Page: p.page, PerPage: p.pageSize},
	}
	page, resp, err := p.source.client.Repositories.ListCommits(ctx, p.source.owner, p.source.repo, opts)
	if err != nil {
		return nil, errors.Wrap(errors.KindGithubRestError, "list commits", err)
	}

	commits := make([]Commit, 0, len(page))
	for _, commit := range page {
		commits = append(commits, Commit{
			SHA:     commit.GetSHA(),
			Message: commit.GetCommit().GetMessage(),
		})
	}

	if resp.NextPage == 0 {
		p.done = true
	} else {
		p.page = resp.NextPage
	}
	return commits, nil
}
