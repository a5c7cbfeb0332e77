package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/bump"
	"github.com/verbump/verbump/internal/config"
	"github.com/verbump/verbump/internal/errors"
	"github.com/verbump/verbump/internal/logging"
	"github.com/verbump/verbump/internal/output"
	"github.com/verbump/verbump/internal/source"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"

	cfgFile      string
	verbose      bool
	repoPath     string
	commitSHA    string
	githubRepo   string
	githubToken  string
	githubAPIURL string
	createTags   bool
	outputFormat string

	logger *logrus.Logger
	cfg    *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "verbump",
	Short: "Compute semantic version bumps from conventional commits",
	Long: `verbump walks commit history from a target commit back to the nearest
release tag of each version scope, classifies the conventional commits in
between against configurable bump rules, and reports the next version per
scope. It can read history from the local git installation or from the
GitHub REST API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}
		logging.Setup(os.Stderr, verbose)

		config.LoadEnv()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return nil
	},
	RunE: runBump,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: verbump.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&repoPath, "repo-path", ".", "path to the local repository")
	rootCmd.Flags().StringVar(&commitSHA, "commit-sha", "", "commit to walk history from (default: HEAD or GITHUB_SHA)")
	rootCmd.Flags().StringVar(&githubRepo, "github-repo", "", "use the GitHub API source for this owner/name repository")
	rootCmd.Flags().StringVar(&githubToken, "github-token", "", "GitHub token (default: GITHUB_TOKEN)")
	rootCmd.Flags().StringVar(&githubAPIURL, "github-api-url", "", "GitHub API base URL for enterprise instances")
	rootCmd.Flags().BoolVar(&createTags, "create-tags", false, "create one annotated tag per bumped scope")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")

	rootCmd.SetVersionTemplate(`verbump {{.Version}}
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(parseCmd)
}

// selectSource picks the GitHub source when a repository id is known,
// falling back to local git history.
func selectSource(ctx context.Context) (source.Source, error) {
	opts := source.Options{
		CommitPattern: cfg.CommitPattern,
		TagPattern:    cfg.TagPattern,
		Scopes:        cfg.VersionScopes,
	}

	repoID := githubRepo
	if repoID == "" {
		repoID = config.GithubRepository()
	}
	if repoID != "" {
		token := githubToken
		if token == "" {
			token = config.GithubToken()
		}
		apiURL := githubAPIURL
		if apiURL == "" {
			apiURL = config.GithubAPIURL()
		}
		logger.WithField("repo", repoID).Debug("using GitHub source")
		return source.NewGithubSource(repoID, token, apiURL, opts)
	}

	src := source.NewGitSource(repoPath, opts)
	if err := src.Verify(ctx); err != nil {
		return nil, err
	}
	logger.WithField("path", repoPath).Debug("using git source")
	return src, nil
}

func runBump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := selectSource(ctx)
	if err != nil {
		return err
	}

	sha := commitSHA
	if sha == "" {
		sha, err = src.LatestCommitSHA(ctx)
		if err != nil {
			return err
		}
	}

	result, err := bump.Run(ctx, src, cfg, sha)
	if err != nil {
		if errors.IsKind(err, errors.KindMissingGitTags) {
			return fmt.Errorf("%w (tag an initial version first, e.g. v0.1.0)", err)
		}
		return err
	}

	if createTags {
		if err := createScopeTags(ctx, src, result); err != nil {
			return err
		}
	}

	return output.NewFormatter(outputFormat).Format(result, os.Stdout)
}

func createScopeTags(ctx context.Context, src source.Source, result *bump.Result) error {
	for i := range result.Scopes {
		scope := &result.Scopes[i]
		if !scope.Changed() {
			continue
		}

		name := bump.TagName(scope.Scope, scope.NewVersion)
		if err := src.CreateTag(ctx, name, bump.TagMessage(scope), result.CommitSHA); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"tag": name,
			"sha": result.CommitSHA,
		}).Info("created tag")
	}
	return nil
}
