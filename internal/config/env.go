package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables the CLI reads when flags are not given.
const (
	// EnvGithubToken authorizes GitHub REST API calls.
	EnvGithubToken = "GITHUB_TOKEN"
	// EnvGithubRepository selects the GitHub source, format owner/name.
	// Set automatically inside GitHub Actions.
	EnvGithubRepository = "GITHUB_REPOSITORY"
	// EnvGithubAPIURL overrides the API base URL for GitHub Enterprise.
	EnvGithubAPIURL = "GITHUB_API_URL"
)

// LoadEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadEnv() {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()
}

// GithubToken returns the configured GitHub token, or empty.
func GithubToken() string {
	return os.Getenv(EnvGithubToken)
}

// GithubRepository returns the configured GitHub repository id, or empty.
func GithubRepository() string {
	return os.Getenv(EnvGithubRepository)
}

// GithubAPIURL returns the configured GitHub API base URL override, or
// empty for api.github.com.
func GithubAPIURL() string {
	return os.Getenv(EnvGithubAPIURL)
}
