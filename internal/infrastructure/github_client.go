package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"taskbridge-mcp-server/internal/domain"
)

// GitHubUserAgent identifies the server to the GitHub API, which rejects
// requests without a User-Agent.
const GitHubUserAgent = "taskbridge-mcp-server"

// GitHubClient handles GitHub REST API v3 interactions.
type GitHubClient struct {
	rest restClient
}

// NewGitHubClient creates a new GitHub API client.
func NewGitHubClient(baseURL string, httpClient *http.Client) *GitHubClient {
	return &GitHubClient{
		rest: newRESTClient("GitHub", baseURL, httpClient, map[string]string{
			"Accept":     "application/vnd.github.v3+json",
			"User-Agent": GitHubUserAgent,
		}),
	}
}

// BaseURL returns the configured base URL.
func (c *GitHubClient) BaseURL() string {
	return c.rest.baseURL
}

func repoPath(owner, repo string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

// GetRepository returns repository metadata.
func (c *GitHubClient) GetRepository(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	var repository domain.Repository
	if err := c.rest.do(ctx, http.MethodGet, repoPath(owner, repo), nil, nil, &repository); err != nil {
		return nil, err
	}
	return &repository, nil
}

// ListIssues returns one page of issues in the given state.
func (c *GitHubClient) ListIssues(ctx context.Context, owner, repo, state string, limit int) ([]domain.Issue, error) {
	query := url.Values{
		"state":    {state},
		"per_page": {strconv.Itoa(limit)},
	}

	var issues []domain.Issue
	if err := c.rest.do(ctx, http.MethodGet, repoPath(owner, repo)+"/issues", query, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// CreateIssue opens a new issue.
func (c *GitHubClient) CreateIssue(ctx context.Context, owner, repo string, issue *domain.IssueCreate) (*domain.Issue, error) {
	var created domain.Issue
	if err := c.rest.do(ctx, http.MethodPost, repoPath(owner, repo)+"/issues", nil, issue, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListCommits returns one page of commits reachable from branch.
func (c *GitHubClient) ListCommits(ctx context.Context, owner, repo, branch string, limit int) ([]domain.Commit, error) {
	query := url.Values{"per_page": {strconv.Itoa(limit)}}
	if branch != "" {
		query.Set("sha", branch)
	}

	var commits []domain.Commit
	if err := c.rest.do(ctx, http.MethodGet, repoPath(owner, repo)+"/commits", query, nil, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}
