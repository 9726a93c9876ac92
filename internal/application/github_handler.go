package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"taskbridge-mcp-server/internal/domain"
)

// GitHubHandler implements ToolHandler for GitHub operations.
// Owner and repository default to the configured ones.
type GitHubHandler struct {
	client      domain.GitHubAPI
	resolver    *Resolver
	authManager *domain.AuthenticationManager
	loc         *time.Location
}

// NewGitHubHandler creates a new GitHubHandler instance.
func NewGitHubHandler(client domain.GitHubAPI, resolver *Resolver, authManager *domain.AuthenticationManager, loc *time.Location) *GitHubHandler {
	return &GitHubHandler{
		client:      client,
		resolver:    resolver,
		authManager: authManager,
		loc:         loc,
	}
}

// Tool name constants for GitHub operations
const (
	ToolGitHubGetRepoInfo = "github_get_repo_info"
	ToolGitHubListIssues  = "github_list_issues"
	ToolGitHubCreateIssue = "github_create_issue"
	ToolGitHubListCommits = "github_list_commits"
	ToolGitHubCommitStats = "github_commit_stats"
)

// Argument defaults for GitHub tools.
const (
	defaultIssueState       = "open"
	defaultIssueLimit       = 20
	defaultBranch           = "main"
	defaultCommitLimit      = 20
	defaultCommitStatsLimit = 100
)

// ToolName returns the identifier for this handler.
func (h *GitHubHandler) ToolName() string {
	return domain.ServiceGitHub
}

func repoProperties(extra map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"owner": stringProp("Repository owner (optional, defaults to the configured owner)"),
		"repo":  stringProp("Repository name (optional, defaults to the configured repository)"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// ListTools returns available tools for GitHub operations.
func (h *GitHubHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolGitHubGetRepoInfo,
			Description: "Get GitHub repository information",
			InputSchema: objectSchema(repoProperties(nil)),
		},
		{
			Name:        ToolGitHubListIssues,
			Description: "List issues of a GitHub repository",
			InputSchema: objectSchema(repoProperties(map[string]*jsonschema.Schema{
				"state": stringPropDefault("Issue state: open, closed or all", defaultIssueState),
				"limit": numberProp("Maximum number of issues", defaultIssueLimit),
			})),
		},
		{
			Name:        ToolGitHubCreateIssue,
			Description: "Create a new GitHub issue",
			InputSchema: objectSchema(repoProperties(map[string]*jsonschema.Schema{
				"title":  stringProp("Issue title"),
				"body":   stringProp("Issue body"),
				"labels": stringArrayProp("Labels to apply"),
			}), "title"),
		},
		{
			Name:        ToolGitHubListCommits,
			Description: "List recent commits of a GitHub repository",
			InputSchema: objectSchema(repoProperties(map[string]*jsonschema.Schema{
				"branch": stringPropDefault("Branch name", defaultBranch),
				"limit":  numberProp("Maximum number of commits", defaultCommitLimit),
			})),
		},
		{
			Name:        ToolGitHubCommitStats,
			Description: "Rank contributors by number of recent commits",
			InputSchema: objectSchema(repoProperties(map[string]*jsonschema.Schema{
				"limit": numberProp("Number of recent commits to analyze", defaultCommitStatsLimit),
			})),
		},
	}
}

// Handle processes an MCP tool call request.
func (h *GitHubHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if err := h.authManager.ValidateCredentials(domain.ServiceGitHub); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch req.Name {
	case ToolGitHubGetRepoInfo:
		text, err = h.handleGetRepoInfo(ctx, req.Arguments)
	case ToolGitHubListIssues:
		text, err = h.handleListIssues(ctx, req.Arguments)
	case ToolGitHubCreateIssue:
		text, err = h.handleCreateIssue(ctx, req.Arguments)
	case ToolGitHubListCommits:
		text, err = h.handleListCommits(ctx, req.Arguments)
	case ToolGitHubCommitStats:
		text, err = h.handleCommitStats(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown GitHub tool: %s", req.Name),
		}
	}
	if err != nil {
		return nil, err
	}

	return domain.TextResponse(text), nil
}

// repository resolves owner and repo from the arguments or configuration.
func (h *GitHubHandler) repository(args map[string]interface{}) (owner, repo string, err error) {
	ownerArg, err := getStringParam(args, "owner", false)
	if err != nil {
		return "", "", err
	}
	repoArg, err := getStringParam(args, "repo", false)
	if err != nil {
		return "", "", err
	}

	o, err := h.resolver.Owner(ownerArg)
	if err != nil {
		return "", "", err
	}
	r, err := h.resolver.Repo(repoArg)
	if err != nil {
		return "", "", err
	}
	return o.ID, r.ID, nil
}

func (h *GitHubHandler) handleGetRepoInfo(ctx context.Context, args map[string]interface{}) (string, error) {
	owner, repo, err := h.repository(args)
	if err != nil {
		return "", err
	}

	repository, err := h.client.GetRepository(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository information: %w", err)
	}
	return domain.FormatRepository(repository, h.loc), nil
}

func (h *GitHubHandler) handleListIssues(ctx context.Context, args map[string]interface{}) (string, error) {
	owner, repo, err := h.repository(args)
	if err != nil {
		return "", err
	}
	state, err := getStringParamDefault(args, "state", defaultIssueState)
	if err != nil {
		return "", err
	}
	limit, err := getIntParam(args, "limit", defaultIssueLimit)
	if err != nil {
		return "", err
	}

	issues, err := h.client.ListIssues(ctx, owner, repo, state, limit)
	if err != nil {
		return "", fmt.Errorf("failed to list issues: %w", err)
	}
	return domain.FormatIssues(issues, h.loc), nil
}

func (h *GitHubHandler) handleCreateIssue(ctx context.Context, args map[string]interface{}) (string, error) {
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return "", err
	}
	body, err := getStringParam(args, "body", false)
	if err != nil {
		return "", err
	}
	labels, err := getStringSliceParam(args, "labels")
	if err != nil {
		return "", err
	}
	owner, repo, err := h.repository(args)
	if err != nil {
		return "", err
	}

	return h.createIssue(ctx, owner, repo, title, body, labels)
}

// createIssue opens an issue and renders the confirmation. It is shared with
// the integration workflows.
func (h *GitHubHandler) createIssue(ctx context.Context, owner, repo, title, body string, labels []string) (string, error) {
	if labels == nil {
		labels = []string{}
	}
	issue, err := h.client.CreateIssue(ctx, owner, repo, &domain.IssueCreate{
		Title:  title,
		Body:   body,
		Labels: labels,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create issue: %w", err)
	}
	return domain.FormatIssueCreated(issue), nil
}

func (h *GitHubHandler) handleListCommits(ctx context.Context, args map[string]interface{}) (string, error) {
	owner, repo, err := h.repository(args)
	if err != nil {
		return "", err
	}
	branch, err := getStringParamDefault(args, "branch", defaultBranch)
	if err != nil {
		return "", err
	}
	limit, err := getIntParam(args, "limit", defaultCommitLimit)
	if err != nil {
		return "", err
	}

	commits, err := h.client.ListCommits(ctx, owner, repo, branch, limit)
	if err != nil {
		return "", fmt.Errorf("failed to list commits: %w", err)
	}
	return domain.FormatCommits(commits, h.loc), nil
}

// handleCommitStats analyzes the most recent commits of the default branch.
func (h *GitHubHandler) handleCommitStats(ctx context.Context, args map[string]interface{}) (string, error) {
	owner, repo, err := h.repository(args)
	if err != nil {
		return "", err
	}
	limit, err := getIntParam(args, "limit", defaultCommitStatsLimit)
	if err != nil {
		return "", err
	}

	commits, err := h.client.ListCommits(ctx, owner, repo, "", limit)
	if err != nil {
		return "", fmt.Errorf("failed to list commits: %w", err)
	}
	return domain.FormatCommitStats(domain.ComputeCommitStats(owner+"/"+repo, commits)), nil
}

// recentCommits returns the number of commits authored at or after since
// among the latest page of the configured repository.
func (h *GitHubHandler) recentCommits(ctx context.Context, since time.Time) (int, error) {
	owner, repo, err := h.repository(nil)
	if err != nil {
		return 0, err
	}
	commits, err := h.client.ListCommits(ctx, owner, repo, "", defaultCommitStatsLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list commits: %w", err)
	}
	return domain.CountCommitsSince(commits, since), nil
}
