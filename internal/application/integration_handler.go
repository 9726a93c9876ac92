package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"taskbridge-mcp-server/internal/domain"
)

// IntegrationHandler implements ToolHandler for operations spanning several
// services. Workflows run through the Orchestrator; every service involved
// must have credentials before the first step runs.
type IntegrationHandler struct {
	trello       *TrelloHandler
	slack        *SlackHandler
	github       *GitHubHandler
	orchestrator *Orchestrator
	authManager  *domain.AuthenticationManager
	now          func() time.Time
}

// NewIntegrationHandler creates a new IntegrationHandler instance.
func NewIntegrationHandler(
	trello *TrelloHandler,
	slack *SlackHandler,
	github *GitHubHandler,
	orchestrator *Orchestrator,
	authManager *domain.AuthenticationManager,
) *IntegrationHandler {
	return &IntegrationHandler{
		trello:       trello,
		slack:        slack,
		github:       github,
		orchestrator: orchestrator,
		authManager:  authManager,
		now:          time.Now,
	}
}

// Tool name constants for cross-service operations
const (
	ToolTrelloSlackIntegration       = "trello_slack_integration"
	ToolGitHubTrelloSlackIntegration = "github_trello_slack_integration"
	ToolActivitySummary              = "activity_summary"
)

// Workflow step names, used in failure messages.
const (
	StepCreateIssue = "create GitHub issue"
	StepCreateCard  = "create Trello card"
	StepPostMessage = "post Slack message"
)

// activityWindowDays is the look-back period of activity_summary.
const activityWindowDays = 7

// ToolName returns the identifier for this handler.
func (h *IntegrationHandler) ToolName() string {
	return "integration"
}

// ListTools returns the cross-service tools.
func (h *IntegrationHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolTrelloSlackIntegration,
			Description: "Create a Trello card and announce it in a Slack channel",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"cardName":        stringProp("Card name"),
				"cardDescription": stringProp("Card description"),
				"listId":          stringProp("Trello list ID (defaults to the first list of the configured board)"),
				"slackChannelId":  stringProp("Slack channel ID"),
				"slackMessage":    stringProp("Message to post (defaults to an announcement of the card)"),
			}, "cardName", "slackChannelId"),
		},
		{
			Name:        ToolGitHubTrelloSlackIntegration,
			Description: "Create a GitHub issue and a Trello card, then announce both in a Slack channel",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"issueTitle":      stringProp("Issue title"),
				"issueBody":       stringProp("Issue body"),
				"cardName":        stringProp("Card name"),
				"cardDescription": stringProp("Card description"),
				"slackChannelId":  stringProp("Slack channel ID"),
				"slackMessage":    stringProp("Message to post (defaults to an announcement of the issue and card)"),
			}, "issueTitle", "cardName", "slackChannelId"),
		},
		{
			Name:        ToolActivitySummary,
			Description: "Summarize GitHub commits of the last 7 days and the cards on the Trello board",
			InputSchema: objectSchema(nil),
		},
	}
}

// Handle processes an MCP tool call request.
func (h *IntegrationHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolTrelloSlackIntegration:
		return h.handleTrelloSlack(ctx, req.Arguments)
	case ToolGitHubTrelloSlackIntegration:
		return h.handleGitHubTrelloSlack(ctx, req.Arguments)
	case ToolActivitySummary:
		return h.handleActivitySummary(ctx)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown integration tool: %s", req.Name),
		}
	}
}

func (h *IntegrationHandler) requireServices(services ...string) error {
	for _, service := range services {
		if err := h.authManager.ValidateCredentials(service); err != nil {
			return err
		}
	}
	return nil
}

// DefaultCardAnnouncement is the Slack message posted by trello_slack_integration
// when none is given.
func DefaultCardAnnouncement(cardName string) string {
	return fmt.Sprintf("🎯 New Trello card created: *%s*", cardName)
}

// DefaultIssueAnnouncement is the Slack message posted by
// github_trello_slack_integration when none is given.
func DefaultIssueAnnouncement(issueTitle, cardName string) string {
	return fmt.Sprintf("🚀 New issue created: *%s*\n📋 Card created: *%s*", issueTitle, cardName)
}

// handleTrelloSlack creates a card, then posts the announcement.
func (h *IntegrationHandler) handleTrelloSlack(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cardName, err := getStringParam(args, "cardName", true)
	if err != nil {
		return nil, err
	}
	channelID, err := getStringParam(args, "slackChannelId", true)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "cardDescription", false)
	if err != nil {
		return nil, err
	}
	listID, err := getStringParam(args, "listId", false)
	if err != nil {
		return nil, err
	}
	message, err := getStringParamDefault(args, "slackMessage", DefaultCardAnnouncement(cardName))
	if err != nil {
		return nil, err
	}

	if err := h.requireServices(domain.ServiceTrello, domain.ServiceSlack); err != nil {
		return nil, err
	}

	return h.orchestrator.Run(ctx, "🚀 Trello + Slack integration completed successfully!",
		WorkflowStep{Name: StepCreateCard, Run: func(ctx context.Context) (string, error) {
			return h.trello.createCard(ctx, cardName, description, listID, "")
		}},
		WorkflowStep{Name: StepPostMessage, Run: func(ctx context.Context) (string, error) {
			return h.slack.postMessage(ctx, channelID, message)
		}},
	)
}

// handleGitHubTrelloSlack creates an issue, then a card, then posts the announcement.
func (h *IntegrationHandler) handleGitHubTrelloSlack(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueTitle, err := getStringParam(args, "issueTitle", true)
	if err != nil {
		return nil, err
	}
	cardName, err := getStringParam(args, "cardName", true)
	if err != nil {
		return nil, err
	}
	channelID, err := getStringParam(args, "slackChannelId", true)
	if err != nil {
		return nil, err
	}
	issueBody, err := getStringParam(args, "issueBody", false)
	if err != nil {
		return nil, err
	}
	description, err := getStringParam(args, "cardDescription", false)
	if err != nil {
		return nil, err
	}
	message, err := getStringParamDefault(args, "slackMessage", DefaultIssueAnnouncement(issueTitle, cardName))
	if err != nil {
		return nil, err
	}

	if err := h.requireServices(domain.ServiceGitHub, domain.ServiceTrello, domain.ServiceSlack); err != nil {
		return nil, err
	}
	owner, repo, err := h.github.repository(nil)
	if err != nil {
		return nil, err
	}

	return h.orchestrator.Run(ctx, "🎉 GitHub + Trello + Slack integration completed successfully!",
		WorkflowStep{Name: StepCreateIssue, Run: func(ctx context.Context) (string, error) {
			return h.github.createIssue(ctx, owner, repo, issueTitle, issueBody, nil)
		}},
		WorkflowStep{Name: StepCreateCard, Run: func(ctx context.Context) (string, error) {
			return h.trello.createCard(ctx, cardName, description, "", "")
		}},
		WorkflowStep{Name: StepPostMessage, Run: func(ctx context.Context) (string, error) {
			return h.slack.postMessage(ctx, channelID, message)
		}},
	)
}

// handleActivitySummary reads GitHub then Trello, sequentially.
func (h *IntegrationHandler) handleActivitySummary(ctx context.Context) (*domain.ToolResponse, error) {
	if err := h.requireServices(domain.ServiceGitHub, domain.ServiceTrello); err != nil {
		return nil, err
	}

	since := h.now().AddDate(0, 0, -activityWindowDays)
	recent, err := h.github.recentCommits(ctx, since)
	if err != nil {
		return nil, err
	}
	cards, err := h.trello.countCards(ctx)
	if err != nil {
		return nil, err
	}

	return domain.TextResponse(domain.FormatActivitySummary(domain.ActivitySummary{
		Days:          activityWindowDays,
		RecentCommits: recent,
		TrelloCards:   cards,
	})), nil
}
