package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"taskbridge-mcp-server/internal/domain"
)

// SlackHandler implements ToolHandler for Slack operations.
type SlackHandler struct {
	client      domain.SlackAPI
	authManager *domain.AuthenticationManager
	loc         *time.Location
}

// NewSlackHandler creates a new SlackHandler instance.
func NewSlackHandler(client domain.SlackAPI, authManager *domain.AuthenticationManager, loc *time.Location) *SlackHandler {
	return &SlackHandler{
		client:      client,
		authManager: authManager,
		loc:         loc,
	}
}

// Tool name constants for Slack operations
const (
	ToolSlackListChannels      = "slack_list_channels"
	ToolSlackGetChannelHistory = "slack_get_channel_history"
	ToolSlackPostMessage       = "slack_post_message"
)

// Argument defaults for Slack tools.
const (
	defaultChannelLimit = 50
	defaultHistoryLimit = 20
)

// ToolName returns the identifier for this handler.
func (h *SlackHandler) ToolName() string {
	return domain.ServiceSlack
}

// ListTools returns available tools for Slack operations.
func (h *SlackHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolSlackListChannels,
			Description: "List Slack channels",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"limit": numberProp("Maximum number of channels to return", defaultChannelLimit),
			}),
		},
		{
			Name:        ToolSlackGetChannelHistory,
			Description: "Get the recent message history of a Slack channel",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"channelId": stringProp("Channel ID"),
				"limit":     numberProp("Maximum number of messages", defaultHistoryLimit),
			}, "channelId"),
		},
		{
			Name:        ToolSlackPostMessage,
			Description: "Post a message to a Slack channel",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"channelId": stringProp("Channel ID"),
				"text":      stringProp("Message text"),
			}, "channelId", "text"),
		},
	}
}

// Handle processes an MCP tool call request.
func (h *SlackHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if err := h.authManager.ValidateCredentials(domain.ServiceSlack); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch req.Name {
	case ToolSlackListChannels:
		text, err = h.handleListChannels(ctx, req.Arguments)
	case ToolSlackGetChannelHistory:
		text, err = h.handleGetChannelHistory(ctx, req.Arguments)
	case ToolSlackPostMessage:
		text, err = h.handlePostMessage(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Slack tool: %s", req.Name),
		}
	}
	if err != nil {
		return nil, err
	}

	return domain.TextResponse(text), nil
}

// handleListChannels fetches one page and keeps the first limit channels.
func (h *SlackHandler) handleListChannels(ctx context.Context, args map[string]interface{}) (string, error) {
	limit, err := getIntParam(args, "limit", defaultChannelLimit)
	if err != nil {
		return "", err
	}

	channels, err := h.client.ListChannels(ctx)
	if err != nil {
		return "", err
	}
	if len(channels) > limit {
		channels = channels[:limit]
	}

	return domain.FormatChannels(channels), nil
}

func (h *SlackHandler) handleGetChannelHistory(ctx context.Context, args map[string]interface{}) (string, error) {
	channelID, err := getStringParam(args, "channelId", true)
	if err != nil {
		return "", err
	}
	limit, err := getIntParam(args, "limit", defaultHistoryLimit)
	if err != nil {
		return "", err
	}

	messages, err := h.client.ChannelHistory(ctx, channelID, limit)
	if err != nil {
		return "", err
	}

	return domain.FormatChannelHistory(messages, h.loc), nil
}

func (h *SlackHandler) handlePostMessage(ctx context.Context, args map[string]interface{}) (string, error) {
	channelID, err := getStringParam(args, "channelId", true)
	if err != nil {
		return "", err
	}
	text, err := getStringParam(args, "text", true)
	if err != nil {
		return "", err
	}

	return h.postMessage(ctx, channelID, text)
}

// postMessage posts text and renders the confirmation. It is shared with the
// integration workflows.
func (h *SlackHandler) postMessage(ctx context.Context, channelID, text string) (string, error) {
	if _, err := h.client.PostMessage(ctx, channelID, text); err != nil {
		return "", err
	}
	return domain.FormatMessagePosted(channelID, text), nil
}
