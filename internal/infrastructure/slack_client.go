package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"taskbridge-mcp-server/internal/domain"
)

// SlackClient handles Slack Web API interactions.
// Slack answers HTTP 200 for most failures and reports them through the
// "ok" and "error" fields, which are turned into upstream errors here.
type SlackClient struct {
	rest   restClient
	teamID string
}

// NewSlackClient creates a new Slack API client.
// teamID is optional and scopes channel listing for org-wide tokens.
func NewSlackClient(baseURL, teamID string, httpClient *http.Client) *SlackClient {
	return &SlackClient{
		rest:   newRESTClient("Slack", baseURL, httpClient, nil),
		teamID: teamID,
	}
}

// BaseURL returns the configured base URL.
func (c *SlackClient) BaseURL() string {
	return c.rest.baseURL
}

type channelsPage struct {
	domain.SlackEnvelope
	Channels []domain.Channel `json:"channels"`
}

type historyPage struct {
	domain.SlackEnvelope
	Messages []domain.Message `json:"messages"`
}

type postMessageResult struct {
	domain.SlackEnvelope
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// ListChannels returns the first page of public and private channels.
func (c *SlackClient) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	query := url.Values{"types": {"public_channel,private_channel"}}
	if c.teamID != "" {
		query.Set("team_id", c.teamID)
	}

	var page channelsPage
	if err := c.call(ctx, http.MethodGet, "/conversations.list", query, nil, &page, &page.SlackEnvelope); err != nil {
		return nil, err
	}
	return page.Channels, nil
}

// ChannelHistory returns up to limit recent messages of a channel, newest first.
func (c *SlackClient) ChannelHistory(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	query := url.Values{
		"channel": {channelID},
		"limit":   {strconv.Itoa(limit)},
	}

	var page historyPage
	if err := c.call(ctx, http.MethodGet, "/conversations.history", query, nil, &page, &page.SlackEnvelope); err != nil {
		return nil, err
	}
	return page.Messages, nil
}

// PostMessage posts text to a channel.
func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) (*domain.PostedMessage, error) {
	body := map[string]string{
		"channel": channelID,
		"text":    text,
	}

	var result postMessageResult
	if err := c.call(ctx, http.MethodPost, "/chat.postMessage", nil, body, &result, &result.SlackEnvelope); err != nil {
		return nil, err
	}
	return &domain.PostedMessage{Channel: result.Channel, TS: result.TS}, nil
}

// call performs the request and checks the envelope embedded in out.
func (c *SlackClient) call(ctx context.Context, method, path string, query url.Values, body, out interface{}, envelope *domain.SlackEnvelope) error {
	var raw json.RawMessage
	if err := c.rest.do(ctx, method, path, query, body, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return domain.NewTransportError("empty Slack response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewTransportError("failed to decode Slack response: %v", err)
	}
	if !envelope.OK {
		return domain.NewUpstreamError("Slack error: %s", envelope.Error)
	}
	return nil
}
