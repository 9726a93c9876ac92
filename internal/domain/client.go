package domain

import (
	"context"
)

// TrelloAPI is the Trello service adapter consumed by the tool handlers.
type TrelloAPI interface {
	GetBoards(ctx context.Context) ([]Board, error)
	GetBoard(ctx context.Context, boardID string) (*Board, error)
	GetBoardCards(ctx context.Context, boardID string) ([]Card, error)
	GetBoardLists(ctx context.Context, boardID string) ([]List, error)
	CreateCard(ctx context.Context, card *CardCreate) (*Card, error)
	MoveCard(ctx context.Context, cardID, listID string) (*Card, error)
	DeleteCard(ctx context.Context, cardID string) error
}

// SlackAPI is the Slack service adapter consumed by the tool handlers.
type SlackAPI interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	ChannelHistory(ctx context.Context, channelID string, limit int) ([]Message, error)
	PostMessage(ctx context.Context, channelID, text string) (*PostedMessage, error)
}

// GitHubAPI is the GitHub service adapter consumed by the tool handlers.
type GitHubAPI interface {
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	ListIssues(ctx context.Context, owner, repo, state string, limit int) ([]Issue, error)
	CreateIssue(ctx context.Context, owner, repo string, issue *IssueCreate) (*Issue, error)
	ListCommits(ctx context.Context, owner, repo, branch string, limit int) ([]Commit, error)
}
