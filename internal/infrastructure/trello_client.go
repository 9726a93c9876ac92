package infrastructure

import (
	"context"
	"net/http"
	"net/url"

	"taskbridge-mcp-server/internal/domain"
)

// TrelloClient handles Trello REST API interactions.
// Key and token are appended to every request by the authenticated client.
type TrelloClient struct {
	rest restClient
}

// NewTrelloClient creates a new Trello API client.
// The baseURL should include the API version (e.g., "https://api.trello.com/1").
func NewTrelloClient(baseURL string, httpClient *http.Client) *TrelloClient {
	return &TrelloClient{
		rest: newRESTClient("Trello", baseURL, httpClient, nil),
	}
}

// BaseURL returns the configured base URL.
func (c *TrelloClient) BaseURL() string {
	return c.rest.baseURL
}

// GetBoards returns the boards of the authenticated member.
func (c *TrelloClient) GetBoards(ctx context.Context) ([]domain.Board, error) {
	var boards []domain.Board
	if err := c.rest.do(ctx, http.MethodGet, "/members/me/boards", nil, nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard returns one board.
func (c *TrelloClient) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	var board domain.Board
	if err := c.rest.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID), nil, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// GetBoardCards returns the open cards of a board in board order.
func (c *TrelloClient) GetBoardCards(ctx context.Context, boardID string) ([]domain.Card, error) {
	var cards []domain.Card
	if err := c.rest.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/cards", nil, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetBoardLists returns the open lists of a board in board order.
func (c *TrelloClient) GetBoardLists(ctx context.Context, boardID string) ([]domain.List, error) {
	var lists []domain.List
	if err := c.rest.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/lists", nil, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateCard creates a card in the given list.
func (c *TrelloClient) CreateCard(ctx context.Context, card *domain.CardCreate) (*domain.Card, error) {
	var created domain.Card
	if err := c.rest.do(ctx, http.MethodPost, "/cards", nil, card, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MoveCard moves a card to another list.
func (c *TrelloClient) MoveCard(ctx context.Context, cardID, listID string) (*domain.Card, error) {
	var moved domain.Card
	body := map[string]string{"idList": listID}
	if err := c.rest.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID), nil, body, &moved); err != nil {
		return nil, err
	}
	return &moved, nil
}

// DeleteCard permanently deletes a card.
func (c *TrelloClient) DeleteCard(ctx context.Context, cardID string) error {
	return c.rest.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(cardID), nil, nil, nil)
}
