package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"taskbridge-mcp-server/internal/domain"
)

// TrelloHandler implements ToolHandler for Trello operations.
type TrelloHandler struct {
	client      domain.TrelloAPI
	resolver    *Resolver
	authManager *domain.AuthenticationManager
	loc         *time.Location
}

// NewTrelloHandler creates a new TrelloHandler instance.
func NewTrelloHandler(client domain.TrelloAPI, resolver *Resolver, authManager *domain.AuthenticationManager, loc *time.Location) *TrelloHandler {
	return &TrelloHandler{
		client:      client,
		resolver:    resolver,
		authManager: authManager,
		loc:         loc,
	}
}

// Tool name constants for Trello operations
const (
	ToolTrelloGetBoards      = "trello_get_boards"
	ToolTrelloGetCards       = "trello_get_cards"
	ToolTrelloGetLists       = "trello_get_lists"
	ToolTrelloCreateCard     = "trello_create_card"
	ToolTrelloMoveCard       = "trello_move_card"
	ToolTrelloMoveCardByName = "trello_move_card_by_name"
	ToolTrelloDeleteCard     = "trello_delete_card"
	ToolTrelloBoardStats     = "trello_board_stats"
)

// ToolName returns the identifier for this handler.
func (h *TrelloHandler) ToolName() string {
	return domain.ServiceTrello
}

// ListTools returns available tools for Trello operations.
func (h *TrelloHandler) ListTools() []domain.ToolDefinition {
	boardID := stringProp("Board ID (optional, defaults to the configured board)")

	return []domain.ToolDefinition{
		{
			Name:        ToolTrelloGetBoards,
			Description: "List all Trello boards of the authenticated member",
			InputSchema: objectSchema(nil),
		},
		{
			Name:        ToolTrelloGetCards,
			Description: "List the cards of a board grouped by list",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"boardId": boardID,
			}),
		},
		{
			Name:        ToolTrelloGetLists,
			Description: "List the lists of a board with their card counts",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"boardId": boardID,
			}),
		},
		{
			Name:        ToolTrelloCreateCard,
			Description: "Create a new Trello card",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"name":        stringProp("Card name"),
				"description": stringProp("Card description"),
				"listId":      stringProp("ID of the list to create the card in (defaults to the first list of the configured board)"),
				"listName":    stringProp("Name of the list on the configured board (alternative to listId)"),
			}, "name"),
		},
		{
			Name:        ToolTrelloMoveCard,
			Description: "Move a card to another list",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"cardId": stringProp("Card ID"),
				"listId": stringProp("Destination list ID"),
			}, "cardId", "listId"),
		},
		{
			Name:        ToolTrelloMoveCardByName,
			Description: "Move a card to another list, both found by name on the configured board",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"cardName": stringProp("Card name (case-insensitive, first match wins)"),
				"listName": stringProp("Destination list name (case-insensitive, first match wins)"),
			}, "cardName", "listName"),
		},
		{
			Name:        ToolTrelloDeleteCard,
			Description: "Delete a Trello card by ID or by name",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"cardId":   stringProp("ID of the card to delete"),
				"cardName": stringProp("Card name (alternative to cardId; case-insensitive, first match wins)"),
			}),
		},
		{
			Name:        ToolTrelloBoardStats,
			Description: "Show how cards are distributed over the lists of a board",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"boardId": boardID,
			}),
		},
	}
}

// Handle processes an MCP tool call request.
func (h *TrelloHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if err := h.authManager.ValidateCredentials(domain.ServiceTrello); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch req.Name {
	case ToolTrelloGetBoards:
		text, err = h.handleGetBoards(ctx)
	case ToolTrelloGetCards:
		text, err = h.handleGetCards(ctx, req.Arguments)
	case ToolTrelloGetLists:
		text, err = h.handleGetLists(ctx, req.Arguments)
	case ToolTrelloCreateCard:
		text, err = h.handleCreateCard(ctx, req.Arguments)
	case ToolTrelloMoveCard:
		text, err = h.handleMoveCard(ctx, req.Arguments)
	case ToolTrelloMoveCardByName:
		text, err = h.handleMoveCardByName(ctx, req.Arguments)
	case ToolTrelloDeleteCard:
		text, err = h.handleDeleteCard(ctx, req.Arguments)
	case ToolTrelloBoardStats:
		text, err = h.handleBoardStats(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Trello tool: %s", req.Name),
		}
	}
	if err != nil {
		return nil, err
	}

	return domain.TextResponse(text), nil
}

func (h *TrelloHandler) handleGetBoards(ctx context.Context) (string, error) {
	boards, err := h.client.GetBoards(ctx)
	if err != nil {
		return "", err
	}
	return domain.FormatBoards(boards), nil
}

// handleGetCards fetches board, cards and lists concurrently; the three
// reads are independent.
func (h *TrelloHandler) handleGetCards(ctx context.Context, args map[string]interface{}) (string, error) {
	boardID, err := getStringParam(args, "boardId", false)
	if err != nil {
		return "", err
	}
	board, err := h.resolver.Board(boardID)
	if err != nil {
		return "", err
	}

	var (
		wg       sync.WaitGroup
		info     *domain.Board
		cards    []domain.Card
		lists    []domain.List
		boardErr error
		cardsErr error
		listErr  error
	)
	wg.Add(3)
	go collect(&wg, &boardErr, func() (err error) {
		info, err = h.client.GetBoard(ctx, board.ID)
		return err
	})
	go collect(&wg, &cardsErr, func() (err error) {
		cards, err = h.client.GetBoardCards(ctx, board.ID)
		return err
	})
	go collect(&wg, &listErr, func() (err error) {
		lists, err = h.client.GetBoardLists(ctx, board.ID)
		return err
	})
	wg.Wait()

	for _, err := range []error{boardErr, cardsErr, listErr} {
		if err != nil {
			return "", err
		}
	}

	return domain.FormatBoardView(info, cards, lists, h.loc), nil
}

// collect runs fn on a goroutine started by the caller, storing its error.
// A panic is stored as an error so it cannot escape the dispatcher.
func collect(wg *sync.WaitGroup, errp *error, fn func() error) {
	defer wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			*errp = &domain.Error{Code: domain.InternalError, Message: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	*errp = fn()
}

func (h *TrelloHandler) handleGetLists(ctx context.Context, args map[string]interface{}) (string, error) {
	boardID, err := getStringParam(args, "boardId", false)
	if err != nil {
		return "", err
	}
	board, err := h.resolver.Board(boardID)
	if err != nil {
		return "", err
	}

	lists, err := h.client.GetBoardLists(ctx, board.ID)
	if err != nil {
		return "", err
	}
	cards, err := h.client.GetBoardCards(ctx, board.ID)
	if err != nil {
		return "", err
	}

	return domain.FormatLists(lists, cards), nil
}

func (h *TrelloHandler) handleCreateCard(ctx context.Context, args map[string]interface{}) (string, error) {
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return "", err
	}
	description, err := getStringParam(args, "description", false)
	if err != nil {
		return "", err
	}
	listID, err := getStringParam(args, "listId", false)
	if err != nil {
		return "", err
	}
	listName, err := getStringParam(args, "listName", false)
	if err != nil {
		return "", err
	}

	return h.createCard(ctx, name, description, listID, listName)
}

// createCard creates a card in the resolved list and renders the confirmation.
// It is shared with the integration workflows.
func (h *TrelloHandler) createCard(ctx context.Context, name, description, listID, listName string) (string, error) {
	target, err := h.resolver.TargetList(ctx, listID, listName)
	if err != nil {
		return "", err
	}

	card, err := h.client.CreateCard(ctx, &domain.CardCreate{
		Name:   name,
		Desc:   description,
		IDList: target.ID,
	})
	if err != nil {
		return "", err
	}

	return domain.FormatCardCreated(card, target.Label), nil
}

func (h *TrelloHandler) handleMoveCard(ctx context.Context, args map[string]interface{}) (string, error) {
	cardID, err := getStringParam(args, "cardId", true)
	if err != nil {
		return "", err
	}
	listID, err := getStringParam(args, "listId", true)
	if err != nil {
		return "", err
	}

	card, err := h.client.MoveCard(ctx, cardID, listID)
	if err != nil {
		return "", err
	}
	return domain.FormatCardMoved(card, listID), nil
}

func (h *TrelloHandler) handleMoveCardByName(ctx context.Context, args map[string]interface{}) (string, error) {
	cardName, err := getStringParam(args, "cardName", true)
	if err != nil {
		return "", err
	}
	listName, err := getStringParam(args, "listName", true)
	if err != nil {
		return "", err
	}

	card, err := h.resolver.Card(ctx, "", cardName)
	if err != nil {
		return "", err
	}
	list, err := h.resolver.TargetList(ctx, "", listName)
	if err != nil {
		return "", err
	}

	moved, err := h.client.MoveCard(ctx, card.ID, list.ID)
	if err != nil {
		return "", err
	}
	return domain.FormatCardMoved(moved, list.Label), nil
}

func (h *TrelloHandler) handleDeleteCard(ctx context.Context, args map[string]interface{}) (string, error) {
	cardID, err := getStringParam(args, "cardId", false)
	if err != nil {
		return "", err
	}
	cardName, err := getStringParam(args, "cardName", false)
	if err != nil {
		return "", err
	}

	target, err := h.resolver.Card(ctx, cardID, cardName)
	if err != nil {
		return "", err
	}

	if err := h.client.DeleteCard(ctx, target.ID); err != nil {
		return "", fmt.Errorf("failed to delete card: %w", err)
	}

	if target.Source == SourceLookup {
		return domain.FormatCardDeleted(target.Label), nil
	}
	return domain.FormatCardDeleted(""), nil
}

func (h *TrelloHandler) handleBoardStats(ctx context.Context, args map[string]interface{}) (string, error) {
	boardID, err := getStringParam(args, "boardId", false)
	if err != nil {
		return "", err
	}
	board, err := h.resolver.Board(boardID)
	if err != nil {
		return "", err
	}

	cards, err := h.client.GetBoardCards(ctx, board.ID)
	if err != nil {
		return "", err
	}
	lists, err := h.client.GetBoardLists(ctx, board.ID)
	if err != nil {
		return "", err
	}

	return domain.FormatBoardStats(domain.ComputeBoardStats(cards, lists)), nil
}

// countCards returns the number of cards on the configured board.
func (h *TrelloHandler) countCards(ctx context.Context) (int, error) {
	board, err := h.resolver.Board("")
	if err != nil {
		return 0, err
	}
	cards, err := h.client.GetBoardCards(ctx, board.ID)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}
