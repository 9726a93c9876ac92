package domain

import (
	"context"
	"time"
)

// ToolHandler processes requests for one group of tools.
// Each service (Trello, Slack, GitHub) and the cross-service integrations
// have their own handler implementing this interface.
type ToolHandler interface {
	// Handle processes an MCP tool call request.
	// Returns the tool response or an error if processing fails.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// ListTools returns the tools served by this handler, in a stable order.
	ListTools() []ToolDefinition

	// ToolName returns the identifier for this handler.
	ToolName() string
}

// DispatchObservation describes one completed tool dispatch.
type DispatchObservation struct {
	CallID    string
	ToolName  string
	Duration  time.Duration
	Success   bool
	ErrorKind string
}

// DispatchObserver receives an observation for every dispatched tool call.
type DispatchObserver interface {
	ObserveDispatch(ctx context.Context, observation DispatchObservation)
}
