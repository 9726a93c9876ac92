package application

import (
	"context"
	"encoding/json"
	"fmt"

	"taskbridge-mcp-server/internal/domain"
)

// Server identity reported by initialize.
const (
	ServerName      = "taskbridge-mcp-server"
	ServerVersion   = "1.0.0"
	ProtocolVersion = "2024-11-05"
)

// Server is the main MCP server implementation.
// It reads requests from the transport one at a time and implements the
// MCP protocol methods on top of the request router.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	config    *domain.Config
	logger    *StructuredLogger
	done      chan struct{}
}

// NewServer creates a new MCP server instance.
func NewServer(transport domain.Transport, router *RequestRouter, config *domain.Config, logger *StructuredLogger) *Server {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &Server{
		transport: transport,
		router:    router,
		config:    config,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start starts the transport and begins processing requests in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, map[string]interface{}{
			"transport_type": s.config.Transport.Type,
		})
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"transport_type": s.config.Transport.Type,
		"tools":          len(s.router.ListAllTools()),
	})

	go s.processRequests(ctx)

	return nil
}

// Done is closed when the request loop exits, either because the context
// was cancelled or because the transport closed its request channel.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) processRequests(ctx context.Context) {
	defer close(s.done)
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return
		case req, ok := <-reqChan:
			if !ok {
				s.logger.LogInfo("transport closed", nil)
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request. Notifications get no reply.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.LogDebug("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	response := s.respond(ctx, req)
	if response == nil || req.IsNotification() {
		return
	}
	response.SessionID = req.SessionID

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": req.ID,
		})
	}
}

func (s *Server) respond(ctx context.Context, req *domain.Request) *domain.Response {
	if req.Method == "" {
		return errorResponse(req.ID, domain.InvalidRequest, "Invalid Request", "method is required")
	}

	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": ServerVersion,
			},
		})
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{})
	case "tools/list":
		return resultResponse(req.ID, map[string]interface{}{
			"tools": s.router.ListAllTools(),
		})
	case "tools/call":
		toolReq, err := parseToolRequest(req.Params)
		if err != nil {
			return errorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		}
		return resultResponse(req.ID, s.router.Dispatch(ctx, toolReq))
	default:
		return errorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
	}
}

// parseToolRequest converts tools/call params into a ToolRequest.
func parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

func resultResponse(id interface{}, result interface{}) *domain.Response {
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

func errorResponse(id interface{}, code int, message string, data interface{}) *domain.Response {
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}
