package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskbridge-mcp-server/internal/domain"
)

// RequestRouter dispatches tool calls to the handler registered for the tool.
// Every call yields a ToolResponse: unknown tools, missing arguments, handler
// errors and handler panics are all rendered as error text.
type RequestRouter struct {
	catalog  *Catalog
	logger   *StructuredLogger
	observer domain.DispatchObserver
	now      func() time.Time
}

// RouterOption configures a RequestRouter.
type RouterOption func(*RequestRouter)

// WithLogger sets the logger used for dispatch records.
func WithLogger(logger *StructuredLogger) RouterOption {
	return func(r *RequestRouter) {
		r.logger = logger
	}
}

// WithObserver reports every dispatch to observer.
func WithObserver(observer domain.DispatchObserver) RouterOption {
	return func(r *RequestRouter) {
		r.observer = observer
	}
}

// NewRequestRouter creates a router over the catalog.
func NewRequestRouter(catalog *Catalog, opts ...RouterOption) *RequestRouter {
	router := &RequestRouter{
		catalog: catalog,
		logger:  NewDiscardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// ListAllTools returns the catalog for MCP tool discovery (tools/list).
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	return r.catalog.List()
}

// Dispatch runs one tool call and always returns a response.
func (r *RequestRouter) Dispatch(ctx context.Context, req *domain.ToolRequest) *domain.ToolResponse {
	callID := uuid.NewString()
	start := r.now()

	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	r.logger.LogDebug("dispatching tool", map[string]interface{}{
		"call_id": callID,
		"tool":    req.Name,
	})

	resp, err := r.dispatch(ctx, req)
	if err != nil {
		resp = domain.ErrorResponse(err)
	}

	observation := domain.DispatchObservation{
		CallID:   callID,
		ToolName: req.Name,
		Duration: r.now().Sub(start),
		Success:  err == nil || domain.IsNotFound(err),
	}
	logContext := map[string]interface{}{
		"call_id":     callID,
		"tool":        req.Name,
		"duration_ms": observation.Duration.Milliseconds(),
	}
	if err != nil {
		observation.ErrorKind = domain.ErrorKind(domain.AsError(err).Code)
		logContext["error_kind"] = observation.ErrorKind
	}
	switch {
	case err == nil:
		r.logger.LogInfo("tool call completed", logContext)
	case observation.Success:
		logContext["reason"] = err.Error()
		r.logger.LogInfo("tool call found no match", logContext)
	default:
		r.logger.LogError("tool call failed", err, logContext)
	}

	if r.observer != nil {
		r.observer.ObserveDispatch(ctx, observation)
	}

	return resp
}

func (r *RequestRouter) dispatch(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	entry, ok := r.catalog.lookup(req.Name)
	if !ok {
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s", req.Name),
		}
	}

	if missing := missingArguments(entry.definition, req.Arguments); len(missing) > 0 {
		return nil, domain.NewValidationError("missing required parameter(s): %s", strings.Join(missing, ", "))
	}

	return r.invoke(ctx, entry.handler, req)
}

// invoke calls the handler, converting a panic into an internal error.
func (r *RequestRouter) invoke(ctx context.Context, handler domain.ToolHandler, req *domain.ToolRequest) (resp *domain.ToolResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.LogError("tool handler panicked", fmt.Errorf("%v", rec), map[string]interface{}{
				"tool":  req.Name,
				"stack": string(debug.Stack()),
			})
			resp = nil
			err = &domain.Error{
				Code:    domain.InternalError,
				Message: fmt.Sprintf("internal error while running %s: %v", req.Name, rec),
			}
		}
	}()

	resp, err = handler.Handle(ctx, req)
	if err == nil && resp == nil {
		err = &domain.Error{
			Code:    domain.InternalError,
			Message: fmt.Sprintf("%s returned no result", req.Name),
		}
	}
	return resp, err
}

// missingArguments lists the required arguments that are absent or null,
// in schema order. Values are not type-checked.
func missingArguments(def domain.ToolDefinition, args map[string]interface{}) []string {
	var missing []string
	for _, name := range def.RequiredArguments() {
		if value, ok := args[name]; !ok || value == nil {
			missing = append(missing, name)
		}
	}
	return missing
}
