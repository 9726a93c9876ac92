package domain

// Request represents a JSON-RPC 2.0 request message.
// A request without an ID is a notification and expects no response.
type Request struct {
	JSONRPC string      `json:"jsonrpc"` // Must be "2.0"
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`

	// SessionID identifies the HTTP/SSE session the request arrived on.
	// Empty for stdio.
	SessionID string `json:"-"`
}

// IsNotification reports whether the request carries no ID.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response represents a JSON-RPC 2.0 response message.
type Response struct {
	JSONRPC string      `json:"jsonrpc"` // Must be "2.0"
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`

	// SessionID routes the response back to the originating session.
	SessionID string `json:"-"`
}

// Error represents a JSON-RPC 2.0 error object.
// The same type carries structured tool failures inside the server; the
// request router renders those into a text ToolResponse instead of a
// protocol-level error.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return e.Message
}

// JSON-RPC 2.0 error codes
const (
	// Standard JSON-RPC 2.0 error codes
	ParseError     = -32700 // Invalid JSON received
	InvalidRequest = -32600 // Invalid JSON-RPC request structure
	MethodNotFound = -32601 // Unknown MCP method or tool
	InvalidParams  = -32602 // Missing or malformed tool arguments
	InternalError  = -32603 // Server internal error

	// Application-specific error codes
	ConfigurationError = -32001 // Required credential or default is not configured
	APIError           = -32003 // Upstream service returned an error
	NetworkError       = -32004 // Transport failure or unparseable upstream response
	NotFoundError      = -32006 // Name-based lookup found no match
)
