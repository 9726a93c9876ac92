package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-success HTTP status returned by an upstream service.
type HTTPError struct {
	Service    string
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	prefix := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Service != "" {
		prefix = fmt.Sprintf("%s API returned HTTP %d", e.Service, e.StatusCode)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: %s - %s", prefix, e.Message, e.Body)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// NewHTTPError creates a new HTTPError for the given service response.
func NewHTTPError(service string, statusCode int, body string) HTTPError {
	return HTTPError{
		Service:    service,
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Body:       body,
	}
}

// NewConfigurationError reports a missing credential or default.
func NewConfigurationError(format string, args ...interface{}) *Error {
	return &Error{Code: ConfigurationError, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports a missing or malformed argument.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Code: InvalidParams, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a lookup that matched nothing.
func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Code: NotFoundError, Message: fmt.Sprintf(format, args...)}
}

// NewUpstreamError reports an error payload returned by a service.
func NewUpstreamError(format string, args ...interface{}) *Error {
	return &Error{Code: APIError, Message: fmt.Sprintf(format, args...)}
}

// NewTransportError reports a network failure or an unparseable response.
func NewTransportError(format string, args ...interface{}) *Error {
	return &Error{Code: NetworkError, Message: fmt.Sprintf(format, args...)}
}

// AsError classifies any error into a structured Error.
// The message is always the full text of err, so context added by wrapping
// survives; the code comes from the innermost classified error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return &Error{Code: domainErr.Code, Message: err.Error(), Data: domainErr.Data}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return &Error{
			Code:    APIError,
			Message: err.Error(),
			Data: map[string]interface{}{
				"service":    httpErr.Service,
				"statusCode": httpErr.StatusCode,
			},
		}
	}

	return &Error{Code: InternalError, Message: err.Error()}
}

// ErrorKind returns a stable, human-readable name for an error code.
func ErrorKind(code int) string {
	switch code {
	case ConfigurationError:
		return "configuration"
	case InvalidParams:
		return "validation"
	case NotFoundError:
		return "not_found"
	case APIError:
		return "upstream"
	case NetworkError, ParseError:
		return "transport"
	case MethodNotFound:
		return "unknown_tool"
	default:
		return "internal"
	}
}

// ErrorResponse renders an error as a ToolResponse.
// A not-found lookup is an ordinary answer: it is marked with "❌" and
// IsError stays false. Everything else is prefixed with "Error:".
func ErrorResponse(err error) *ToolResponse {
	mapped := AsError(err)
	if mapped == nil {
		return TextResponse("")
	}

	if IsNotFound(mapped) {
		return TextResponse("❌ " + mapped.Message)
	}

	resp := TextResponse("Error: " + mapped.Message)
	resp.IsError = true
	return resp
}

// IsNotFound reports whether err is a name-based lookup that matched nothing.
func IsNotFound(err error) bool {
	mapped := AsError(err)
	return mapped != nil && mapped.Code == NotFoundError
}
