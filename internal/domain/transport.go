package domain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Transport defines the interface for MCP transport mechanisms.
// Implementations handle communication between MCP clients and the server
// using either stdio or HTTP transport.
type Transport interface {
	// Start begins listening for incoming MCP messages.
	Start(ctx context.Context) error

	// Send transmits a JSON-RPC response to the client.
	Send(response *Response) error

	// Receive returns a channel for incoming JSON-RPC requests.
	// The channel is closed when the transport is shut down.
	Receive() <-chan *Request

	// Close gracefully shuts down the transport.
	Close() error
}

// maxMessageSize bounds a single newline-delimited stdio message. Longer
// lines are discarded and answered with a parse error.
const maxMessageSize = 4 * 1024 * 1024

// decodeRequest parses one JSON-RPC message. The returned Error is ready to
// be sent back to the client.
func decodeRequest(data []byte) (*Request, *Error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &Error{Code: ParseError, Message: "Parse error", Data: err.Error()}
	}
	if req.JSONRPC != "2.0" {
		return &req, &Error{Code: InvalidRequest, Message: "Invalid Request", Data: "invalid jsonrpc version"}
	}
	return &req, nil
}

func discardLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// StdioTransport implements Transport using stdin/stdout for communication.
// It reads newline-delimited JSON-RPC messages and writes one response per line.
type StdioTransport struct {
	reader     *bufio.Reader
	writer     *bufio.Writer
	maxMessage int
	reqChan    chan *Request
	logger     *log.Logger
	mu         sync.Mutex
	closed     bool
}

// NewStdioTransport creates a StdioTransport over os.Stdin and os.Stdout.
func NewStdioTransport(logger *log.Logger) *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout, logger)
}

// NewStdioTransportWithIO creates a StdioTransport with custom IO streams.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer, logger *log.Logger) *StdioTransport {
	return &StdioTransport{
		reader:     bufio.NewReaderSize(reader, 64*1024),
		writer:     bufio.NewWriter(writer),
		maxMessage: maxMessageSize,
		reqChan:    make(chan *Request, 10),
		logger:     discardLogger(logger),
	}
}

// Start spawns the read loop.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	go t.readLoop(ctx)
	return nil
}

func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		line, tooLong, readErr := t.readLine()

		switch {
		case tooLong:
			t.logger.Warn("discarded oversized stdio message", "limit", t.maxMessage)
			_ = t.Send(&Response{JSONRPC: "2.0", Error: &Error{
				Code:    ParseError,
				Message: "Parse error",
				Data:    fmt.Sprintf("message exceeds %d bytes", t.maxMessage),
			}})
		case len(line) > 0:
			if !t.deliver(ctx, line) {
				return
			}
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				t.logger.Error("stdio read failed", "err", readErr)
			}
			return
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// maxMessage is consumed up to its newline and reported as tooLong.
func (t *StdioTransport) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, readErr := t.reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > t.maxMessage+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(readErr, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, readErr
	}
}

// deliver decodes one line and queues it. It reports false once ctx is done.
func (t *StdioTransport) deliver(ctx context.Context, line []byte) bool {
	req, rpcErr := decodeRequest(line)
	if rpcErr != nil {
		var id interface{}
		if req != nil {
			id = req.ID
		}
		t.logger.Warn("rejected stdio message", "code", rpcErr.Code, "reason", rpcErr.Data)
		_ = t.Send(&Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
		return true
	}

	select {
	case t.reqChan <- req:
		return true
	case <-ctx.Done():
		return false
	}
}

// Send writes a JSON-RPC response as a single line.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}
	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	// json.Marshal escapes control characters, so the output has no raw newline
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}
	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close marks the transport closed. The request channel is closed by the
// read loop when stdin ends.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// HTTPTransport implements Transport using HTTP with SSE.
// GET /mcp opens an event stream and announces the message endpoint;
// POST /mcp/message?sessionId=<id> submits a request whose response is
// delivered on that session's stream.
type HTTPTransport struct {
	host    string
	port    int
	server  *http.Server
	reqChan chan *Request
	logger  *log.Logger

	mu     sync.Mutex
	closed bool

	sessions   map[string]*sseSession
	sessionsMu sync.RWMutex

	keepAlive time.Duration
}

type sseSession struct {
	id          string
	messageChan chan *Response
	done        chan struct{}
	closeOnce   sync.Once
}

func (s *sseSession) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(host string, port int, logger *log.Logger) *HTTPTransport {
	return &HTTPTransport{
		host:      host,
		port:      port,
		reqChan:   make(chan *Request, 10),
		logger:    discardLogger(logger),
		sessions:  make(map[string]*sseSession),
		keepAlive: 30 * time.Second,
	}
}

// Handler returns the HTTP handler serving the SSE and message endpoints.
func (t *HTTPTransport) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/mcp", t.handleSSE)
	r.Post("/mcp/message", t.handleMessage)
	return r
}

// Start begins serving HTTP.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.server = &http.Server{
		Addr:              net.JoinHostPort(t.host, strconv.Itoa(t.port)),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := t.server
	t.mu.Unlock()

	go func() {
		t.logger.Info("http transport listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("http transport stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = t.Close()
	}()

	return nil
}

func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	session := &sseSession{
		id:          uuid.NewString(),
		messageChan: make(chan *Response, 10),
		done:        make(chan struct{}),
	}

	t.sessionsMu.Lock()
	t.sessions[session.id] = session
	t.sessionsMu.Unlock()

	defer func() {
		t.sessionsMu.Lock()
		delete(t.sessions, session.id)
		t.sessionsMu.Unlock()
		session.close()
		t.logger.Debug("sse session closed", "session", session.id)
	}()

	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/message?sessionId=%s\n\n", session.id)
	flusher.Flush()
	t.logger.Debug("sse session established", "session", session.id, "remote", r.RemoteAddr)

	ticker := time.NewTicker(t.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-session.done:
			return
		case response := <-session.messageChan:
			data, err := json.Marshal(response)
			if err != nil {
				t.logger.Error("failed to marshal sse response", "session", session.id, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func (t *HTTPTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "Missing sessionId parameter", http.StatusBadRequest)
		return
	}

	t.sessionsMu.RLock()
	session, exists := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	if !exists {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	req, rpcErr := decodeRequest(body)
	if rpcErr != nil {
		var id interface{}
		if req != nil {
			id = req.ID
		}
		t.deliver(session, &Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
		w.WriteHeader(http.StatusAccepted)
		return
	}
	req.SessionID = sessionID

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	select {
	case t.reqChan <- req:
		w.WriteHeader(http.StatusAccepted)
	default:
		t.deliver(session, &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: InternalError, Message: "Internal error", Data: "request queue full"},
		})
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func (t *HTTPTransport) deliver(session *sseSession, response *Response) {
	select {
	case session.messageChan <- response:
	default:
		t.logger.Warn("dropping sse response: channel full", "session", session.id)
	}
}

// Send delivers a response to the session its request arrived on.
// Responses without a session are broadcast to every open session.
func (t *HTTPTransport) Send(response *Response) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return fmt.Errorf("transport is closed")
	}
	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()

	if response.SessionID != "" {
		session, ok := t.sessions[response.SessionID]
		if !ok {
			return fmt.Errorf("session %s is no longer connected", response.SessionID)
		}
		t.deliver(session, response)
		return nil
	}

	if len(t.sessions) == 0 {
		return fmt.Errorf("no active sessions")
	}
	for _, session := range t.sessions {
		t.deliver(session, response)
	}
	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *HTTPTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close shuts down the HTTP server and every SSE session.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.reqChan)
	server := t.server
	t.mu.Unlock()

	t.sessionsMu.Lock()
	for _, session := range t.sessions {
		session.close()
	}
	t.sessions = make(map[string]*sseSession)
	t.sessionsMu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
