// Package api serves the companion HTTP endpoint: a liveness probe and a
// small Trello card list/create API for callers that do not speak MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taskbridge-mcp-server/internal/application"
	"taskbridge-mcp-server/internal/domain"
)

// Server contains the configured router and the Trello client behind it.
type Server struct {
	router  *chi.Mux
	trello  domain.TrelloAPI
	config  domain.TrelloConfig
	logger  *application.StructuredLogger
	version string
	now     func() time.Time
}

// New constructs a Server with middleware and routes configured.
func New(trello domain.TrelloAPI, config domain.TrelloConfig, logger *application.StructuredLogger, version string) *Server {
	if logger == nil {
		logger = application.NewDiscardLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		trello:  trello,
		config:  config,
		logger:  logger,
		version: version,
		now:     time.Now,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors)

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	s.router.Get("/api/health", s.handleHealth)
	s.router.Options("/api/trello/cards", s.handlePreflight)
	s.router.Get("/api/trello/cards", s.handleListCards)
	s.router.Post("/api/trello/cards", s.handleCreateCard)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.LogInfo("api listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// HealthStatus is the liveness probe payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// CardRequest is the body of POST /api/trello/cards.
type CardRequest struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	ListID string `json:"listId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Service:   application.ServerName,
		Version:   s.version,
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// credentialsConfigured reports whether key, token and board are all set.
func (s *Server) credentialsConfigured() bool {
	return s.config.APIKey != "" && s.config.Token != "" && s.config.BoardID != ""
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	if !s.credentialsConfigured() {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Trello credentials are not configured"})
		return
	}

	cards, err := s.trello.GetBoardCards(r.Context(), s.config.BoardID)
	if err != nil {
		s.logger.LogError("failed to list cards", err, map[string]interface{}{"board_id": s.config.BoardID})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	if !s.credentialsConfigured() {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Trello credentials are not configured"})
		return
	}

	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ListID) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "name and listId are required"})
		return
	}

	card, err := s.trello.CreateCard(r.Context(), &domain.CardCreate{
		Name:   req.Name,
		Desc:   req.Desc,
		IDList: req.ListID,
	})
	if err != nil {
		s.logger.LogError("failed to create card", err, map[string]interface{}{"list_id": req.ListID})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// cors allows browser callers from any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.LogInfo("http request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
