// Package web exposes the BrainStack services as a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/deck"
	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/importer"
	"github.com/conorfennell/brainstack/internal/practice"
	"github.com/conorfennell/brainstack/internal/progress"
	"github.com/conorfennell/brainstack/internal/study"
)

// Importer loads cards from a directory or repository into a deck.
type Importer interface {
	Import(ctx context.Context, deckID, source string) (importer.Result, error)
}

// Services are the handlers' collaborators.
type Services struct {
	Decks    *deck.Service
	Study    *study.Engine
	Practice *practice.Engine
	Progress *progress.Service
	Importer Importer
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	svc     Services
	router  *http.ServeMux
	handler http.Handler
	log     *zap.Logger
}

// NewServer creates and configures a new server. allowedOrigins lists the
// origins browsers may call the API from.
func NewServer(svc Services, allowedOrigins []string, log *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		router: http.NewServeMux(),
		log:    log,
	}
	s.routes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin"},
		MaxAge:         86400,
	}).Handler(s.router)
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	// Decks and cards
	s.router.HandleFunc("GET /api/decks", s.handleListDecks())
	s.router.HandleFunc("POST /api/decks", s.handleCreateDeck())
	s.router.HandleFunc("GET /api/decks/{deckID}", s.handleGetDeck())
	s.router.HandleFunc("DELETE /api/decks/{deckID}", s.handleDeleteDeck())
	s.router.HandleFunc("POST /api/decks/{deckID}/cards", s.handleAddCard())
	s.router.HandleFunc("DELETE /api/decks/{deckID}/cards/{cardID}", s.handleRemoveCard())
	s.router.HandleFunc("POST /api/decks/{deckID}/import", s.handleImport())
	s.router.HandleFunc("DELETE /api/cards/{cardID}", s.handleDeleteCard())

	// Study and progress
	s.router.HandleFunc("GET /api/study/{deckID}", s.handleStudyCards())
	s.router.HandleFunc("POST /api/study/{deckID}", s.handleRecordStudy())
	s.router.HandleFunc("GET /api/progress", s.handleProgress())

	// Practice tests
	s.router.HandleFunc("GET /api/tests", s.handleListTests())
	s.router.HandleFunc("POST /api/tests", s.handleCreateTest())
	s.router.HandleFunc("GET /api/tests/{testID}", s.handleGetTest())
	s.router.HandleFunc("DELETE /api/tests/{testID}", s.handleDeleteTest())
	s.router.HandleFunc("POST /api/tests/{testID}/questions/{questionID}/answer", s.handleSubmitAnswer())
	s.router.HandleFunc("POST /api/tests/{testID}/complete", s.handleCompleteTest())
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal server error"
	}
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v. Malformed bodies are invalid input.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
