// Package server implements the chat endpoint the client talks to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gemini-chat-cli/internal/history"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// Backend produces the model turn that follows turns. The last turn is always from the user.
type Backend interface {
	Reply(ctx context.Context, turns []history.Turn) (string, error)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []history.Turn `json:"messages"`
}

// ChatResponse is returned on success.
type ChatResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server wires a Backend to HTTP.
type Server struct {
	backend Backend
	logf    func(string)
}

type Option func(*Server)

// WithLogger routes handler diagnostics to fn.
func WithLogger(fn func(string)) Option {
	return func(s *Server) { s.logf = fn }
}

func New(b Backend, opts ...Option) *Server {
	s := &Server{backend: b, logf: func(string) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router with the standard middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.backend.Reply(r.Context(), req.Messages)
	if err != nil {
		s.logf(fmt.Sprintf("chat %s: backend error: %v", middleware.GetReqID(r.Context()), err))
		if errors.Is(err, context.Canceled) {
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to get a reply from the model")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Result: reply})
}

// validate checks the shape a Backend relies on.
func validate(turns []history.Turn) error {
	if len(turns) == 0 {
		return errors.New("messages must not be empty")
	}
	for i, t := range turns {
		if t.Role != history.RoleUser && t.Role != history.RoleModel {
			return fmt.Errorf("messages[%d]: role must be user or model", i)
		}
		if strings.TrimSpace(t.Content) == "" {
			return fmt.Errorf("messages[%d]: content must not be empty", i)
		}
	}
	if turns[len(turns)-1].Role != history.RoleUser {
		return errors.New("last message must be from the user")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// EchoBackend answers with the last user message. It needs no API key.
type EchoBackend struct{}

func (EchoBackend) Reply(ctx context.Context, turns []history.Turn) (string, error) {
	last := turns[len(turns)-1]
	return fmt.Sprintf("You said: %s", last.Content), nil
}
