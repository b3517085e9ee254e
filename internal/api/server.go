// Package api implements the chat gateway HTTP surface: a stateless
// request/response wrapper over the hosted chat-completion endpoint.
//
// Endpoints:
//   - POST /chat  JSON body {"prompt": "..."} -> {"response": "..."}
//   - GET  /chat?prompt=...                   -> {"response": "..."}
//   - GET  /health
//
// Each call is independent: no retry, no streaming, no conversation
// state. Concurrent callers need no synchronization.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/firescout/firescout/internal/log"
)

// Generator produces one completion for one prompt. *kimi.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ServerConfig contains configuration for creating the gateway server.
type ServerConfig struct {
	Logger    log.Logger
	Generator Generator // Required
	RateBurst int       // Rate limiter burst size per IP (0 = default 60)
}

// Server is the chat gateway HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a gateway server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	ch := &chatHandler{
		generator: cfg.Generator,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", ch.post)
	mux.HandleFunc("GET /chat", ch.get)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery -> RequestID -> Logging -> RateLimit -> Routes
	// RequestID runs before Logging so request_id shows up in logs.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probe bypasses the middleware stack.
	top := http.NewServeMux()
	top.HandleFunc("GET /health", health)
	top.Handle("/", handler)

	return &Server{mux: top}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
