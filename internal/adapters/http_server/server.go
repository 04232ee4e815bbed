package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Generation holds the request open through image generation and the
// headless-browser export, so the budget is minutes, not seconds.
const requestTimeout = 3 * time.Minute

type Server struct{ mux *chi.Mux }

func New() *Server {
	m := chi.NewRouter()

	// Middleware order matters: RealIP before logging, timeout before
	// the handlers it guards.
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(requestTimeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
