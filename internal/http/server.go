// Package http exposes the expense ledger over a JSON REST API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hauskasse/internal/cache"
	"hauskasse/internal/core"
	"hauskasse/internal/ledger"
	"hauskasse/internal/log"
)

const (
	summaryCacheKey  = "summary"
	summaryCacheTTL  = 30 * time.Second
	summaryCacheSize = 4
)

// Options configures the HTTP server.
type Options struct {
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	Logger         *log.Logger
}

// Server serves the ledger API. The summary endpoint is read-heavy on the
// frontend, so its result is cached briefly and invalidated on every mutation.
type Server struct {
	httpServer   *http.Server
	expenses     *ledger.ExpenseService
	summaries    *ledger.SummaryService
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager
	logger       *log.Logger
}

func NewServer(expenses *ledger.ExpenseService, summaries *ledger.SummaryService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		expenses:     expenses,
		summaries:    summaries,
		summaryCache: cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
		logger:       logger,
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.routes(opts.AllowedOrigins),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	return s
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.handleListExpenses)
		r.With(middleware.AllowContentType("application/json")).Post("/", s.handleCreateExpense)
		r.Get("/{id}", s.handleGetExpense)
		r.Post("/{id}/approve", s.handleApproveExpense)
		r.Post("/{id}/reject", s.handleRejectExpense)
	})

	r.Get("/summary", s.handleGetSummary)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateSummary drops the cached summary after any write so the next read
// recomputes the balance.
func (s *Server) invalidateSummary() {
	s.summaryCache.Delete(summaryCacheKey)
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the cache janitor.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheManager.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
