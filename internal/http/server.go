// Package http serves the finreport reports as a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finreport/internal/log"
	"finreport/internal/middleware/ratelimit"
	"finreport/internal/middleware/security"
	"finreport/internal/report"
	"finreport/internal/sheets"
)

// Deps are the collaborators behind the API.
type Deps struct {
	Assembler    *report.Assembler
	Queries      *report.Queries
	Transactions sheets.TransactionReader
	// Ready reports whether the data backend can serve requests. Nil means
	// always ready.
	Ready func(ctx context.Context) error
	// RequestsPerMinute limits each client on /api/. Zero uses the
	// limiter default.
	RequestsPerMinute int
}

// Server is an http.Server exposing the reports.
type Server struct {
	http.Server

	// mu serializes report requests: the rate cache behind the assembler
	// is not safe for concurrent use.
	mu sync.Mutex

	deps         Deps
	limiter      *ratelimit.Limiter
	now          func() time.Time
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, logger *log.Logger) *Server {
	logger = log.OrDiscard(logger).WithComponent(log.ComponentHTTP)

	s := &Server{
		deps: deps,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RequestsPerMinute,
		}),
		now:    time.Now,
		logger: logger,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/home", s.handleHome)
	api.HandleFunc("GET /api/reports/category", s.handleCategory)
	api.HandleFunc("GET /api/transfers", s.handleTransfers)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", s.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(api))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(logger)(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the limiter and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
