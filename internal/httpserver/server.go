// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle MCP server.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, access log).
//   - Public endpoints: "/", "/health", "/metrics", "/hint/success".
//   - MCP endpoint (require auth): /mcp, one tool server per caller.
//   - Manual daily rotation (admin token): POST /admin/rotate.
//
// Notes:
//   - Identity comes from an HS256 JWT in the Authorization header or the
//     auth cookie; tokens carry sub, email and an optional display name.
//   - Errors are JSON bodies of the form {"error": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/daily"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/session"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/tools"
)

// Sessions is the registry surface the server needs: the tool commands plus
// first-contact initialisation.
type Sessions interface {
	tools.Sessions
	Init(ctx context.Context, id session.Identity) error
}

// Rotator publishes the daily word on demand.
type Rotator interface {
	Rotate(ctx context.Context) (daily.Entry, bool, error)
}

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

type Deps struct {
	Sessions Sessions
	Rotator  Rotator
	// Health checks keyed by dependency name, e.g. "db" or "redis".
	Checks  map[string]Check
	Metrics http.Handler

	JWTSecret string
	JWTIssuer string
	// bcrypt hash of the admin rotation token; empty disables the route.
	RotateTokenHash string
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	deps Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(accessLog)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   tools.ServerName,
			"endpoints": []string{"/health", "/metrics", "/mcp", "POST /admin/rotate"},
		})
	})
	s.r.Get("/health", s.handleHealth)
	if deps.Metrics != nil {
		s.r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	s.r.Get("/hint/success", handleHintSuccess)

	s.mountMCP()
	s.mountRotate()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// HTTPServer returns a configured *http.Server for addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(r.Context()); err != nil {
			log.Warn().Err(err).Str("check", name).Msg("health check failed")
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}
	writeJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": checks})
}

func handleHintSuccess(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Payment received. Return to your assistant and ask for the hint again.\n"))
}

// ----------------------------- middleware ----------------------------------

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
