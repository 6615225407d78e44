// internal/httpserver/routes_mcp.go
//
// Streamable HTTP MCP endpoint. Each request is authenticated, the caller's
// session is initialised, and a tool server bound to that caller serves it.

package httpserver

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/tools"
)

func (s *Server) mountMCP() {
	handler := mcp.NewStreamableHTTPHandler(s.mcpServerFor, &mcp.StreamableHTTPOptions{Stateless: true})
	s.r.With(s.requireAuth(), s.initSession).Handle("/mcp", handler)
}

// initSession runs first-contact initialisation before any tool call.
func (s *Server) initSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFrom(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := s.deps.Sessions.Init(r.Context(), id); err != nil {
			log.Error().Err(err).Str("user", id.UserID).Msg("session init failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mcpServerFor binds a fresh tool server to the authenticated caller.
func (s *Server) mcpServerFor(r *http.Request) *mcp.Server {
	id, err := identityFrom(r.Context())
	if err != nil {
		return nil
	}
	return tools.NewServer(s.deps.Sessions, id.UserID)
}
