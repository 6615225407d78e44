// internal/httpserver/routes_daily.go
//
// Manual trigger for the daily word rotation:
//   - POST /admin/rotate → publish today's word unless one already exists.
//
// The bearer token is compared against a bcrypt hash from configuration.
// Without a configured hash the route is not mounted.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/daily"
)

// rotateRes is returned by /admin/rotate. The word itself is never echoed.
type rotateRes struct {
	GameID  string `json:"gameId"`
	Date    string `json:"date"`
	Created bool   `json:"created"`
}

// mountRotate registers the admin rotation route.
func (s *Server) mountRotate() {
	if s.deps.RotateTokenHash == "" || s.deps.Rotator == nil {
		return
	}
	s.r.With(s.requireAdmin).Post("/admin/rotate", s.handleRotate)
}

// requireAdmin checks the bearer token against the configured bcrypt hash.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	hash := []byte(s.deps.RotateTokenHash)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerOrCookie(r)
		if token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleRotate runs one rotation; a day that already has a word is a no-op.
func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	entry, created, err := s.deps.Rotator.Rotate(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("manual rotation failed")
		status := http.StatusInternalServerError
		if errors.Is(err, daily.ErrWordGeneration) {
			status = http.StatusBadGateway
		}
		writeError(w, status, "rotation failed")
		return
	}
	log.Info().Str("gameId", entry.GameID).Str("date", entry.Date).Bool("created", created).Msg("manual rotation")
	writeJSON(w, http.StatusOK, rotateRes{GameID: entry.GameID, Date: entry.Date, Created: created})
}
