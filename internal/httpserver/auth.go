package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/session"
)

// AuthCookie is the cookie consulted when no bearer token is present.
const AuthCookie = "wordle_token"

var errNoIdentity = errors.New("no identity")

// ctxIdentityKey is the context key type for storing session.Identity.
type ctxIdentityKey struct{}

// claims are the token fields the identity provider issues.
type claims struct {
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// requireAuth enforces a valid JWT and injects the caller's identity into
// the request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.deps.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.deps.JWTIssuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(s.deps.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			var c claims
			token, err := parser.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if c.Subject == "" || c.Email == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			id := session.Identity{UserID: c.Subject, Email: c.Email, DisplayName: c.PreferredUsername}
			if id.DisplayName == "" {
				id.DisplayName = c.Name
			}
			ctx := context.WithValue(r.Context(), ctxIdentityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the identity placed by requireAuth.
func identityFrom(ctx context.Context) (session.Identity, error) {
	id, ok := ctx.Value(ctxIdentityKey{}).(session.Identity)
	if !ok {
		return session.Identity{}, errNoIdentity
	}
	return id, nil
}

// bearerOrCookie extracts a bearer token from the Authorization header or
// the auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(AuthCookie); err == nil {
		return c.Value
	}
	return ""
}
