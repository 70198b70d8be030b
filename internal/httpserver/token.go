package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoSession = errors.New("no session")

type ctxSessionKey struct{}

// sessionClaims binds a token to one game session.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *Server) signToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := token.SignedString(s.opts.Secret)
	return ss, exp, err
}

// parseToken validates tok and returns the session ID it carries.
func (s *Server) parseToken(tok string) (string, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid || claims.SessionID == "" {
		return "", errNoSession
	}
	return claims.SessionID, nil
}

// requireSession resolves the session token and stores its ID in the request
// context. It never touches the store; handlers report unknown sessions.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeErr(w, http.StatusUnauthorized, "no_session")
			return
		}
		sid, err := s.parseToken(tok)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid_session")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionKey{}).(string)
	return sid
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// sameSite is None for secure (cross-site) deployments, Lax otherwise.
func (s *Server) sameSite() http.SameSite {
	if s.opts.SecureCookie {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}
