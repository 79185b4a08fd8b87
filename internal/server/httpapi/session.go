package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity placed by the session middleware, or nil.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityContextKey).(*auth.Identity)
	return id
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// SessionGateway moves session tokens between requests and cookies.
type SessionGateway struct {
	auth         authenticator
	logger       logging.Logger
	alwaysSecure bool
}

func NewSessionGateway(a authenticator, logger logging.Logger, alwaysSecure bool) *SessionGateway {
	return &SessionGateway{auth: a, logger: logger, alwaysSecure: alwaysSecure}
}

// Token returns the session token of r: the auth cookie, or failing that a
// bearer Authorization header.
func (g *SessionGateway) Token(r *http.Request) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (g *SessionGateway) secure(r *http.Request) bool {
	return g.alwaysSecure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SetCookie attaches token to the response.
func (g *SessionGateway) SetCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   g.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie tells the client to drop the session cookie.
func (g *SessionGateway) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   g.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the request's token to an identity. A missing or bad
// token leaves the request anonymous; it never produces a response itself.
func (g *SessionGateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := g.Token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorInternal) {
				g.logger.Error(r.Context(), "session lookup failed", "error", err)
			} else {
				g.logger.Debug(r.Context(), "session rejected", "reason", err.Error())
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireIdentity rejects anonymous requests with 401 before the handler runs.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
