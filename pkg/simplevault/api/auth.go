package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
)

type contextKey string

const userContextKey contextKey = "vault-user"

// HeaderUserID carries the caller identity when JWT auth is not configured.
const HeaderUserID = "X-User-ID"

// UserFromContext returns the authenticated user id set by the auth
// middleware, or "" when the request is unauthenticated.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

// WithUser returns a copy of ctx carrying the given user id. Exposed for
// tests and embedding callers.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Authenticator builds the auth middleware chain for the API. With a JWT
// secret configured, requests must carry a bearer token whose "sub" claim
// names the user. Without one, the X-User-ID header is trusted as-is
// (suitable behind a gateway that already did the verification).
type Authenticator struct {
	tokenAuth *jwtauth.JWTAuth
}

// NewAuthenticator creates an authenticator. An empty secret selects
// header-based identity.
func NewAuthenticator(jwtSecret string) *Authenticator {
	a := &Authenticator{}
	if jwtSecret != "" {
		a.tokenAuth = jwtauth.New("HS256", []byte(jwtSecret), nil)
	}
	return a
}

// Middleware returns the middleware stack enforcing authentication.
func (a *Authenticator) Middleware() []func(http.Handler) http.Handler {
	if a.tokenAuth == nil {
		return []func(http.Handler) http.Handler{a.headerIdentity}
	}
	return []func(http.Handler) http.Handler{
		jwtauth.Verifier(a.tokenAuth),
		a.tokenIdentity,
	}
}

func (a *Authenticator) headerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(HeaderUserID)
		if user == "" {
			writeUnauthorized(w, r, "missing "+HeaderUserID+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (a *Authenticator) tokenIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeUnauthorized(w, r, "invalid or missing token")
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			writeUnauthorized(w, r, "token missing sub claim")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), sub)))
	})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, Response{
		Status: "error",
		Error:  message,
	})
}
