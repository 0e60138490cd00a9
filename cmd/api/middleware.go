package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"aquadash/internal/auth"
	"aquadash/internal/domain/session"

	"github.com/go-chi/chi/v5"
)

type userKey string

const userCtx userKey = "user"

const roleSuperAdmin = session.RoleSuperAdmin

func getUserFromContext(r *http.Request) *session.User {
	if user, ok := r.Context().Value(userCtx).(*session.User); ok {
		return user
	}
	return nil
}

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if username == "" || len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthTokenMiddleware accepts a bearer token only while the session it was issued for is
// still the signed-in one.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
			return
		}

		jwtToken, err := app.authenticator.ValidateToken(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		claims, ok := jwtToken.Claims.(*auth.Claims)
		if !ok {
			app.unauthorizedErrorResponse(w, r, errors.New("unexpected token claims"))
			return
		}

		st := app.store.Session.Current()
		if !st.IsAuthenticated || st.User == nil || st.User.ID != claims.Subject {
			app.unauthorizedErrorResponse(w, r, errors.New("session is no longer active"))
			return
		}

		ctx := context.WithValue(r.Context(), userCtx, st.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RequireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromContext(r)
			if user == nil || user.Role != role {
				app.forbiddenResponse(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireParkAccess answers 404 for unknown parks and 403 for parks outside the user's scope.
func (app *application) RequireParkAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parkID := chi.URLParam(r, "parkID")
		if _, ok := app.store.WaterParks.FetchWaterParkDetails(parkID); !ok {
			app.notFoundResponse(w, r, fmt.Errorf("water park %q not found", parkID))
			return
		}
		if !session.CanAccessPark(getUserFromContext(r), parkID) {
			app.forbiddenResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port so every connection from one host shares a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
