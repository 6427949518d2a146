package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/msomdec/account-service/internal/domain"
	"github.com/msomdec/account-service/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Rejection messages of the auth gate.
const (
	msgNoCredential   = "no credential supplied, please log in"
	msgTokenRevoked   = "token expired or invalidated"
	msgSessionInvalid = "session invalid, please re-authenticate"
)

// SessionFromContext returns the session admitted by RequireAuth, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionContextKey).(*domain.Session)
	return session
}

// RequireAuth admits requests carrying a valid "Authorization: Bearer" token
// that has not been revoked, and attaches the session to the context.
// Everything else gets a 401 and never reaches next.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgNoCredential)
			return
		}

		session, err := auth.Authenticate(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrRevoked):
			slog.Debug("rejected revoked token", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, msgTokenRevoked)
			return
		case service.IsAuthError(err):
			slog.Debug("rejected token", "path", r.URL.Path, "reason", err)
			writeError(w, http.StatusUnauthorized, msgSessionInvalid)
			return
		default:
			slog.Error("authenticate request", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// RateLimit rejects requests from a client address once its bucket is empty.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many attempts. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with slog.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
