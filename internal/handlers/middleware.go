package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"famlink/internal/metrics"
	"famlink/internal/models"
	"famlink/internal/security"
	"famlink/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	AccountContextKey ContextKey = "account"
	ClaimsContextKey  ContextKey = "claims"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	metrics     *metrics.Metrics
}

// NewMiddleware creates a new middleware instance. limiter and m may be nil.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, m *metrics.Metrics) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		metrics:     m,
	}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := security.BearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		account, claims, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit throttles a route per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(r.Pattern+"|"+security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs each request and records it in the HTTP metrics
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if m.metrics != nil {
			m.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			m.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		}
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}

// GetAccountFromContext retrieves the authenticated account from the request context
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}

// GetClaimsFromContext retrieves the token claims from the request context
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
