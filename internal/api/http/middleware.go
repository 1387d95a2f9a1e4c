package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

type contextKey string

const operatorKey contextKey = "operator"

// OperatorFromContext returns the claims of the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) (*security.OperatorClaims, bool) {
	claims, ok := ctx.Value(operatorKey).(*security.OperatorClaims)
	return claims, ok
}

func operatorEmail(r *http.Request) string {
	if claims, ok := OperatorFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		args := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration_ms", time.Since(start).Milliseconds()}
		if rec.status >= http.StatusInternalServerError {
			logger.Error("HTTP request", args...)
			return
		}
		logger.Debug("HTTP request", args...)
	})
}

// recoveryMiddleware turns a handler panic into a 500.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				writeError(w, r, fmt.Errorf("panic: %v", p))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware enforces the security level configured for each route.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.SecurityAccess
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				level = config.GetSecurityLevel(r.Method, tpl)
			}
		}

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeError(w, r, domain.NewError(domain.KindUnauthorized, "invalid token: %v", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), operatorKey, claims)))
	})
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.NewError(domain.KindUnauthorized, "authorization token is not provided")
	}

	token := header
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return strings.TrimSpace(token), nil
}

// RateLimiter builds per-route request limiters. Counters live in Redis when
// a client is given, otherwise in process memory.
type RateLimiter struct {
	redis *redis.Client
}

// NewRateLimiter connects to redisURL when it is set.
func NewRateLimiter(redisURL string) (*RateLimiter, error) {
	if redisURL == "" {
		return &RateLimiter{}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RateLimiter{redis: redis.NewClient(opts)}, nil
}

// Close releases the Redis connection, if any.
func (rl *RateLimiter) Close() error {
	if rl.redis == nil {
		return nil
	}
	return rl.redis.Close()
}

// Limit wraps next with a limiter for rate, formatted like "10-M".
func (rl *RateLimiter) Limit(routeID, rate string, next http.Handler) (http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q for %s: %w", rate, routeID, err)
	}

	opts := limiter.StoreOptions{
		Prefix:          "rate_limiter:" + routeID,
		MaxRetry:        3,
		CleanUpInterval: parsed.Period,
	}
	var store limiter.Store
	if rl.redis != nil {
		store, err = redisstore.NewStoreWithOptions(rl.redis, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
		}
	} else {
		store = memorystore.NewStoreWithOptions(opts)
	}

	mw := stdlib.NewMiddleware(limiter.New(store, parsed),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: "too many requests, try again later",
			})
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			// Fail open when the counter store is unreachable.
			logger.Warn("Rate limiter unavailable", "route", routeID, "error", err)
			next.ServeHTTP(w, r)
		}),
	)
	return mw.Handler(next), nil
}
