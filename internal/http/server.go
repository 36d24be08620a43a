// Package http exposes the JSON API: auth, accounts, categories,
// transactions with filtering and summaries, and the monthly trend.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// Store interfaces cut the repository surface per handler group so tests can
// stub each one independently.
type (
	UserStore interface {
		CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, string, error)
		GetUser(ctx context.Context, id string) (core.User, error)
	}

	AccountStore interface {
		CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error)
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
		UpdateAccount(ctx context.Context, userID string, a core.Account) error
		DeleteAccount(ctx context.Context, userID, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, userID string, c core.Category) error
		DeleteCategory(ctx context.Context, userID, id string) error
	}

	TransactionStore interface {
		Create(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error)
		Delete(ctx context.Context, userID, id string) error
		List(ctx context.Context, userID string) ([]core.Transaction, error)
		Get(ctx context.Context, userID, id string) (core.Transaction, error)
		MonthlyTrend(ctx context.Context, userID string, monthsBack int, now time.Time) ([]storage.TrendPoint, error)
	}
)

// Deps carries everything the server needs.
type Deps struct {
	Users              UserStore
	Accounts           AccountStore
	Categories         CategoryStore
	Transactions       TransactionStore
	Tokens             *auth.TokenService
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	users        UserStore
	accounts     AccountStore
	categories   CategoryStore
	transactions TransactionStore
	tokens       *auth.TokenService
	rateLimiter  *rateLimiter

	// Trend responses are cached briefly; writes go stale for at most the TTL.
	trendCache   *cache.LRUCache[[]storage.TrendPoint]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		users:        deps.Users,
		accounts:     deps.Accounts,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		tokens:       deps.Tokens,
		rateLimiter:  newRateLimiter(deps.RateLimitPerMinute),
		trendCache:   cache.NewLRUCache[[]storage.TrendPoint](500, time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.withSecurity(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withSecurity(s.handleLogin))
	mux.HandleFunc("GET /api/auth/me", s.withSecurity(s.withAuth(s.handleMe)))

	mux.HandleFunc("GET /api/accounts", s.withSecurity(s.withAuth(s.handleListAccounts)))
	mux.HandleFunc("POST /api/accounts", s.withSecurity(s.withAuth(s.handleCreateAccount)))
	mux.HandleFunc("PUT /api/accounts/{id}", s.withSecurity(s.withAuth(s.handleUpdateAccount)))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withSecurity(s.withAuth(s.handleDeleteAccount)))

	mux.HandleFunc("GET /api/categories", s.withSecurity(s.withAuth(s.handleListCategories)))
	mux.HandleFunc("POST /api/categories", s.withSecurity(s.withAuth(s.handleCreateCategory)))
	mux.HandleFunc("PUT /api/categories/{id}", s.withSecurity(s.withAuth(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withSecurity(s.withAuth(s.handleDeleteCategory)))

	mux.HandleFunc("GET /api/transactions", s.withSecurity(s.withAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.withSecurity(s.withAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/transactions/trend", s.withSecurity(s.withAuth(s.handleTrend)))
	mux.HandleFunc("GET /api/transactions/{id}", s.withSecurity(s.withAuth(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withSecurity(s.withAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSecurity(s.withAuth(s.handleDeleteTransaction)))

	return s
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// userIDFrom returns the authenticated user ID, or "" outside withAuth.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// withSecurity adds security headers, rate limiting and request logging.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// withAuth requires a valid bearer token and puts the user ID on the context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.tokens.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
