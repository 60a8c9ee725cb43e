package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/bulk"
	"github.com/jonathan/chaos-engine/internal/config"
	"github.com/jonathan/chaos-engine/internal/humanize"
	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/server/middleware"
	"github.com/jonathan/chaos-engine/internal/server/ratelimit"
	"github.com/jonathan/chaos-engine/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// BlogRunner runs bulk blog jobs. *bulk.Runner implements it.
type BlogRunner interface {
	Enqueue(ctx context.Context, userID uuid.UUID, keywords []string) ([]*types.BlogJob, error)
	Run(ctx context.Context, jobs []*types.BlogJob) (*bulk.Summary, error)
}

// BlogRunOptions are the per-request knobs passed to a BlogRunnerFactory.
type BlogRunOptions struct {
	DryRun     bool
	OnProgress bulk.ProgressCallback
}

// BlogRunnerFactory builds a runner for one request.
type BlogRunnerFactory func(opts BlogRunOptions) (BlogRunner, error)

// Config holds server configuration
type Config struct {
	Port     int
	JWT      *config.JWTConfig
	Password *config.PasswordConfig
	// Humanize holds the defaults applied to /humanize requests.
	Humanize  humanize.Options
	RateLimit *ratelimit.Config
	// ClickLimit is the number of counted clicks per visitor and code per ClickWindow.
	ClickLimit  int
	ClickWindow time.Duration
	// LandingURL is where /r/{code} redirects.
	LandingURL string
	Logger     *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	store        Store
	blog         BlogRunnerFactory
	humanizeOpts humanize.Options
	landingURL   string
	logger       *slog.Logger

	rateLimiter  *ratelimit.Limiter
	clickLimiter *ratelimit.ClickLimiter
	jwtService   *JWTService
	userService  *UserService
	authHandler  *AuthHandler

	// Background blog runs use baseCtx so shutdown can cancel them.
	baseCtx    context.Context
	cancelBase context.CancelFunc
	runs       sync.WaitGroup
}

// New creates a new server instance. blog may be nil, in which case the
// blog job endpoints answer 503.
func New(cfg Config, store Store, blog BlogRunnerFactory) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, fmt.Errorf("jwt and password configuration are required")
	}
	if err := cfg.Humanize.Validate(); err != nil {
		return nil, fmt.Errorf("invalid humanize defaults: %w", err)
	}
	if cfg.ClickLimit <= 0 {
		cfg.ClickLimit = 5
	}
	if cfg.ClickWindow <= 0 {
		cfg.ClickWindow = time.Hour
	}
	if cfg.LandingURL == "" {
		cfg.LandingURL = "/"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		store:        store,
		blog:         blog,
		humanizeOpts: cfg.Humanize,
		landingURL:   cfg.LandingURL,
		logger:       logger,
		rateLimiter:  ratelimit.NewLimiter(cfg.RateLimit),
		clickLimiter: ratelimit.NewClickLimiter(cfg.ClickLimit, cfg.ClickWindow),
		jwtService:   NewJWTService(cfg.JWT),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())
	s.userService = NewUserService(store, cfg.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // humanize waits out inter-pass delays
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	user := func(h http.HandlerFunc) http.Handler { return auth(h) }
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole(types.RoleAdmin)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	mux.Handle("GET /users/me", user(s.handleMe))
	mux.Handle("PUT /users/me/password", user(s.handleUpdatePassword))
	mux.Handle("GET /admin/users", admin(s.handleListUsers))

	mux.Handle("POST /humanize", user(s.handleHumanize))
	mux.Handle("POST /analyze", user(s.handleAnalyze))

	mux.Handle("POST /affiliates", user(s.handleCreateAffiliate))
	mux.Handle("GET /affiliates/me", user(s.handleGetAffiliate))
	mux.HandleFunc("GET /r/{code}", s.handleReferral)
	mux.Handle("POST /admin/affiliates/{id}/commissions", admin(s.handleCreditCommission))

	mux.Handle("POST /withdrawals", user(s.handleRequestWithdrawal))
	mux.Handle("GET /withdrawals", user(s.handleListWithdrawals))
	mux.Handle("GET /admin/withdrawals", admin(s.handleAdminListWithdrawals))
	mux.Handle("POST /admin/withdrawals/{id}/approve", admin(s.handleApproveWithdrawal))
	mux.Handle("POST /admin/withdrawals/{id}/reject", admin(s.handleRejectWithdrawal))

	mux.Handle("POST /blog-jobs", user(s.handleCreateBlogJobs))
	mux.Handle("POST /blog-jobs/stream", user(s.handleStreamBlogJobs))
	mux.Handle("GET /blog-jobs", user(s.handleListBlogJobs))
	mux.Handle("GET /blog-jobs/{id}", user(s.handleGetBlogJob))

	return mux
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully. Running
// blog jobs are cancelled at their next document boundary.
func (s *Server) Start(ctx context.Context) error {
	s.clickLimiter.Start(time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close cancels background runs, waits for them and stops the limiters.
func (s *Server) Close() {
	s.cancelBase()
	s.runs.Wait()
	s.clickLimiter.Stop()
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientIP(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", clientIP(r)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientIP uses the host part of RemoteAddr. X-Forwarded-For is ignored
// because no trusted proxy list is configured.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		slog.Int("limit", info.Limit),
		slog.Time("reset", info.ResetTime))
	writeJSON(w, http.StatusTooManyRequests, response)
}

// requireUser returns the authenticated user ID or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter or writes 400.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a JSON body into v, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps err to a status and logs unexpected failures.
func writeServiceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("request failed", slog.String("error", err.Error()))
	}
	writeError(w, status, publicMessage(err))
}
