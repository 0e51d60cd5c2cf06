package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"khata/internal/cache"
	applog "khata/internal/log"
	"khata/internal/middleware/ratelimit"
	"khata/internal/middleware/security"
	"khata/internal/middleware/trace"
	"khata/internal/services"
	"khata/internal/users"
)

// Options tunes server construction.
type Options struct {
	// SessionTTL bounds how long a login stays valid.
	SessionTTL time.Duration
	// MaxSessions caps concurrent sessions before LRU eviction.
	MaxSessions int
	// RequestsPerMinute throttles write requests per client IP.
	RequestsPerMinute int
}

func (o *Options) fillDefaults() {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 12 * time.Hour
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 10000
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = 60
	}
}

// Server is the JSON API server.
type Server struct {
	http.Server

	directory users.Directory
	ledger    *services.LedgerService
	logger    *applog.Logger

	sessions     *sessionStore
	resolver     *security.Resolver
	limiter      *ratelimit.Limiter
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, directory users.Directory, ledger *services.LedgerService, logger *applog.Logger, opts Options) *Server {
	opts.fillDefaults()
	if logger == nil {
		logger = applog.New(applog.Config{})
	}

	s := &Server{
		directory:    directory,
		ledger:       ledger,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		sessions:     newSessionStore(opts.MaxSessions, opts.SessionTTL),
		resolver:     security.NewResolver(),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.sessions.Cleaner())
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("POST /api/expenses", s.requireSession(s.handleAddExpense))
	mux.HandleFunc("GET /api/expenses", s.requireSession(s.handleListExpenses))
	mux.HandleFunc("POST /api/debts", s.requireSession(s.handleAddDebt))
	mux.HandleFunc("GET /api/debts", s.requireSession(s.handleListDebts))
	mux.HandleFunc("POST /api/savings", s.requireSession(s.handleAddSaving))
	mux.HandleFunc("GET /api/savings", s.requireSession(s.handleListSavings))
	mux.HandleFunc("POST /api/budgets", s.requireSession(s.handleAddBudget))

	mux.HandleFunc("GET /api/stats", s.requireSession(s.handleStats))
	mux.HandleFunc("GET /api/dashboard", s.requireSession(s.handleDashboard))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.resolver.ExtractClientIP, s.onRateLimit)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(s.resolver.ExtractClientIP, logger).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// requireSession rejects unauthenticated requests and passes the session
// username to the wrapped handler.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.sessions.Lookup(r)
		if !ok {
			UnauthorizedError("Authentication required").Write(w)
			return
		}
		next(w, r, username)
	}
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.resolver.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
