package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"

	"github.com/gorilla/mux"
)

// Services bundles the application services the handlers call.
type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Income     *services.LedgerService
	Expense    *services.LedgerService
	Budgets    *services.BudgetService
	Categories *services.CategoryService
	Analytics  *services.AnalyticsService
	Export     *services.ExportService
}

// Options carries the transport settings of the server.
type Options struct {
	Logger           *log.Logger
	CORSOrigins      []string
	CookieSecure     bool
	RateLimitRPM     int
	AuthRateLimitRPM int
	// Caches, when set, gets the rate limiter caches registered for sweeping.
	Caches *cache.Manager
	// Ready reports whether backing stores are reachable.
	Ready func(context.Context) error
}

type appMetrics struct {
	transactionsCreated atomic.Int64
	exports             atomic.Int64
	uptime              time.Time
}

type Server struct {
	http.Server
	svc    Services
	logger *log.Logger

	cookieSecure bool
	ready        func(context.Context) error

	detector    *security.Detector
	limiter     *ratelimit.Limiter
	authLimiter *ratelimit.Limiter
	trace       *trace.Middleware
	appMetrics  *appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:          svc,
		logger:       logger.WithComponent(log.ComponentHTTP),
		cookieSecure: opts.CookieSecure,
		ready:        opts.Ready,
		detector:     security.NewDetector(),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		authLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.AuthRateLimitRPM}),
		appMetrics:   &appMetrics{uptime: time.Now()},
	}
	s.trace = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	if opts.Caches != nil {
		opts.Caches.Register("rate_limit", s.limiter.Cache())
		opts.Caches.Register("auth_rate_limit", s.authLimiter.Cache())
	}

	router := s.routes()

	// Middleware that must also see unmatched requests and CORS preflights
	// wraps the router instead of being registered on it.
	var handler http.Handler = router
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewCORS(opts.CORSOrigins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	authR := api.PathPrefix("/auth").Subrouter()
	authR.Use(s.authLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
	authR.HandleFunc("/signUp", s.handleSignUp).Methods(http.MethodPost)
	authR.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authR.HandleFunc("/send-reset-otp", s.handleSendResetOTP).Methods(http.MethodPost)
	authR.HandleFunc("/verify-reset-otp", s.handleVerifyResetOTP).Methods(http.MethodPost)
	authR.Handle("/send-verify-otp", s.requireSession(http.HandlerFunc(s.handleSendVerifyOTP))).Methods(http.MethodPost)
	authR.Handle("/verifyotp", s.requireSession(http.HandlerFunc(s.handleVerifyOTP))).Methods(http.MethodPost)
	authR.Handle("/isauth", s.requireSession(http.HandlerFunc(s.handleIsAuth))).Methods(http.MethodPost, http.MethodGet)
	authR.Handle("/reset-password", s.requireSession(http.HandlerFunc(s.handleResetPassword))).Methods(http.MethodPost)

	user := api.PathPrefix("/user").Subrouter()
	user.Use(s.requireSession)
	user.HandleFunc("/data", s.handleUserData).Methods(http.MethodGet)
	user.HandleFunc("/update-username", s.handleUpdateUsername).Methods(http.MethodPut)
	user.HandleFunc("/update-password", s.handleUpdatePassword).Methods(http.MethodPut)
	user.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	s.ledgerRoutes(api.PathPrefix("/income").Subrouter(), newLedgerHandlers(s, s.svc.Income, "Income"))
	s.ledgerRoutes(api.PathPrefix("/expense").Subrouter(), newLedgerHandlers(s, s.svc.Expense, "Expense"))

	budget := api.PathPrefix("/budget").Subrouter()
	budget.Use(s.requireSession)
	budget.HandleFunc("/create-budget", s.handleCreateBudget).Methods(http.MethodPost)
	budget.HandleFunc("/get-budget", s.handleListBudgets).Methods(http.MethodGet)
	budget.HandleFunc("/delete-budget/{id}", s.handleDeleteBudget).Methods(http.MethodDelete)
	budget.HandleFunc("/update-budget/{id}", s.handleUpdateBudget).Methods(http.MethodPut)
	budget.HandleFunc("/summary-budget", s.handleBudgetSummary).Methods(http.MethodGet)

	category := api.PathPrefix("/category").Subrouter()
	category.Use(s.requireSession)
	category.HandleFunc("/add", s.handleCreateCategory).Methods(http.MethodPost)
	category.HandleFunc("/get", s.handleListCategories).Methods(http.MethodGet)
	category.HandleFunc("/get/{id}", s.handleGetCategory).Methods(http.MethodGet)
	category.HandleFunc("/delete/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)
	category.HandleFunc("/merge/{id}", s.handleMergeCategory).Methods(http.MethodPut)

	analytics := api.PathPrefix("/analytics").Subrouter()
	analytics.Use(s.requireSession)
	analytics.HandleFunc("/summary", s.analytics("summary", s.analyticsSummary)).Methods(http.MethodGet)
	analytics.HandleFunc("/bar-monthly-comparison", s.analytics("monthly_comparison", s.monthlyComparison)).Methods(http.MethodGet)
	analytics.HandleFunc("/category-distribution", s.analytics("category_distribution", s.categoryDistribution)).Methods(http.MethodGet)
	analytics.HandleFunc("/trend", s.analytics("trend", s.trend)).Methods(http.MethodGet)
	analytics.HandleFunc("/line-month-comparison", s.analytics("month_comparison", s.monthComparison)).Methods(http.MethodGet)
	analytics.HandleFunc("/recent-transaction", s.analytics("recent_transactions", s.recentTransactions)).Methods(http.MethodGet)

	exp := api.PathPrefix("/export").Subrouter()
	exp.Use(s.requireSession)
	exp.HandleFunc("/generate", s.handleExport).Methods(http.MethodPost)

	return r
}

func (s *Server) ledgerRoutes(r *mux.Router, h *ledgerHandlers) {
	r.Use(s.requireSession)
	r.HandleFunc("/add", h.create).Methods(http.MethodPost)
	r.HandleFunc("/get", h.list).Methods(http.MethodGet)
	r.HandleFunc("/get/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/update/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/delete/{id}", h.delete).Methods(http.MethodDelete)
}

// requireSession rejects requests without a valid, unrevoked session and
// stores the session claims in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.svc.Auth.Authenticate(r.Context(), sessionToken(r))
		if err != nil {
			s.writeError(w, r, err, log.ComponentAuth, "authenticate")
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, please try again later.").Write(w)
}

// writeError logs err and writes its mapped response. Server errors log at
// Error with the full chain; client errors at Debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, component, operation string) {
	status, _ := statusFor(err)
	fields := log.NewFields().
		WithComponent(component).
		WithOperation(operation).
		WithUser(userID(r)).
		WithError(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	} else {
		s.logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	FromError(err).Write(w)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
