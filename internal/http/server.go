// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hamanets/internal/cache"
	"hamanets/internal/charts"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/ledger"
	"hamanets/internal/log"
	"hamanets/internal/middleware/ratelimit"
	"hamanets/internal/middleware/security"
	"hamanets/internal/middleware/trace"
	"hamanets/internal/ofx"
	"hamanets/internal/period"
	"hamanets/internal/services"
	"hamanets/internal/stats"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Policy             stats.BudgetPolicy
	Labels             export.Labels
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	Clock              period.Clock
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc    *services.LedgerService
	store  *ledger.Store
	policy stats.BudgetPolicy
	labels export.Labels
	clock  period.Clock
	logger *log.Logger

	charts *charts.Generator
	ofx    *ofx.Parser

	// Derived views keyed on the ledger revision
	summaries  *cache.Memo[core.Summary]
	series     *cache.Memo[[]core.SeriesPoint]
	dashboards *cache.Memo[services.Dashboard]
	caches     *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = period.SystemClock
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Labels == (export.Labels{}) {
		opts.Labels = export.EnglishLabels
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:        svc,
		store:      svc.Store(),
		policy:     opts.Policy,
		labels:     opts.Labels,
		clock:      opts.Clock,
		logger:     logger,
		charts:     charts.NewGenerator(),
		ofx:        ofx.NewParser(opts.Logger),
		summaries:  cache.NewMemo[core.Summary](opts.CacheSize, opts.CacheTTL),
		series:     cache.NewMemo[[]core.SeriesPoint](opts.CacheSize, opts.CacheTTL),
		dashboards: cache.NewMemo[services.Dashboard](opts.CacheSize, opts.CacheTTL),
		caches:     cache.NewManager(opts.Logger.WithComponent(log.ComponentCache).Logger),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:   security.NewDetector(opts.Logger),
		tracer:     trace.NewMiddleware(),
		started:    time.Now(),
	}
	s.caches.Register(s.summaries)
	s.caches.Register(s.series)
	s.caches.Register(s.dashboards)
	s.caches.StartCleanup(opts.CacheTTL)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux, opts.Logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/stats/month", s.handleMonthStats)
	mux.HandleFunc("GET /api/stats/weekly", s.handleWeekly)
	mux.HandleFunc("GET /api/stats/six-months", s.handleSixMonths)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	mux.HandleFunc("GET /api/reminders/upcoming", s.handleUpcomingReminders)
	mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	mux.HandleFunc("PUT /api/reminders/{id}", s.handleUpdateReminder)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.handleDeleteReminder)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/charts/six-months.png", s.handleSixMonthsChart)
	mux.HandleFunc("GET /api/charts/categories.png", s.handleCategoriesChart)
	mux.HandleFunc("POST /api/import/ofx", s.handleImportOFX)
}

// middleware wraps the mux, outermost first: request id, request-scoped
// logger, access log, security headers, probe detection, write limiting.
func (s *Server) middleware(h http.Handler, logger *log.Logger) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.ReadOnly, s.onRateLimit)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.AccessLog(s.detector.ExtractClientIP)(h)
	h = log.RequestIDMiddleware(trace.FromRequest)(h)
	h = log.Middleware(logger)(h)
	return s.tracer.Middleware(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close releases background goroutines for a server that was never
// started, as in tests.
func (s *Server) Close() error {
	s.caches.Stop()
	s.limiter.Stop()
	return s.Server.Close()
}

func (s *Server) now() time.Time { return s.clock.Now() }
