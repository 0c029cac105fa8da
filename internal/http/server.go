package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triad/internal/cache"
	"triad/internal/core"
	applog "triad/internal/log"
	"triad/internal/services"
	appweb "triad/web"
)

// DecisionService is the port the dashboard talks to. Satisfied by
// *services.DecisionService.
type DecisionService interface {
	HandleSubmission(ctx context.Context, in services.SubmissionInput) (services.SubmissionResult, error)
	Summary(ctx context.Context) (core.Summary, error)
	ViewModel(ctx context.Context, selection []string) (core.ViewModel, error)
}

// Server serves the decision dashboard: the htmx form page, the summary
// partial, the chart view-model API, and the operational endpoints.
type Server struct {
	http.Server
	templates   *template.Template
	svc         DecisionService
	logger      *applog.Logger
	metrics     *serverMetrics
	rateLimiter *rateLimiter

	// Reloading the full history on every partial refresh would reread
	// the flat file each time; summaries and view-models are cached for
	// a short TTL and invalidated on append.
	summaryCache   *cache.LRUCache[core.Summary]
	viewModelCache *cache.LRUCache[core.ViewModel]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server. The prometheus registry is injected so tests can
// use a fresh one per server.
func NewServer(addr string, svc DecisionService, logger *applog.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := newServerMetrics(reg)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:              svc,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		metrics:          metrics,
		rateLimiter:      newRateLimiter(metrics.rateLimitHits),
		summaryCache:     cache.NewLRUCache[core.Summary](8, time.Minute),
		viewModelCache:   cache.NewLRUCache[core.ViewModel](64, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/decisions", s.withMiddleware(s.handleCreateDecision))
	mux.HandleFunc("/ui/summary", s.withMiddleware(s.handleSummaryPartial))
	mux.HandleFunc("/api/viewmodel", s.withMiddleware(s.handleViewModel))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return s
}

// startCacheCleanup periodically evicts expired cache entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summaries := s.summaryCache.CleanExpired()
			viewModels := s.viewModelCache.CleanExpired()
			if summaries > 0 || viewModels > 0 {
				s.logger.Debug("Cache cleanup completed",
					"summary_entries_removed", summaries,
					"viewmodel_entries_removed", viewModels)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, request IDs and
// request logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := uuid.NewString()

		reqLogger := s.logger.With(
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
		)
		ctx := applog.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics.suspiciousReqs) {
			reqLogger.WarnContext(ctx, "Suspicious request pattern",
				applog.FieldClientIP, clientIP)
		}

		// Only submissions are rate limited; partial refreshes are cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP)
			s.metrics.requestsTotal.WithLabelValues(r.Method, r.URL.Path, "429").Inc()
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.metrics.requestsTotal.WithLabelValues(r.Method, r.URL.Path, strconvStatus(rw.statusCode)).Inc()
		s.metrics.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
		reqLogger.InfoContext(ctx, "Request completed",
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady verifies the store is reachable by loading the summary.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.cachedSummary(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
