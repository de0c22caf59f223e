package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"asicrev/internal/cache"
	"asicrev/internal/chart"
	"asicrev/internal/config"
	applog "asicrev/internal/log"
	"asicrev/internal/middleware/ratelimit"
	"asicrev/internal/middleware/security"
	"asicrev/internal/middleware/trace"
	"asicrev/internal/session"
	"asicrev/internal/sources"
	appweb "asicrev/web"
)

// Server serves the revenue calculator page and its HTMX form endpoints.
type Server struct {
	http.Server
	templates *template.Template
	source    sources.Source
	sessions  *session.Store
	logger    *applog.Logger
	events    *applog.StructuredLogger

	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware

	apiTimeout  time.Duration
	chartHeight int
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server. Template parse failures are logged; the page then
// answers 500.
func NewServer(cfg *config.Config, src sources.Source, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}

	s := &Server{
		source:       src,
		sessions:     session.NewStore(cfg.SessionMax, cfg.SessionTTL, logger),
		logger:       httpLogger,
		events:       applog.NewStructuredLogger(logger.WithComponent(applog.ComponentForm)),
		cacheManager: cache.NewManager(logger.Logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, logger.Logger),
		apiTimeout:  cfg.APITimeout,
		chartHeight: cfg.ChartHeight,
		started:     time.Now(),
	}

	s.cacheManager.Register("sessions", s.sessions)
	s.cacheManager.StartCleanup(time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLogger.Error("Failed parsing templates", applog.FieldError, err.Error())
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/form/asic", s.handleChangeASIC)
	mux.HandleFunc("/form/revenue", s.handleSubmit)
	mux.HandleFunc("/form/unit", s.handleToggleUnit)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig("https://unpkg.com", chart.AssetsHost))
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimited)

	s.Server = http.Server{
		Addr: ":" + cfg.Port,
		Handler: chain(mux,
			s.tracer.Middleware,
			detector.Middleware,
			headers.Middleware,
			limit,
			applog.Middleware(logger),
			applog.RequestIDMiddleware(trace.RequestIDFromRequest),
		),
	}
	return s
}

// chain wraps h so the first middleware is the outermost.
func chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	AlertResponse(http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again.").Write(w)
}

// Sessions exposes the session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Shutdown stops background routines and drains the HTTP server. Only the first
// call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
