package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"budgetflow/internal/core"
	applog "budgetflow/internal/log"
	"budgetflow/internal/middleware/ratelimit"
	"budgetflow/internal/middleware/security"
	"budgetflow/internal/middleware/trace"
	"budgetflow/internal/services"
	appweb "budgetflow/web"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Currency           string
	RateLimitPerMinute int
	AllowedOrigins     []string
	Logger             *applog.Logger
	// Now is the clock used for form defaults.
	Now func() time.Time
	// Templates overrides the embedded templates.
	Templates fs.FS
}

// Server serves the entry form, the visualization page and the JSON API.
type Server struct {
	http.Server
	service   *services.PeriodService
	templates *template.Template
	currency  string
	now       func() time.Time
	started   time.Time
	logger    *applog.Logger
	origins   []string

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc *services.PeriodService, opts Options) *Server {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(context.Background())
	}
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		service:  svc,
		currency: opts.Currency,
		now:      opts.Now,
		started:  time.Now(),
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		origins:  opts.AllowedOrigins,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.New(opts.Logger, s.detector.ClientIP)

	t, err := template.New("pages").Funcs(s.templateFuncs()).ParseFS(opts.Templates, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.tracer.Handler)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ClientIP, s.handleRateLimited, http.MethodPost, http.MethodPut))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssets(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/", s.handleIndex)
	r.Post("/periods", s.handleSavePeriod)
	r.Get("/visualize", s.handleVisualize)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/periods", s.handleAPIListPeriods)
		r.Get("/periods/{key}", s.handleAPIGetPeriod)
		r.Put("/periods/{key}", s.handleAPIPutPeriod)
		r.Get("/periods/{key}/export", s.handleAPIExportPeriod)
	})
	return r
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": func(v int64) string { return core.FormatAmount(v, s.currency) },
	}
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// render executes a template into memory first so a failing template never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) uptime() time.Duration {
	return time.Since(s.started).Round(time.Second)
}

func (s *Server) logStoreError(ctx context.Context, msg string, err error, op, key string) {
	fields := applog.NewFields().WithErrorType(applog.ErrorTypeStore)
	if key != "" {
		fields[applog.FieldPeriod] = key
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, msg, err, applog.ComponentPeriod, op, fields)
}
