package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"econguide/internal/cache"
	"econguide/internal/content"
	"econguide/internal/log"
	"econguide/internal/middleware/ratelimit"
	"econguide/internal/middleware/security"
	"econguide/internal/middleware/trace"
	"econguide/internal/services"
	appweb "econguide/web"
)

// Server wraps http.Server with the guide's routes and middleware.
type Server struct {
	http.Server

	templates *template.Template
	catalog   content.Catalog
	calc      *services.Calculator
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// Options holds the server dependencies.
type Options struct {
	// Catalog serves topic pages. Wrap it in cache.Catalog to get cache
	// counters on /metrics.
	Catalog    content.Catalog
	Calculator *services.Calculator
	Logger     *log.Logger
	// RateLimit is the number of POST requests per client per minute.
	RateLimit int
}

// cacheStatter is implemented by cache.Catalog.
type cacheStatter interface {
	Stats() cache.Stats
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server. Call Shutdown to release the rate limiter.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	calc := opts.Calculator
	if calc == nil {
		calc = services.NewCalculator(nil, logger)
	}

	mux := http.NewServeMux()
	s := &Server{
		catalog:  opts.Catalog,
		calc:     calc,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := parseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /topics/{slug}", s.handleTopic)
	mux.HandleFunc("POST /calculate", s.handleCalculate)
	mux.HandleFunc("POST /classify", s.handleClassify)

	mux.HandleFunc("GET /api/topics", s.handleAPITopics)
	mux.HandleFunc("GET /api/topics/{slug}", s.handleAPITopic)
	mux.HandleFunc("POST /api/evaluate", s.handleAPIEvaluate)
	mux.HandleFunc("POST /api/classify", s.handleAPIClassify)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(ratelimit.Options{
		ExtractIP: s.detector.ExtractClientIP,
		Methods:   []string{http.MethodPost},
		OnLimit:   s.onRateLimit,
	})

	// Outermost first: trace, headers, detection, rate limit.
	var handler http.Handler = mux
	handler = limit(handler)
	handler = s.detector.Middleware(logger)(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isHTMX(r) {
		const msg = "Too many requests. Please wait a moment."
		ErrorResponse(http.StatusTooManyRequests, msg).
			TriggerNotification(NotificationWarning, msg, 5000).
			Write(w)
		return
	}
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
}

// Shutdown stops background work and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
