package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"econguide/internal/core"
	"econguide/internal/log"
)

type menuItem struct {
	Slug   string
	Title  string
	Icon   string
	Active bool
	Draft  bool
}

type operatorOption struct {
	Symbol string
	Name   string
}

type topicPage struct {
	Menu      []menuItem
	Topic     core.Topic
	Charts    []chartView
	Operators []operatorOption
	Draft     bool
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that templates parsed and the catalog answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.catalog == nil:
		checks["catalog"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		topics, err := s.catalog.ListTopics(ctx)
		if err != nil {
			checks["catalog"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["catalog"] = map[string]any{"status": "ok", "topics": len(topics)}
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in a Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	traceMetrics := s.tracer.GetMetrics()
	calcStats := s.calc.Stats()

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)

	metric("calculations_total", "counter", "Calculator evaluations", calcStats.Evaluations)
	metric("calculation_failures_total", "counter", "Calculator evaluations that returned an error", calcStats.Failures)
	metric("classifications_total", "counter", "Income classifications", calcStats.Classifies)
	metric("event_publish_errors_total", "counter", "Calculation events that could not be published", calcStats.PublishErrors)

	if cs, ok := s.catalog.(cacheStatter); ok {
		st := cs.Stats()
		metric("cache_hits_total", "counter", "Topic cache hits", st.Hits)
		metric("cache_misses_total", "counter", "Topic cache misses", st.Misses)
		metric("cache_evictions_total", "counter", "Topic cache entries evicted for capacity", st.Evictions)
		metric("cache_expired_total", "counter", "Topic cache entries dropped after their TTL", st.Expired)
		metric("cache_entries", "gauge", "Current topic cache entries", st.Size)
	}

	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("blocked_requests_total", "counter", "Scanner requests answered with 404", securityMetrics.BlockedRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.started).Seconds()))
}

// handleIndex redirects to the first published topic.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	topics, err := s.catalog.ListTopics(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	for _, t := range topics {
		if t.Published() {
			http.Redirect(w, r, "/topics/"+t.Slug, http.StatusFound)
			return
		}
	}
	s.pageError(w, r, fmt.Errorf("no published topic: %w", errNoTopics))
}

var errNoTopics = errors.New("catalog is empty")

// handleTopic renders one topic with the side menu.
func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	topic, err := s.catalog.GetTopic(ctx, slug)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	topics, err := s.catalog.ListTopics(ctx)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	page := topicPage{
		Topic: topic,
		Draft: !topic.Published(),
	}
	for _, t := range topics {
		page.Menu = append(page.Menu, menuItem{
			Slug:   t.Slug,
			Title:  t.Title,
			Icon:   t.Icon,
			Active: t.Slug == topic.Slug,
			Draft:  !t.Published(),
		})
	}
	for _, c := range topic.Charts {
		page.Charts = append(page.Charts, newChartView(c))
	}
	if topic.Widget == core.WidgetCalculator {
		for _, op := range core.Operators() {
			page.Operators = append(page.Operators, operatorOption{Symbol: op.Symbol(), Name: op.Name()})
		}
	}

	body, err := s.render("topic.html", page)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// pageError renders a full-page failure. Unknown topics are 404s; the rest
// are logged and shown as 500.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Page rendering failed",
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Page not found",
			log.FieldPath, r.URL.Path,
			log.FieldTopic, r.PathValue("slug"),
			log.FieldErrorCode, code)
	}

	body, rerr := s.render("error.html", map[string]any{
		"Status":  status,
		"Message": userMessage(err),
	})
	if rerr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
