package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"econguide/internal/cache"
	"econguide/internal/content"
	"econguide/internal/content/memory"
	"econguide/internal/core"
	"econguide/internal/log"
	"econguide/internal/services"
)

func newTestServer(t *testing.T, catalog content.Catalog) *Server {
	t.Helper()
	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	if catalog == nil {
		store, err := memory.Default()
		if err != nil {
			t.Fatalf("default catalog: %v", err)
		}
		catalog = cache.NewCatalog(store, 32, time.Minute, nil)
	}
	srv := NewServer(":0", Options{
		Catalog:    catalog,
		Calculator: services.NewCalculator(nil, logger),
		Logger:     logger,
		RateLimit:  1000,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

var formHeaders = map[string]string{
	"Content-Type": "application/x-www-form-urlencoded",
	"HX-Request":   "true",
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestIndexRedirectsToFirstPublishedTopic(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/", "", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/topics/introduction" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestTopicPages(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		path     string
		status   int
		contains []string
	}{
		{"/topics/introduction", 200, []string{"Execution Speed Comparison", `class="bar"`, `aria-current="page"`}},
		{"/topics/arithmetic", 200, []string{`hx-post="/calculate"`, `<option value="//">`, "Integer Division"}},
		{"/topics/conditionals", 200, []string{`hx-post="/classify"`}},
		{"/topics/plotting", 200, []string{"<polyline", "GDP"}},
		{"/topics/packages", 200, []string{"under construction"}},
		{"/topics/does-not-exist", 404, []string{"Topic not found."}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.path, "", nil)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			for _, want := range tt.contains {
				if !strings.Contains(rr.Body.String(), want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/topics/basics", "", nil)
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}
	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Fatalf("missing request id header")
	}

	rr = do(t, srv, http.MethodGet, "/.env", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("scanner path should be 404, got %d", rr.Code)
	}
}

func TestCalculatePartial(t *testing.T) {
	srv := newTestServer(t, nil)
	huge := "1" + strings.Repeat("0", 308)

	tests := []struct {
		name     string
		form     url.Values
		status   int
		contains string
		code     string
	}{
		{"addition", url.Values{"a": {"100"}, "b": {"20"}, "op": {"+"}}, 200, "Result of Addition: 120.00", ""},
		{"division", url.Values{"a": {"100"}, "b": {"20"}, "op": {"/"}}, 200, "Result of Division: 5.00", ""},
		{"comma decimals", url.Values{"a": {"7,5"}, "b": {"2"}, "op": {"//"}}, 200, "Result of Integer Division: 3.00", ""},
		{"division by zero", url.Values{"a": {"100"}, "b": {"0"}, "op": {"/"}}, 422, "Division by zero", core.CodeDivisionByZero},
		{"undefined power", url.Values{"a": {"-8"}, "b": {"0.5"}, "op": {"^"}}, 422, "no real result", core.CodeUndefinedPower},
		{"bad operator", url.Values{"a": {"1"}, "b": {"2"}, "op": {"**"}}, 422, "unknown operator", core.CodeInvalidOperator},
		{"not a number", url.Values{"a": {"abc"}, "b": {"2"}, "op": {"+"}}, 422, "valid numbers", core.CodeInvalidInput},
		{"empty operand", url.Values{"a": {""}, "b": {"2"}, "op": {"+"}}, 422, "valid numbers", core.CodeInvalidInput},
		{"infinity", url.Values{"a": {"Inf"}, "b": {"2"}, "op": {"+"}}, 422, "valid numbers", core.CodeInvalidInput},
		{"overflow", url.Values{"a": {huge}, "b": {"10"}, "op": {"*"}}, 200, "Result of Multiplication: too large to display", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/calculate", tt.form.Encode(), formHeaders)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.contains) {
				t.Fatalf("body missing %q: %s", tt.contains, body)
			}
			if tt.code != "" {
				if !strings.Contains(body, `data-code="`+tt.code+`"`) {
					t.Fatalf("body missing code %q: %s", tt.code, body)
				}
				if strings.Contains(body, "Result of") {
					t.Fatalf("failed calculation must not render a result: %s", body)
				}
				if !strings.Contains(rr.Header().Get("HX-Trigger"), "show-notification") {
					t.Fatalf("failure should trigger a notification")
				}
			} else if !strings.Contains(rr.Header().Get("HX-Trigger"), "calculation:done") {
				t.Fatalf("missing HX-Trigger, got %q", rr.Header().Get("HX-Trigger"))
			}
			if strings.Contains(body, "Inf") {
				t.Fatalf("body must not show an infinity: %s", body)
			}
		})
	}
}

func TestCalculateOverflowWarns(t *testing.T) {
	srv := newTestServer(t, nil)
	form := url.Values{"a": {"1" + strings.Repeat("0", 308)}, "b": {"10"}, "op": {"*"}}

	rr := do(t, srv, http.MethodPost, "/calculate", form.Encode(), formHeaders)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "show-notification") || !strings.Contains(trigger, "too large") {
		t.Fatalf("overflow should trigger a warning, got %q", trigger)
	}
}

func TestCalculateRejectsGet(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/calculate", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestClassifyPartial(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		income, expenses string
		band, message    string
	}{
		{"5000", "3000", "Small Surplus", "Good — small surplus of 2000; increase savings."},
		{"5000", "2500", "Surplus", "Excellent — surplus of 2500; recommend saving/investing."},
		{"3000", "3000", "Deficit", "Warning — deficit of 0; review expenses."},
	}
	for _, tt := range tests {
		form := url.Values{"income": {tt.income}, "expenses": {tt.expenses}}
		rr := do(t, srv, http.MethodPost, "/classify", form.Encode(), formHeaders)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		body := rr.Body.String()
		if !strings.Contains(body, `data-band="`+tt.band+`"`) || !strings.Contains(body, tt.message) {
			t.Fatalf("classify(%s, %s) body: %s", tt.income, tt.expenses, body)
		}
	}

	rr := do(t, srv, http.MethodPost, "/classify", "income=lots&expenses=1", formHeaders)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad income, got %d", rr.Code)
	}
}

func TestAPIEvaluate(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/evaluate", `{"a": 100, "b": 20, "op": "*"}`, jsonHeaders)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Result  *float64 `json:"result"`
		Display string   `json:"display"`
		Name    string   `json:"name"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Result == nil || *got.Result != 2000 || got.Display != "2000.00" || got.Name != "Multiplication" {
		t.Fatalf("unexpected response %s", rr.Body.String())
	}

	// Form bodies are accepted too, and JSON strings for numbers.
	rr = do(t, srv, http.MethodPost, "/api/evaluate", "a=7&b=-3&op=%25", map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"result":-2`) {
		t.Fatalf("form evaluate: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPost, "/api/evaluate", `{"a": "2", "b": "10", "op": "^"}`, jsonHeaders)
	if !strings.Contains(rr.Body.String(), `"result":1024`) {
		t.Fatalf("string operands: %s", rr.Body.String())
	}
}

func TestAPIErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"division by zero", `{"a": 1, "b": 0, "op": "/"}`, 422, core.CodeDivisionByZero},
		{"modulo by zero", `{"a": 1, "b": 0, "op": "%"}`, 422, core.CodeDivisionByZero},
		{"invalid operator", `{"a": 1, "b": 2, "op": "mod"}`, 422, core.CodeInvalidOperator},
		{"undefined power", `{"a": -8, "b": 0.5, "op": "^"}`, 422, core.CodeUndefinedPower},
		{"missing operand", `{"b": 2, "op": "+"}`, 422, core.CodeInvalidInput},
		{"malformed json", `{"a": 1,`, 400, core.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/evaluate", tt.body, jsonHeaders)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			var got apiError
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error != tt.code || got.Message == "" {
				t.Fatalf("unexpected error body %+v", got)
			}
			if strings.Contains(rr.Body.String(), `"result"`) {
				t.Fatalf("failure must not carry a result")
			}
		})
	}
}

func TestAPIClassifyAndTopics(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/classify", `{"income": 1000, "expenses": 1500}`, jsonHeaders)
	var cl classifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cl.Net == nil || *cl.Net != -500 || cl.Band != core.BandDeficit || cl.Severity != "error" {
		t.Fatalf("unexpected classification %+v", cl)
	}

	rr = do(t, srv, http.MethodGet, "/api/topics", "", nil)
	var list struct {
		Topics []topicSummary `json:"topics"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Topics) != 12 || list.Topics[0].Slug != "introduction" || list.Topics[11].Slug != "applications" {
		t.Fatalf("unexpected topic list %+v", list.Topics)
	}

	rr = do(t, srv, http.MethodGet, "/api/topics/arithmetic", "", nil)
	var topic core.Topic
	if err := json.Unmarshal(rr.Body.Bytes(), &topic); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if topic.Widget != core.WidgetCalculator || len(topic.Examples) == 0 {
		t.Fatalf("unexpected topic %+v", topic)
	}

	rr = do(t, srv, http.MethodGet, "/api/topics/nope", "", nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"not_found"`) {
		t.Fatalf("expected 404 not_found, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestAPIClassifyOverflow(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/classify", `{"income": 1e308, "expenses": -1e308}`, jsonHeaders)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"net":null`) {
		t.Fatalf("net should be null: %s", rr.Body.String())
	}
	var cl classifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cl.NetDisplay != "+Inf" || cl.Band != core.BandSurplus {
		t.Fatalf("unexpected classification %+v", cl)
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d: %s", path, rr.Code, rr.Body.String())
		}
	}

	do(t, srv, http.MethodPost, "/api/evaluate", `{"a": 1, "b": 0, "op": "/"}`, jsonHeaders)
	do(t, srv, http.MethodGet, "/topics/basics", "", nil)
	do(t, srv, http.MethodGet, "/topics/basics", "", nil)

	rr := do(t, srv, http.MethodGet, "/metrics", "", nil)
	body := rr.Body.String()
	for _, want := range []string{
		"calculations_total 1",
		"calculation_failures_total 1",
		"cache_hits_total",
		"rate_limit_hits_total 0",
		"http_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

type failingCatalog struct{}

func (failingCatalog) ListTopics(context.Context) ([]core.Topic, error) {
	return nil, errors.New("backend down")
}

func (failingCatalog) GetTopic(context.Context, string) (core.Topic, error) {
	return core.Topic{}, errors.New("backend down")
}

func TestBackendFailure(t *testing.T) {
	srv := newTestServer(t, failingCatalog{})

	if rr := do(t, srv, http.MethodGet, "/readyz", "", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz should fail, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/topics/basics", "", nil); rr.Code != http.StatusInternalServerError {
		t.Fatalf("topic page should be 500, got %d", rr.Code)
	}
	// The calculator does not depend on the catalog.
	if rr := do(t, srv, http.MethodPost, "/calculate", "a=1&b=2&op=%2B", formHeaders); rr.Code != http.StatusOK {
		t.Fatalf("calculator should still work, got %d", rr.Code)
	}
}

func TestRateLimitOnPost(t *testing.T) {
	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	store, err := memory.Default()
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(":0", Options{Catalog: store, Logger: logger, RateLimit: 2})
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, srv, http.MethodPost, "/api/evaluate", `{"a":1,"b":1,"op":"+"}`, jsonHeaders).Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	// Page views are never limited.
	if rr := do(t, srv, http.MethodGet, "/topics/basics", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("GET should not be limited, got %d", rr.Code)
	}
}
