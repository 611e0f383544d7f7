package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"promptgate/pkg/config"
	"promptgate/pkg/limits"
	"promptgate/pkg/limits/ratelimit"
	"promptgate/pkg/telemetry/metrics"
)

func newTestServer(t *testing.T, rateLimit ratelimit.Config) *Server {
	t.Helper()

	manager, err := limits.NewManager(limits.Config{
		RateLimit:   rateLimit,
		CheckGlobal: true,
	}, limits.NewMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	serverCfg := config.DefaultConfig().Server
	metricsCfg := config.MetricsConfig{Enabled: true, Path: "/metrics"}
	return NewServer(&serverCfg, &metricsCfg, manager, metrics.NewCollector())
}

func defaultRateLimit() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerMinute: 60,
		RequestsPerHour:   1000,
		RequestsPerDay:    10000,
		BurstSize:         5,
		CostPerRequest:    1,
	}
}

func postCheck(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/admission/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_CheckAllowed(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	rec := postCheck(t, handler, `{"identifier": "api-key-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp checkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Allowed {
		t.Error("expected allowed response")
	}
	if resp.Reason != "" {
		t.Errorf("expected empty reason on admission, got %q", resp.Reason)
	}

	if rec.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("expected X-RateLimit-Limit 60, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}
}

func TestServer_CheckDenied(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	for i := 0; i < 5; i++ {
		if rec := postCheck(t, handler, `{"identifier": "api-key-1"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := postCheck(t, handler, `{"identifier": "api-key-1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on denial")
	}

	var resp checkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Allowed {
		t.Error("expected denied response")
	}
	if !strings.Contains(resp.Reason, "burst") {
		t.Errorf("expected burst reason, got %q", resp.Reason)
	}
	if resp.RetryAfterSeconds <= 0 {
		t.Errorf("expected positive retry hint, got %f", resp.RetryAfterSeconds)
	}
}

func TestServer_CheckWithCost(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	if rec := postCheck(t, handler, `{"identifier": "api-key-1", "cost": 5}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := postCheck(t, handler, `{"identifier": "api-key-1", "cost": 1}`); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after cost-5 drained the bucket, got %d", rec.Code)
	}
}

func TestServer_CheckBadRequest(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	if rec := postCheck(t, handler, `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
	if rec := postCheck(t, handler, `{"cost": 1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing identifier, got %d", rec.Code)
	}
}

func TestServer_Status(t *testing.T) {
	server := newTestServer(t, defaultRateLimit())
	handler := server.Routes()

	postCheck(t, handler, `{"identifier": "api-key-1"}`)
	postCheck(t, handler, `{"identifier": "api-key-1"}`)

	req := httptest.NewRequest("GET", "/v1/admission/status/api-key-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status ratelimit.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if status.Minute.Used != 2 {
		t.Errorf("expected 2 used, got %d", status.Minute.Used)
	}
	if status.Minute.Remaining != 58 {
		t.Errorf("expected 58 remaining, got %d", status.Minute.Remaining)
	}
}

func TestServer_StatusUnknownIdentifier(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	req := httptest.NewRequest("GET", "/v1/admission/status/never-seen", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown identifier, got %d", rec.Code)
	}

	var status ratelimit.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if status.Minute.Used != 0 || status.Minute.Remaining != 60 {
		t.Errorf("expected pristine usage, got %+v", status.Minute)
	}
}

func TestServer_Reset(t *testing.T) {
	server := newTestServer(t, defaultRateLimit())
	handler := server.Routes()

	for i := 0; i < 6; i++ {
		postCheck(t, handler, `{"identifier": "api-key-1"}`)
	}

	req := httptest.NewRequest("POST", "/v1/admission/reset/api-key-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// A fresh allowance follows the reset
	if rec := postCheck(t, handler, `{"identifier": "api-key-1"}`); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after reset, got %d", rec.Code)
	}
}

func TestServer_Health(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, defaultRateLimit()).Routes()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from metrics endpoint, got %d", rec.Code)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	server := newTestServer(t, defaultRateLimit())
	server.metricsCfg = &config.MetricsConfig{Enabled: false, Path: "/metrics"}
	handler := server.Routes()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with metrics disabled, got %d", rec.Code)
	}
}
