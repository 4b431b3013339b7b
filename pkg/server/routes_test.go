package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/cerberus/pkg/audit"
	"mercator-hq/cerberus/pkg/guard"
	"mercator-hq/cerberus/pkg/recaptcha"
)

// newTestGuard builds a guard whose standard validator talks to a stubbed
// remote returning body.
func newTestGuard(t *testing.T, body string) (*guard.Guard, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	opts := &recaptcha.Options{
		SecretKey: "test-secret",
		Network:   srv.URL,
		Token: func(r *http.Request) (string, error) {
			return r.Header.Get("X-Recaptcha-Token"), nil
		},
	}
	ref, err := recaptcha.NewConfigRef(opts)
	if err != nil {
		srv.Close()
		t.Fatalf("NewConfigRef() error = %v", err)
	}

	client := recaptcha.NewHTTPClient(recaptcha.ClientConfig{})
	standard := recaptcha.NewStandardValidator(ref, client, nil)
	enterprise := recaptcha.NewEnterpriseValidator(ref, client, nil)
	resolver := recaptcha.NewValidatorResolver(ref, standard, enterprise)

	return guard.New(ref, resolver), srv.Close
}

func TestRouterHealth(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true}`)
	defer cleanup()

	handler := NewRouter(RouterConfig{Guard: g})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want liveness payload", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("response should carry a request id")
	}
}

func TestRouterVerifyAllowed(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true, "hostname": "example.com", "score": 0.9, "action": "verify"}`)
	defer cleanup()

	handler := NewRouter(RouterConfig{Guard: g})

	req := httptest.NewRequest("POST", "/verify", nil)
	req.Header.Set("X-Recaptcha-Token", "token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		Success  bool    `json:"success"`
		Hostname string  `json:"hostname"`
		Action   string  `json:"action"`
		Score    float64 `json:"score"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Hostname != "example.com" || body.Score != 0.9 {
		t.Errorf("body = %+v, want the verification result exposed", body)
	}
}

func TestRouterVerifyDenied(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": false, "error-codes": ["invalid-input-response"]}`)
	defer cleanup()

	handler := NewRouter(RouterConfig{Guard: g})

	req := httptest.NewRequest("POST", "/verify", nil)
	req.Header.Set("X-Recaptcha-Token", "bad")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true}`)
	defer cleanup()

	registry := prometheus.NewRegistry()
	handler := NewRouter(RouterConfig{Guard: g, Registry: registry, MetricsPath: "/metrics"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouterAuditEndpoint(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true}`)
	defer cleanup()

	cfg := audit.DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	store, err := audit.NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	rec := audit.NewRecord()
	rec.Action = "verify"
	rec.Strategy = "standard"
	rec.Outcome = "allowed"
	if err := store.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	handler := NewRouter(RouterConfig{Guard: g, AuditStore: store})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/audit?action=verify", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Records []struct {
			Action  string `json:"action"`
			Outcome string `json:"outcome"`
		} `json:"records"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].Outcome != "allowed" {
		t.Errorf("records = %+v, want the inserted record", body.Records)
	}
}

func TestRouterAuditEndpointAbsentForMemoryStore(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true}`)
	defer cleanup()

	handler := NewRouter(RouterConfig{Guard: g, AuditStore: audit.NewMemoryStore()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/audit", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d without a queryable store", rec.Code, http.StatusNotFound)
	}
}
