package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/cerberus/pkg/audit"
	"mercator-hq/cerberus/pkg/guard"
	"mercator-hq/cerberus/pkg/recaptcha"
	"mercator-hq/cerberus/pkg/telemetry/metrics"
)

// newTestGuard builds a guard whose standard validator talks to a stubbed
// remote returning body.
func newTestGuard(t *testing.T, body string, mutate func(*recaptcha.Options)) (*guard.Guard, func()) {
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
	if mutate != nil {
		mutate(opts)
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

func TestProtectAllows(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true, "hostname": "example.com"}`, nil)
	defer cleanup()

	var sawResult bool
	handler := Protect(g, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawResult = guard.ResultFrom(r) != nil
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Recaptcha-Token", "token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want the wrapped handler's status", rec.Code)
	}
	if !sawResult {
		t.Error("wrapped handler should see the attached verification result")
	}
}

func TestProtectDenies(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": false, "error-codes": ["timeout-or-duplicate"]}`, nil)
	defer cleanup()

	handler := Protect(g, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("wrapped handler must not run on denial")
	}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Recaptcha-Token", "stale")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body struct {
		Message    string   `json:"message"`
		ErrorCodes []string `json:"errorCodes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode denial body: %v", err)
	}
	if len(body.ErrorCodes) != 1 || body.ErrorCodes[0] != "timeout-or-duplicate" {
		t.Errorf("errorCodes = %v, want [timeout-or-duplicate]", body.ErrorCodes)
	}
	if body.Message == "" {
		t.Error("denial body should carry the per-code message")
	}
}

func TestProtectNetworkFailure(t *testing.T) {
	g, cleanup := newTestGuard(t, `{}`, nil)
	cleanup() // remote unreachable

	handler := Protect(g, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("wrapped handler must not run on transport failure")
	}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Recaptcha-Token", "token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestProtectCustomFailureHandler(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": false, "error-codes": ["invalid-input-response"]}`, nil)
	defer cleanup()

	handler := Protect(g, "login", WithFailureHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusTeapot)
	}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Recaptcha-Token", "bad")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the custom handler's status", rec.Code)
	}
}

func TestProtectRecordsAudit(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": true, "hostname": "example.com"}`, nil)
	defer cleanup()

	store := audit.NewMemoryStore()
	registry := prometheus.NewRegistry()
	vm := metrics.NewVerificationMetrics(metrics.Config{}, registry)

	handler := Protect(g, "login", WithAudit(store), WithMetrics(vm))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Recaptcha-Token", "token")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	records := store.Records()
	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	rec := records[0]
	if rec.Outcome != "allowed" {
		t.Errorf("Outcome = %q, want %q", rec.Outcome, "allowed")
	}
	if rec.Action != "login" {
		t.Errorf("Action = %q, want %q", rec.Action, "login")
	}
	if rec.Hostname != "example.com" {
		t.Errorf("Hostname = %q, want the remote's hostname", rec.Hostname)
	}
	if rec.Strategy != "standard" {
		t.Errorf("Strategy = %q, want %q", rec.Strategy, "standard")
	}
}

func TestProtectRecordsSkip(t *testing.T) {
	g, cleanup := newTestGuard(t, `{"success": false}`, func(o *recaptcha.Options) {
		o.Skip = true
	})
	defer cleanup()

	store := audit.NewMemoryStore()
	handler := Protect(g, "login", WithAudit(store))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil))

	records := store.Records()
	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	if records[0].Outcome != "skipped" {
		t.Errorf("Outcome = %q, want %q", records[0].Outcome, "skipped")
	}

	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
