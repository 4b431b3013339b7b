package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/cerberus/pkg/audit"
	"mercator-hq/cerberus/pkg/guard"
	"mercator-hq/cerberus/pkg/middleware"
	"mercator-hq/cerberus/pkg/telemetry/metrics"
)

// RouterConfig carries the collaborators wired into the route table.
type RouterConfig struct {
	// Guard verifies tokens for the protected endpoints.
	Guard *guard.Guard

	// Metrics records verification outcomes. Nil disables recording.
	Metrics *metrics.VerificationMetrics

	// Registry backs the metrics endpoint. Nil disables the endpoint.
	Registry *prometheus.Registry

	// MetricsPath is the path serving the metrics endpoint.
	MetricsPath string

	// AuditStore records verification decisions. Nil disables the audit
	// trail and the query endpoint.
	AuditStore audit.Store
}

// NewRouter builds the server's handler: the verification endpoint guarded
// by token verification, health, metrics, and the audit query endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)

	if cfg.Registry != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, metrics.Handler(cfg.Registry))
	}

	protectOpts := []middleware.ProtectOption{}
	if cfg.Metrics != nil {
		protectOpts = append(protectOpts, middleware.WithMetrics(cfg.Metrics))
	}
	if cfg.AuditStore != nil {
		protectOpts = append(protectOpts, middleware.WithAudit(cfg.AuditStore))
	}

	protect := middleware.Protect(cfg.Guard, "verify", protectOpts...)
	mux.Handle("POST /verify", protect(http.HandlerFunc(handleVerify)))

	if store, ok := cfg.AuditStore.(*audit.SQLiteStore); ok {
		mux.HandleFunc("GET /audit", handleAuditQuery(store))
	}

	var handler http.Handler = mux
	handler = middleware.Recovery(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVerify reports the verification outcome for an allowed request. The
// guard middleware has already verified the token; this handler only exposes
// the attached result.
func handleVerify(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"success": true}

	if result := guard.ResultFrom(r); result != nil {
		body["hostname"] = result.Hostname
		if result.Action != "" {
			body["action"] = result.Action
		}
		if result.Score != nil {
			body["score"] = *result.Score
		}
	}

	writeJSON(w, http.StatusOK, body)
}

// handleAuditQuery returns recent verification records, optionally filtered
// by action.
func handleAuditQuery(store *audit.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := store.Query(r.Context(), r.URL.Query().Get("action"), 100)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "audit query failed",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
