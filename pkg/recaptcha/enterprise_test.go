package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newEnterpriseValidator wires a validator against a test endpoint.
func newEnterpriseValidator(t *testing.T, endpoint string, mutate func(*Options)) *EnterpriseValidator {
	t.Helper()

	opts := &Options{
		Enterprise: &EnterpriseOptions{
			ProjectID: "demo-project",
			SiteKey:   "site-key",
			APIKey:    "api-key",
			Endpoint:  endpoint,
		},
	}
	if mutate != nil {
		mutate(opts)
	}
	ref, err := NewConfigRef(opts)
	if err != nil {
		t.Fatalf("NewConfigRef() error = %v", err)
	}
	return NewEnterpriseValidator(ref, NewHTTPClient(ClientConfig{}), nil)
}

func TestEnterpriseValidatorRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotEvent EnterpriseEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var body map[string]EnterpriseEvent
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode assessment request: %v", err)
		}
		gotEvent = body["event"]

		w.Write([]byte(`{"tokenProperties": {"valid": true, "hostname": "example.com", "action": "login"}, "riskAnalysis": {"score": 0.9}}`))
	}))
	defer srv.Close()

	v := newEnterpriseValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{
		Response: "token-123",
		RemoteIP: "203.0.113.7",
		Action:   "login",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if gotPath != "/v1/projects/demo-project/assessments" {
		t.Errorf("path = %q, want the assessments path", gotPath)
	}
	if gotKey != "api-key" {
		t.Errorf("key = %q, want %q", gotKey, "api-key")
	}
	if gotEvent.Token != "token-123" || gotEvent.SiteKey != "site-key" {
		t.Errorf("event = %+v, want token and site key set", gotEvent)
	}
	if gotEvent.ExpectedAction != "login" {
		t.Errorf("expectedAction = %q, want %q", gotEvent.ExpectedAction, "login")
	}
	if gotEvent.UserIPAddress != "203.0.113.7" {
		t.Errorf("userIpAddress = %q, want the caller IP", gotEvent.UserIPAddress)
	}

	if !result.Success {
		t.Errorf("Success = false (codes %v), want true", result.Errors)
	}
	if result.Hostname != "example.com" || result.Action != "login" {
		t.Errorf("result = %+v, want hostname and action from tokenProperties", result)
	}
	if result.Score == nil || *result.Score != 0.9 {
		t.Errorf("Score = %v, want 0.9", result.Score)
	}
}

func TestEnterpriseValidatorOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		mutate      func(*Options)
		callOpts    VerifyOptions
		wantSuccess bool
		wantCodes   []ErrorCode
	}{
		{
			name:        "valid token above threshold",
			body:        `{"tokenProperties": {"valid": true, "action": "login"}, "riskAnalysis": {"score": 0.8}}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.5) },
			wantSuccess: true,
		},
		{
			name:        "low score",
			body:        `{"tokenProperties": {"valid": true, "action": "login"}, "riskAnalysis": {"score": 0.2}}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.5) },
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrLowScore},
		},
		{
			name:        "action mismatch",
			body:        `{"tokenProperties": {"valid": true, "action": "signup"}, "riskAnalysis": {"score": 0.9}}`,
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrForbiddenAction},
		},
		{
			name:        "expired reason precedes action mismatch",
			body:        `{"tokenProperties": {"valid": true, "invalidReason": "EXPIRED", "action": "signup"}}`,
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrTimeoutOrDuplicate, ErrForbiddenAction},
		},
		{
			name:        "invalid token with no reason falls back",
			body:        `{"tokenProperties": {"valid": false}}`,
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrInvalidInputResponse},
		},
		{
			name:        "unspecified reason is informational only",
			body:        `{"tokenProperties": {"valid": false, "invalidReason": "INVALID_REASON_UNSPECIFIED"}}`,
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrInvalidInputResponse},
		},
		{
			name:        "site mismatch",
			body:        `{"tokenProperties": {"valid": false, "invalidReason": "SITE_MISMATCH"}}`,
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrSiteMismatch},
		},
		{
			name:        "missing tokenProperties",
			body:        `{"riskAnalysis": {"score": 0.9}}`,
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrInvalidInputResponse},
		},
		{
			name:        "invalid token does not run action policy",
			body:        `{"tokenProperties": {"valid": false, "invalidReason": "MALFORMED", "action": "signup"}}`,
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrInvalidInputResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := newEnterpriseValidator(t, srv.URL, tt.mutate)

			result, err := v.Validate(context.Background(), tt.callOpts)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v (codes %v)", result.Success, tt.wantSuccess, result.Errors)
			}
			assertCodes(t, result.Errors, tt.wantCodes)

			if !result.Success && len(result.Errors) == 0 {
				t.Error("failed result carries zero codes")
			}
		})
	}
}

func TestEnterpriseValidatorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	v := newEnterpriseValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false on API error")
	}
	assertCodes(t, result.Errors, []ErrorCode{ErrUnknownError})
}

func TestEnterpriseValidatorNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := newEnterpriseValidator(t, srv.URL, nil)

	_, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Validate() error = %v, want *NetworkError", err)
	}
}

func TestEnterpriseValidatorRiskAnalysisAccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokenProperties": {"valid": true, "action": "login"}, "riskAnalysis": {"score": 0.7, "reasons": ["AUTOMATION"]}}`))
	}))
	defer srv.Close()

	v := newEnterpriseValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	ra := result.EnterpriseRiskAnalysis()
	if ra == nil {
		t.Fatal("EnterpriseRiskAnalysis() = nil, want the risk detail")
	}
	if ra.Score != 0.7 || len(ra.Reasons) != 1 || ra.Reasons[0] != "AUTOMATION" {
		t.Errorf("risk analysis = %+v, want score 0.7 with AUTOMATION reason", ra)
	}
}
