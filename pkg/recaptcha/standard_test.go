package recaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newStandardValidator wires a validator against a test endpoint.
func newStandardValidator(t *testing.T, endpoint string, mutate func(*Options)) *StandardValidator {
	t.Helper()

	opts := &Options{SecretKey: "test-secret", Network: endpoint}
	if mutate != nil {
		mutate(opts)
	}
	ref, err := NewConfigRef(opts)
	if err != nil {
		t.Fatalf("NewConfigRef() error = %v", err)
	}
	return NewStandardValidator(ref, NewHTTPClient(ClientConfig{}), nil)
}

func TestStandardValidatorRequestShape(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q, want form encoding", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		gotForm = map[string]string{
			"secret":   r.PostFormValue("secret"),
			"response": r.PostFormValue("response"),
			"remoteip": r.PostFormValue("remoteip"),
		}
		w.Write([]byte(`{"success": true, "hostname": "example.com"}`))
	}))
	defer srv.Close()

	v := newStandardValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{
		Response: "token-123",
		RemoteIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if gotForm["secret"] != "test-secret" {
		t.Errorf("secret = %q, want %q", gotForm["secret"], "test-secret")
	}
	if gotForm["response"] != "token-123" {
		t.Errorf("response = %q, want %q", gotForm["response"], "token-123")
	}
	if gotForm["remoteip"] != "203.0.113.7" {
		t.Errorf("remoteip = %q, want %q", gotForm["remoteip"], "203.0.113.7")
	}

	if !result.Success {
		t.Error("Success = false, want true")
	}
	if result.Hostname != "example.com" {
		t.Errorf("Hostname = %q, want %q", result.Hostname, "example.com")
	}
	if result.RemoteIP != "203.0.113.7" {
		t.Errorf("RemoteIP = %q, want the submitted IP", result.RemoteIP)
	}
}

func TestStandardValidatorPolicy(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		mutate      func(*Options)
		callOpts    VerifyOptions
		wantSuccess bool
		wantCodes   []ErrorCode
		wantScore   *float64
	}{
		{
			name:        "v3 success above threshold",
			body:        `{"success": true, "score": 0.9, "action": "login", "hostname": "example.com"}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			wantSuccess: true,
			wantScore:   ptr(0.9),
		},
		{
			name:        "v3 low score",
			body:        `{"success": true, "score": 0.3, "action": "login"}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrLowScore},
			wantScore:   ptr(0.3),
		},
		{
			name:        "v3 action mismatch",
			body:        `{"success": true, "score": 0.9, "action": "signup"}`,
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrForbiddenAction},
			wantScore:   ptr(0.9),
		},
		{
			name:        "v3 action mismatch and low score in order",
			body:        `{"success": true, "score": 0.3, "action": "signup"}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrForbiddenAction, ErrLowScore},
			wantScore:   ptr(0.3),
		},
		{
			name:        "v3 action allow-list",
			body:        `{"success": true, "score": 0.9, "action": "checkout"}`,
			mutate:      func(o *Options) { o.Actions = []string{"login", "signup"} },
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrForbiddenAction},
			wantScore:   ptr(0.9),
		},
		{
			name:        "v2 response skips policy checks",
			body:        `{"success": true, "hostname": "example.com"}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			callOpts:    VerifyOptions{Action: "login"},
			wantSuccess: true,
		},
		{
			name:        "score without action stays v2",
			body:        `{"success": true, "score": 0.1}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			wantSuccess: true,
		},
		{
			name:        "remote failure codes pass through",
			body:        `{"success": false, "error-codes": ["invalid-input-response", "timeout-or-duplicate"]}`,
			wantSuccess: false,
			wantCodes:   []ErrorCode{ErrInvalidInputResponse, ErrTimeoutOrDuplicate},
		},
		{
			name:        "per-call score override wins",
			body:        `{"success": true, "score": 0.3, "action": "login"}`,
			mutate:      func(o *Options) { o.Score = ScoreThreshold(0.6) },
			callOpts:    VerifyOptions{Score: ScoreThreshold(0.2)},
			wantSuccess: true,
			wantScore:   ptr(0.3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := newStandardValidator(t, srv.URL, tt.mutate)

			result, err := v.Validate(context.Background(), tt.callOpts)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v (codes %v)", result.Success, tt.wantSuccess, result.Errors)
			}
			assertCodes(t, result.Errors, tt.wantCodes)

			if tt.wantScore != nil {
				if result.Score == nil || *result.Score != *tt.wantScore {
					t.Errorf("Score = %v, want %v", result.Score, *tt.wantScore)
				}
			}
		})
	}
}

func TestStandardValidatorRemoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := newStandardValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false on remote API error")
	}
	assertCodes(t, result.Errors, []ErrorCode{ErrUnknownError})
}

func TestStandardValidatorMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	v := newStandardValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false on undecodable payload")
	}
	assertCodes(t, result.Errors, []ErrorCode{ErrUnknownError})
}

func TestStandardValidatorNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	v := newStandardValidator(t, srv.URL, nil)

	_, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Validate() error = %v, want *NetworkError", err)
	}
	if netErr.Code == "" {
		t.Error("NetworkError.Code is empty, want the transport error code")
	}
}

func TestStandardValidatorNativeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "challenge_ts": "2026-01-01T00:00:00Z", "error-codes": ["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := newStandardValidator(t, srv.URL, nil)

	result, err := v.Validate(context.Background(), VerifyOptions{Response: "token"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	payload, ok := result.NativeResponse().(map[string]any)
	if !ok {
		t.Fatalf("NativeResponse() = %T, want map payload", result.NativeResponse())
	}
	if payload["challenge_ts"] != "2026-01-01T00:00:00Z" {
		t.Errorf("challenge_ts = %v, want preserved", payload["challenge_ts"])
	}
	if _, present := payload["error-codes"]; present {
		t.Error("error-codes should be folded into Errors, not left in the payload")
	}
}

// assertCodes compares an ordered code list.
func assertCodes(t *testing.T, got, want []ErrorCode) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("codes = %v, want %v", got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codes[%d] = %q, want %q (full list %v)", i, got[i], want[i], got)
		}
	}
}

func ptr(f float64) *float64 { return &f }
