package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTokenFromSourcesDefaults(t *testing.T) {
	provider := TokenFromSources(nil)

	t.Run("form field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", strings.NewReader("g-recaptcha-response=form-token"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		token, err := provider(req)
		if err != nil {
			t.Fatalf("provider error = %v", err)
		}
		if token != "form-token" {
			t.Errorf("token = %q, want %q", token, "form-token")
		}
	})

	t.Run("header fallback", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("X-Recaptcha-Token", "header-token")

		token, _ := provider(req)
		if token != "header-token" {
			t.Errorf("token = %q, want %q", token, "header-token")
		}
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login?recaptcha_token=query-token", nil)

		token, _ := provider(req)
		if token != "query-token" {
			t.Errorf("token = %q, want %q", token, "query-token")
		}
	})

	t.Run("missing token is not an error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", nil)

		token, err := provider(req)
		if err != nil {
			t.Fatalf("provider error = %v", err)
		}
		if token != "" {
			t.Errorf("token = %q, want empty", token)
		}
	})
}

func TestTokenFromSourcesOrder(t *testing.T) {
	provider := TokenFromSources([]TokenSource{
		{Type: "header", Name: "X-First"},
		{Type: "header", Name: "X-Second"},
	})

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-First", "first")
	req.Header.Set("X-Second", "second")

	token, _ := provider(req)
	if token != "first" {
		t.Errorf("token = %q, want the earlier source to win", token)
	}
}

func TestTokenFromJSONBody(t *testing.T) {
	provider := TokenFromSources([]TokenSource{{Type: "json", Name: "captchaToken"}})

	body := `{"captchaToken": "json-token", "other": 1}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	token, err := provider(req)
	if err != nil {
		t.Fatalf("provider error = %v", err)
	}
	if token != "json-token" {
		t.Errorf("token = %q, want %q", token, "json-token")
	}

	// The body must be restored for downstream handlers.
	restored, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(restored) != body {
		t.Errorf("restored body = %q, want the original body", restored)
	}
}

func TestRemoteIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "forwarded-for first entry",
			remoteAddr: "10.0.0.1:4321",
			forwarded:  "203.0.113.7, 198.51.100.2",
			want:       "203.0.113.7",
		},
		{
			name:       "single forwarded entry",
			remoteAddr: "10.0.0.1:4321",
			forwarded:  "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "192.0.2.9:5555",
			want:       "192.0.2.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := RemoteIPFromRequest(req); got != tt.want {
				t.Errorf("RemoteIPFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
