package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// TokenSource defines where to extract the challenge token from.
type TokenSource struct {
	Type string // header, query, form, json
	Name string // header name, query param, form field or JSON field
}

// DefaultTokenSources returns the extraction order used when none is
// configured: the conventional widget form field first, then header and
// query fallbacks.
func DefaultTokenSources() []TokenSource {
	return []TokenSource{
		{Type: "form", Name: "g-recaptcha-response"},
		{Type: "header", Name: "X-Recaptcha-Token"},
		{Type: "query", Name: "recaptcha_token"},
	}
}

// TokenFromSources builds a token provider that tries each source in order
// and returns the first non-empty value. A missing token is not an error
// here; the remote service reports missing-input-response authoritatively.
//
// For the json source the request body is read and restored so downstream
// handlers can still consume it.
func TokenFromSources(sources []TokenSource) recaptcha.TokenProvider {
	if len(sources) == 0 {
		sources = DefaultTokenSources()
	}

	return func(r *http.Request) (string, error) {
		for _, source := range sources {
			switch source.Type {
			case "header":
				if value := r.Header.Get(source.Name); value != "" {
					return value, nil
				}

			case "query":
				if value := r.URL.Query().Get(source.Name); value != "" {
					return value, nil
				}

			case "form":
				if err := r.ParseForm(); err == nil {
					if value := r.FormValue(source.Name); value != "" {
						return value, nil
					}
				}

			case "json":
				if value := tokenFromJSONBody(r, source.Name); value != "" {
					return value, nil
				}
			}
		}
		return "", nil
	}
}

// tokenFromJSONBody reads a string field from a JSON request body, restoring
// the body afterwards.
func tokenFromJSONBody(r *http.Request, field string) string {
	if r.Body == nil {
		return ""
	}

	data, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	value, _ := payload[field].(string)
	return value
}

// RemoteIPFromRequest is the default caller-IP provider: the X-Forwarded-For
// client entry when present, otherwise the connection's remote address.
func RemoteIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		client, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(client)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
