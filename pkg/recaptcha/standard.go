package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// StandardValidator verifies tokens against the classic siteverify endpoint.
// It handles both v2 (pass/fail) and v3 (score + action) response payloads;
// a payload is treated as v3 only when it carries a numeric score and a
// string action together, otherwise the policy checks are skipped.
type StandardValidator struct {
	config *ConfigRef
	client *http.Client
	logger *slog.Logger
}

// NewStandardValidator creates a standard validator reading configuration
// through the shared ref and reusing the pooled outbound client.
func NewStandardValidator(config *ConfigRef, client *http.Client, logger *slog.Logger) *StandardValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardValidator{
		config: config,
		client: client,
		logger: logger.With("component", "recaptcha.standard"),
	}
}

// Validate implements Validator.
func (v *StandardValidator) Validate(ctx context.Context, opts VerifyOptions) (*VerificationResult, error) {
	cfg := v.config.ValueOf()

	payload, codes, err := v.verifyResponse(ctx, &cfg, opts.Response, opts.RemoteIP)
	if err != nil {
		return nil, err
	}

	success, _ := payload["success"].(bool)
	hostname, _ := payload["hostname"].(string)

	// v2/v3 discrimination: both fields must be present and correctly typed.
	score, scoreOK := payload["score"].(float64)
	action, actionOK := payload["action"].(string)
	if !scoreOK || !actionOK {
		return &VerificationResult{
			Success:  success,
			Errors:   codes,
			Hostname: hostname,
			RemoteIP: opts.RemoteIP,
			native:   payload,
		}, nil
	}

	if !isValidAction(action, opts, cfg.Actions) {
		success = false
		codes = append(codes, ErrForbiddenAction)
	}

	if !isValidScore(score, opts, cfg.Score) {
		success = false
		codes = append(codes, ErrLowScore)
	}

	return &VerificationResult{
		Success:  success,
		Errors:   codes,
		Hostname: hostname,
		Action:   action,
		Score:    &score,
		RemoteIP: opts.RemoteIP,
		native:   payload,
	}, nil
}

// verifyResponse posts the form-encoded verification request and decodes the
// payload. The vendor's "error-codes" key is extracted into typed codes and
// removed from the payload. A transport failure is returned as *NetworkError;
// a remote-API error response degrades to an unknown-error payload.
func (v *StandardValidator) verifyResponse(ctx context.Context, cfg *Options, response, remoteIP string) (map[string]any, []ErrorCode, error) {
	form := url.Values{}
	form.Set("secret", cfg.SecretKey)
	form.Set("response", response)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	endpoint := cfg.Network
	if endpoint == "" {
		endpoint = GoogleEndpoint
	}

	body := form.Encode()
	if cfg.Debug {
		v.logger.Debug("verification request", "endpoint", endpoint, "body", body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		if cfg.Debug {
			v.logger.Debug("verification transport failure", "error", err)
		}
		return nil, nil, &NetworkError{Code: networkErrorCode(err), Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Code: networkErrorCode(err), Cause: err}
	}

	if cfg.Debug {
		v.logger.Debug("verification response", "status", resp.StatusCode, "body", string(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return map[string]any{"success": false}, []ErrorCode{ErrUnknownError}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return map[string]any{"success": false}, []ErrorCode{ErrUnknownError}, nil
	}

	raw, _ := payload["error-codes"].([]any)
	codes := parseRemoteCodes(raw)
	delete(payload, "error-codes")

	return payload, codes, nil
}
