package recaptcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// EnterpriseValidator verifies tokens through the reCAPTCHA Enterprise
// risk-assessment API. Enterprise invalid-token reasons are translated into
// the common ErrorCode taxonomy; the full assessment payload is preserved in
// the result for downstream access to the risk-analysis detail.
type EnterpriseValidator struct {
	config *ConfigRef
	client *http.Client
	logger *slog.Logger
}

// NewEnterpriseValidator creates an enterprise validator reading
// configuration through the shared ref and reusing the pooled outbound
// client.
func NewEnterpriseValidator(config *ConfigRef, client *http.Client, logger *slog.Logger) *EnterpriseValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnterpriseValidator{
		config: config,
		client: client,
		logger: logger.With("component", "recaptcha.enterprise"),
	}
}

// apiErrorDetail captures a remote-API error response (non-2xx status).
type apiErrorDetail struct {
	Status int
	Body   string
}

// Validate implements Validator.
func (v *EnterpriseValidator) Validate(ctx context.Context, opts VerifyOptions) (*VerificationResult, error) {
	cfg := v.config.ValueOf()

	res, apiErr, err := v.verifyResponse(ctx, &cfg, opts)
	if err != nil {
		return nil, err
	}

	var codes []ErrorCode
	success := false
	var hostname, action string
	var score *float64

	if apiErr != nil {
		codes = append(codes, ErrUnknownError)
	}

	if res != nil {
		tp := res.TokenProperties
		if tp == nil {
			// A payload without tokenProperties is an invalid-response
			// condition, not a crash.
			return &VerificationResult{
				Success:  false,
				Errors:   []ErrorCode{ErrInvalidInputResponse},
				RemoteIP: opts.RemoteIP,
				native:   res,
			}, nil
		}

		success = tp.Valid
		hostname = tp.Hostname
		action = tp.Action

		if tp.InvalidReason != "" {
			if code, ok := TransformEnterpriseReason(tp.InvalidReason); ok {
				codes = append(codes, code)
			}
		}

		if tp.Valid && !isValidAction(tp.Action, opts, cfg.Actions) {
			success = false
			codes = append(codes, ErrForbiddenAction)
		}

		if res.RiskAnalysis != nil {
			s := res.RiskAnalysis.Score
			score = &s
			if !isValidScore(s, opts, cfg.Score) {
				success = false
				codes = append(codes, ErrLowScore)
			}
		}
	}

	// A failed result must never carry zero codes.
	if !success && len(codes) == 0 {
		codes = append(codes, ErrInvalidInputResponse)
	}

	return &VerificationResult{
		Success:  success,
		Errors:   codes,
		Hostname: hostname,
		Action:   action,
		Score:    score,
		RemoteIP: opts.RemoteIP,
		native:   res,
	}, nil
}

// verifyResponse posts the assessment event and decodes the response. A
// transport failure is returned as *NetworkError; a remote-API error
// response is captured as apiErrorDetail with a nil payload.
func (v *EnterpriseValidator) verifyResponse(ctx context.Context, cfg *Options, opts VerifyOptions) (*EnterpriseResponse, *apiErrorDetail, error) {
	if cfg.Enterprise == nil {
		return nil, nil, &ConfigError{Message: "enterprise options are not configured"}
	}

	event := EnterpriseEvent{
		Token:          opts.Response,
		SiteKey:        cfg.Enterprise.SiteKey,
		ExpectedAction: opts.Action,
		UserIPAddress:  opts.RemoteIP,
	}

	body, err := json.Marshal(map[string]EnterpriseEvent{"event": event})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal assessment request: %w", err)
	}

	endpoint := cfg.Enterprise.Endpoint
	if endpoint == "" {
		endpoint = EnterpriseEndpoint
	}
	url := fmt.Sprintf("%s/v1/projects/%s/assessments?key=%s", endpoint, cfg.Enterprise.ProjectID, cfg.Enterprise.APIKey)

	if cfg.Debug {
		v.logger.Debug("assessment request", "project_id", cfg.Enterprise.ProjectID, "body", string(body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create assessment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		if cfg.Debug {
			v.logger.Debug("assessment transport failure", "error", err)
		}
		return nil, nil, &NetworkError{Code: networkErrorCode(err), Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Code: networkErrorCode(err), Cause: err}
	}

	if cfg.Debug {
		v.logger.Debug("assessment response", "status", resp.StatusCode, "body", string(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiErrorDetail{Status: resp.StatusCode, Body: string(data)}, nil
	}

	var res EnterpriseResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &apiErrorDetail{Status: resp.StatusCode, Body: string(data)}, nil
	}

	return &res, nil, nil
}
