package recaptcha

// VerificationResult is the immutable outcome of a single verification call.
// Treat all fields as read-only once constructed.
//
// Errors is ordered: the first element is the primary cause and drives the
// HTTP status mapping. A failed result always carries at least one code.
type VerificationResult struct {
	// Success reports whether the token passed verification and policy.
	Success bool

	// Errors lists the failure codes in the order they were recorded.
	// Empty iff Success is true.
	Errors []ErrorCode

	// Hostname is the hostname of the site where the challenge was solved.
	Hostname string

	// Action is the server-reported action, when present (v3/enterprise).
	Action string

	// Score is the server-reported risk score, when present (v3/enterprise).
	Score *float64

	// RemoteIP is the caller IP submitted with the verification, if any.
	RemoteIP string

	// native holds the raw decoded remote payload; its shape is strategy
	// specific.
	native any
}

// NativeResponse returns the raw decoded remote payload for advanced
// inspection. For the standard strategy this is a map[string]any with the
// vendor's "error-codes" key folded into Errors; for the enterprise strategy
// it is a *EnterpriseResponse.
func (r *VerificationResult) NativeResponse() any {
	return r.native
}

// EnterpriseRiskAnalysis returns the enterprise risk-analysis detail
// (reasons list and numeric score), or nil when the result was not produced
// by the enterprise strategy or the payload carried no risk analysis.
func (r *VerificationResult) EnterpriseRiskAnalysis() *RiskAnalysis {
	res, ok := r.native.(*EnterpriseResponse)
	if !ok || res == nil {
		return nil
	}
	return res.RiskAnalysis
}

// EnterpriseResponse is the decoded enterprise assessment payload.
type EnterpriseResponse struct {
	Name            string           `json:"name,omitempty"`
	Event           *EnterpriseEvent `json:"event,omitempty"`
	TokenProperties *TokenProperties `json:"tokenProperties,omitempty"`
	RiskAnalysis    *RiskAnalysis    `json:"riskAnalysis,omitempty"`
}

// EnterpriseEvent describes the verification event, both as sent in the
// assessment request and as echoed back in the response.
type EnterpriseEvent struct {
	Token          string `json:"token,omitempty"`
	SiteKey        string `json:"siteKey,omitempty"`
	ExpectedAction string `json:"expectedAction,omitempty"`
	UserAgent      string `json:"userAgent,omitempty"`
	UserIPAddress  string `json:"userIpAddress,omitempty"`
}

// TokenProperties carries the enterprise token validity verdict.
type TokenProperties struct {
	Valid         bool             `json:"valid"`
	InvalidReason EnterpriseReason `json:"invalidReason,omitempty"`
	Hostname      string           `json:"hostname,omitempty"`
	Action        string           `json:"action,omitempty"`
	CreateTime    string           `json:"createTime,omitempty"`
}

// RiskAnalysis carries the enterprise risk verdict.
type RiskAnalysis struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}
