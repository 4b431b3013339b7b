package config

import (
	"mercator-hq/cerberus/pkg/middleware"
	"mercator-hq/cerberus/pkg/recaptcha"
)

// Build converts the file-based verification section into live verification
// options. The token and remote-IP providers come from the configured token
// sources and the standard forwarded-for extraction.
func Build(cfg *RecaptchaConfig) recaptcha.Options {
	opts := recaptcha.Options{
		SecretKey: cfg.SecretKey,
		Network:   resolveNetwork(cfg.Network),
		Actions:   cfg.Actions,
		Token:     middleware.TokenFromSources(tokenSources(cfg.TokenSources)),
		RemoteIP:  middleware.RemoteIPFromRequest,
		Skip:      cfg.Skip,
		Timeout:   cfg.Timeout,
		Debug:     cfg.Debug,
	}

	if cfg.Enterprise != (EnterpriseConfig{}) {
		opts.Enterprise = &recaptcha.EnterpriseOptions{
			ProjectID: cfg.Enterprise.ProjectID,
			SiteKey:   cfg.Enterprise.SiteKey,
			APIKey:    cfg.Enterprise.APIKey,
			Endpoint:  cfg.Enterprise.Endpoint,
		}
	}

	if cfg.Score != nil {
		opts.Score = recaptcha.ScoreThreshold(*cfg.Score)
	}

	return opts
}

// resolveNetwork maps the symbolic network names to endpoint URLs. Unknown
// values pass through as literal URLs.
func resolveNetwork(network string) string {
	switch network {
	case "", "google":
		return ""
	case "recaptcha-net":
		return recaptcha.RecaptchaNetEndpoint
	default:
		return network
	}
}

// tokenSources converts the config representation of token sources.
func tokenSources(sources []TokenSourceConfig) []middleware.TokenSource {
	out := make([]middleware.TokenSource, len(sources))
	for i, src := range sources {
		out[i] = middleware.TokenSource{Type: src.Type, Name: src.Name}
	}
	return out
}
