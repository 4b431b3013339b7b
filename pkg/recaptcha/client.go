package recaptcha

import (
	"net/http"
	"time"
)

// ClientConfig tunes the shared outbound HTTP client.
type ClientConfig struct {
	// Timeout bounds each verification call. Default: DefaultTimeout.
	Timeout time.Duration

	// MaxIdleConns is the connection pool size. Default: 10.
	MaxIdleConns int

	// MaxIdleConnsPerHost bounds idle connections per endpoint. Default: 5.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept. Default: 90s.
	IdleConnTimeout time.Duration
}

// NewHTTPClient creates the long-lived, connection-pooling client used for
// outbound verification calls. One client is shared across all requests to
// bound socket usage; validators must not create clients per call.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 5
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
