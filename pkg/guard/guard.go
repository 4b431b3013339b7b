package guard

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// ErrorHandler customizes the error raised on denial. It receives the
// complete ordered code list and returns the error to surface to the host.
type ErrorHandler func(codes []recaptcha.ErrorCode) error

// Guard is the verification orchestrator. One guard instance serves all
// protected operations; per-request state lives on the stack of CanProceed.
type Guard struct {
	config    *recaptcha.ConfigRef
	resolver  *recaptcha.ValidatorResolver
	requests  *RequestResolver
	overrides *OverrideRegistry
	onError   ErrorHandler
	logger    *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithOverrides attaches a per-operation override registry.
func WithOverrides(reg *OverrideRegistry) Option {
	return func(g *Guard) { g.overrides = reg }
}

// WithErrorHandler replaces the default denial error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(g *Guard) { g.onError = h }
}

// WithLogger sets the guard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger.With("component", "recaptcha.guard") }
}

// New creates a Guard reading configuration through the shared ref and
// selecting validators through the resolver.
func New(config *recaptcha.ConfigRef, resolver *recaptcha.ValidatorResolver, opts ...Option) *Guard {
	g := &Guard{
		config:    config,
		resolver:  resolver,
		requests:  NewRequestResolver(),
		overrides: NewOverrideRegistry(),
		logger:    slog.Default().With("component", "recaptcha.guard"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Overrides returns the guard's override registry for route registration.
func (g *Guard) Overrides() *OverrideRegistry {
	return g.overrides
}

// CanProceed verifies the request behind the execution context and reports
// whether the protected operation may proceed.
//
// It returns (true, nil) on success or skip. On denial it returns false with
// a *recaptcha.VerificationError carrying the ordered code list (or the
// custom error-handler result). Transport failures surface unchanged as
// *recaptcha.NetworkError; resolution and configuration faults surface as
// their own types and are fatal to the call.
//
// The verification result is attached to the resolved request before the
// decision is returned, so downstream handlers can inspect it even on
// denial paths that recover.
func (g *Guard) CanProceed(ec *ExecutionContext) (bool, error) {
	req, err := g.requests.Resolve(ec)
	if err != nil {
		return false, err
	}

	cfg := g.config.ValueOf()

	if g.shouldSkip(&cfg, req) {
		g.logger.Debug("verification skipped", "operation", ec.Operation())
		return true, nil
	}

	var ov Overrides
	if g.overrides != nil {
		ov, _ = g.overrides.Lookup(ec.Operation())
	}

	token, remoteIP, err := g.resolveInputs(&cfg, ov, req)
	if err != nil {
		var cfgErr *recaptcha.ConfigError
		if errors.As(err, &cfgErr) {
			return false, err
		}
		return false, g.deny([]recaptcha.ErrorCode{recaptcha.ErrMissingInputResponse})
	}

	validator, err := g.resolver.Resolve()
	if err != nil {
		return false, err
	}

	result, err := validator.Validate(req.Context(), recaptcha.VerifyOptions{
		Response: token,
		RemoteIP: remoteIP,
		Score:    ov.Score,
		Action:   ov.Action,
	})
	if err != nil {
		return false, err
	}

	attachResult(req, result)

	if result.Success {
		return true, nil
	}

	g.logger.Debug("verification denied",
		"operation", ec.Operation(),
		"errors", result.Errors,
		"hostname", result.Hostname,
	)

	return false, g.deny(result.Errors)
}

// shouldSkip evaluates the skip predicate; a per-request predicate takes
// precedence over the static flag.
func (g *Guard) shouldSkip(cfg *recaptcha.Options, req *http.Request) bool {
	if cfg.SkipIf != nil {
		return cfg.SkipIf(req)
	}
	return cfg.Skip
}

// resolveInputs resolves the token and the caller IP. The two are
// independent reads of the same request, so they are awaited concurrently.
func (g *Guard) resolveInputs(cfg *recaptcha.Options, ov Overrides, req *http.Request) (string, string, error) {
	tokenProvider := ov.Token
	if tokenProvider == nil {
		tokenProvider = cfg.Token
	}
	if tokenProvider == nil {
		return "", "", &recaptcha.ConfigError{Message: "no token provider configured"}
	}

	ipProvider := ov.RemoteIP
	if ipProvider == nil {
		ipProvider = cfg.RemoteIP
	}

	var (
		wg       sync.WaitGroup
		token    string
		tokenErr error
		remoteIP string
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		token, tokenErr = tokenProvider(req)
	}()

	if ipProvider != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remoteIP = ipProvider(req)
		}()
	}

	wg.Wait()

	if tokenErr != nil {
		return "", "", tokenErr
	}
	return token, remoteIP, nil
}

// deny builds the denial error, honoring the custom handler when set.
func (g *Guard) deny(codes []recaptcha.ErrorCode) error {
	if g.onError != nil {
		return g.onError(codes)
	}
	return recaptcha.NewVerificationError(codes)
}
