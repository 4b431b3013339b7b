// Package recaptcha implements remote verification of CAPTCHA challenge
// tokens against Google's reCAPTCHA service.
//
// Two verification strategies are supported behind a single Validator
// contract:
//
//   - StandardValidator talks to the classic siteverify endpoint and handles
//     both v2 (pass/fail) and v3 (score + action) response payloads.
//   - EnterpriseValidator talks to the reCAPTCHA Enterprise assessment
//     endpoint and translates enterprise invalid-token reasons into the
//     common ErrorCode taxonomy.
//
// Which strategy applies is decided by the configured credentials: a secret
// key selects the standard strategy, enterprise project credentials select
// the enterprise one. The two are mutually exclusive. ValidatorResolver
// performs the selection at call time so that runtime reconfiguration
// through ConfigRef takes effect without restarting.
//
// Every verification produces an immutable VerificationResult carrying the
// outcome, the ordered list of failure codes, and the raw decoded remote
// payload for advanced inspection.
package recaptcha
