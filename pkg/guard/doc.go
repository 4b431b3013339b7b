// Package guard orchestrates CAPTCHA verification for protected operations.
//
// The Guard is the top-level entry point: it resolves the underlying HTTP
// request from an opaque execution context, evaluates the skip predicate,
// merges per-operation overrides over the module defaults, resolves the
// token and caller IP, selects a verification strategy, performs the remote
// call and decides whether the protected operation may proceed. The
// verification result is attached to the request so downstream handlers can
// inspect it.
package guard
