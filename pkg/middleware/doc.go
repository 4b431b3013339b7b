// Package middleware provides net/http integration for the verification
// guard: the Protect wrapper for routes, token extraction from configurable
// request sources, request-id propagation and panic recovery.
package middleware
