// Package server provides the HTTP server hosting the verification API,
// the health endpoint, and the Prometheus metrics endpoint.
package server
