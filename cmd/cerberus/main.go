// Cerberus is a CAPTCHA verification service for reCAPTCHA v2, v3 and
// Enterprise tokens.
//
// It verifies challenge tokens against the vendor's verification APIs and
// enforces score thresholds and action allow-lists, exposing:
//   - A guarded verification endpoint for host applications
//   - Prometheus metrics for verification outcomes
//   - An optional SQLite-backed audit trail with scheduled retention
//
// Usage:
//
//	# Start the server with default configuration
//	cerberus run
//
//	# Start with a custom configuration file
//	cerberus run --config /path/to/config.yaml
//
//	# Verify a single token from the command line
//	cerberus verify --token <token>
//
//	# Show version information
//	cerberus version
package main

func main() {
	Execute()
}
