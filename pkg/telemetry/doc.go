// Package telemetry groups the observability subpackages.
//
//   - logging: structured slog logger construction
//   - metrics: Prometheus verification metrics and the scrape handler
package telemetry
