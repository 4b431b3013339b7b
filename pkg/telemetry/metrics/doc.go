// Package metrics exposes Prometheus metrics for CAPTCHA verification:
// totals by strategy and outcome, verification latency and the distribution
// of reported risk scores.
package metrics
