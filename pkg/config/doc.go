// Package config provides file-based configuration for the Cerberus server.
//
// Configuration is loaded from a YAML file, defaulted, overridden by
// CERBERUS_* environment variables, and validated. The loaded Config can be
// converted into verification options with Build, and kept fresh at runtime
// with a Watcher that applies file changes to a live ConfigRef.
package config
