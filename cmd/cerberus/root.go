package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cerberus",
	Short: "Cerberus - CAPTCHA verification service",
	Long: `Cerberus is a CAPTCHA verification service for reCAPTCHA v2, v3 and
Enterprise tokens.

It verifies challenge tokens against the vendor's verification APIs,
providing:
  - Score-threshold and action allow-list enforcement
  - Standard siteverify and Enterprise assessment strategies
  - Prometheus metrics for verification outcomes
  - An optional SQLite-backed audit trail with scheduled retention`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
