package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/cerberus/pkg/cli"
	"mercator-hq/cerberus/pkg/config"
	"mercator-hq/cerberus/pkg/recaptcha"
	"mercator-hq/cerberus/pkg/telemetry/logging"
)

var verifyFlags struct {
	token    string
	action   string
	remoteIP string
	output   string
}

// verifyResult is the CLI rendering of a verification outcome.
type verifyResult struct {
	Success  bool     `json:"success"`
	Hostname string   `json:"hostname,omitempty"`
	Action   string   `json:"action,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Errors   []string `json:"errorCodes,omitempty"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single CAPTCHA token",
	Long: `Verify a single CAPTCHA token against the configured strategy and print
the outcome.

The exit code is 0 when the token is accepted and 1 when it is rejected.

Examples:
  # Verify a token
  cerberus verify --token 03AGdBq2...

  # Verify with an expected action
  cerberus verify --token 03AGdBq2... --action login

  # Machine-readable output
  cerberus verify --token 03AGdBq2... --output json`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyFlags.token, "token", "t", "", "challenge token to verify (required)")
	verifyCmd.Flags().StringVarP(&verifyFlags.action, "action", "a", "", "expected action name")
	verifyCmd.Flags().StringVar(&verifyFlags.remoteIP, "remote-ip", "", "caller IP to forward")
	verifyCmd.Flags().StringVarP(&verifyFlags.output, "output", "o", "text", "output format (text, json)")
	_ = verifyCmd.MarkFlagRequired("token")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: "text",
		Writer: os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	opts := config.Build(&cfg.Recaptcha)
	ref, err := recaptcha.NewConfigRef(&opts)
	if err != nil {
		return cli.NewConfigError("recaptcha", err.Error())
	}

	client := recaptcha.NewHTTPClient(recaptcha.ClientConfig{Timeout: cfg.Recaptcha.Timeout})
	standard := recaptcha.NewStandardValidator(ref, client, logger)
	enterprise := recaptcha.NewEnterpriseValidator(ref, client, logger)
	resolver := recaptcha.NewValidatorResolver(ref, standard, enterprise)

	validator, err := resolver.Resolve()
	if err != nil {
		return cli.NewCommandError("verify", err)
	}

	result, err := validator.Validate(context.Background(), recaptcha.VerifyOptions{
		Response: verifyFlags.token,
		RemoteIP: verifyFlags.remoteIP,
		Action:   verifyFlags.action,
	})
	if err != nil {
		return cli.NewCommandError("verify", err)
	}

	out := verifyResult{
		Success:  result.Success,
		Hostname: result.Hostname,
		Action:   result.Action,
		Score:    result.Score,
	}
	for _, code := range result.Errors {
		out.Errors = append(out.Errors, string(code))
	}

	formatter := cli.NewFormatter(cli.OutputFormat(verifyFlags.output))
	if err := formatter.FormatTo(os.Stdout, out); err != nil {
		return cli.NewCommandError("verify", err)
	}

	if !result.Success {
		// Rejections exit non-zero without the cobra usage banner.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		os.Exit(1)
	}
	return nil
}
