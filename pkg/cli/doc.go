/*
Package cli provides command-line utilities for the cerberus command.

It includes output formatters for command results, typed errors for
configuration and command failures, and signal handling for graceful
shutdown:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled on SIGINT/SIGTERM

	formatter := cli.NewFormatter(cli.FormatJSON)
	_ = formatter.FormatTo(os.Stdout, result)
*/
package cli
